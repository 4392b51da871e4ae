package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/joshharrison/ganttboard/internal/analysis"
	"github.com/joshharrison/ganttboard/internal/filter"
	"github.com/joshharrison/ganttboard/internal/model"
)

// ProjectSummary is a project with counts derived from its tasks.
type ProjectSummary struct {
	model.Project
	TaskCount      int     `json:"task_count"`
	TaskProgress   float64 `json:"task_progress"` // duration-weighted
	CompletedTasks int     `json:"completed_tasks"`

	BudgetRemaining int `json:"budget_remaining"`
}

// ProjectDetail is one project with its tasks, milestones and critical path.
type ProjectDetail struct {
	ProjectSummary
	Tasks        []model.Task      `json:"tasks"`
	Milestones   []model.Milestone `json:"milestones"`
	CriticalPath *analysis.Report  `json:"critical_path"`
}

// Projects lists the projects matching q with their task rollups.
func (s *Service) Projects(ctx context.Context, q filter.ProjectQuery) ([]ProjectSummary, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	rollups := make(map[string]analysis.Rollup)
	for _, r := range analysis.Rollups(tasks) {
		rollups[r.ProjectID] = r
	}
	completed := make(map[string]int)
	for _, t := range tasks {
		if t.Status == model.StatusCompleted {
			completed[t.ProjectID]++
		}
	}

	matched := q.Apply(projects)
	out := make([]ProjectSummary, 0, len(matched))
	for _, p := range matched {
		r := rollups[p.ID]
		out = append(out, ProjectSummary{
			Project:        p,
			TaskCount:      r.Tasks,
			TaskProgress:   r.Progress,
			CompletedTasks: completed[p.ID],

			BudgetRemaining: p.BudgetRemaining(),
		})
	}
	return out, nil
}

// Project returns one project by id or name slug.
func (s *Service) Project(ctx context.Context, key string) (*ProjectDetail, error) {
	p, err := s.findProject(ctx, key)
	if err != nil {
		return nil, err
	}
	a, err := s.Analyze(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	ms, err := s.milestones(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	d := &ProjectDetail{
		ProjectSummary: ProjectSummary{
			Project:         p,
			TaskCount:       len(a.Tasks),
			BudgetRemaining: p.BudgetRemaining(),
		},
		Tasks:        a.Tasks,
		Milestones:   ms,
		CriticalPath: a.Report,
	}
	if rs := analysis.Rollups(a.Tasks); len(rs) == 1 {
		d.TaskProgress = rs[0].Progress
	}
	for _, t := range a.Tasks {
		if t.Status == model.StatusCompleted {
			d.CompletedTasks++
		}
	}
	return d, nil
}

func (s *Service) findProject(ctx context.Context, key string) (model.Project, error) {
	p, err := s.repo.GetProject(ctx, key)
	if err == nil {
		return p, nil
	}
	projects, lerr := s.repo.ListProjects(ctx)
	if lerr != nil {
		return model.Project{}, fmt.Errorf("list projects: %w", lerr)
	}
	if m := matchProjects(projects, key); len(m) > 0 {
		return m[0], nil
	}
	return model.Project{}, err
}

// projectName resolves the display name for a project key. Unknown projects
// fail with the repository's not-found error.
func (s *Service) projectName(ctx context.Context, key string) (string, error) {
	if isAll(key) {
		return AllProjectsName, nil
	}
	p, err := s.findProject(ctx, key)
	if err != nil {
		return "", err
	}
	return p.Name, nil
}

func matchProjects(projects []model.Project, key string) []model.Project {
	var out []model.Project
	for _, p := range projects {
		if p.ID == key || filter.Slug(p.Name) == key {
			out = append(out, p)
		}
	}
	return out
}

func isAll(key string) bool {
	return key == "" || strings.EqualFold(key, filter.All)
}
