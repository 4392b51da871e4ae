package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/joshharrison/ganttboard/internal/model"
)

var ErrNotFound = errors.New("not found")

// Repository is the read side of the project data. Implementations return
// copies; callers may modify what they get back without affecting the store.
type Repository interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, id string) (model.Project, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
	ListMembers(ctx context.Context) ([]model.Member, error)
	ListMilestones(ctx context.Context) ([]model.Milestone, error)
}

// Dataset is a full snapshot of projects, tasks, members and milestones.
type Dataset struct {
	Projects   []model.Project
	Tasks      []model.Task
	Members    []model.Member
	Milestones []model.Milestone
}

// RawTask is the on-disk shape of a task. Dates are YYYY-MM-DD strings.
type RawTask struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	ProjectID      string   `json:"project_id" yaml:"project_id"`
	Project        string   `json:"project" yaml:"project"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	StartDate      string   `json:"start_date" yaml:"start_date"`
	EndDate        string   `json:"end_date" yaml:"end_date"`
	Progress       int      `json:"progress" yaml:"progress"`
	Dependencies   []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Assignee       string   `json:"assignee" yaml:"assignee"`
	Priority       string   `json:"priority" yaml:"priority"`
	Status         string   `json:"status" yaml:"status"`
	Critical       bool     `json:"critical,omitempty" yaml:"critical,omitempty"`
	Tags           []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	EstimatedHours int      `json:"estimated_hours,omitempty" yaml:"estimated_hours,omitempty"`
	CompletedHours int      `json:"completed_hours,omitempty" yaml:"completed_hours,omitempty"`
}

// RawProject is the on-disk shape of a project.
type RawProject struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	StartDate   string `json:"start_date" yaml:"start_date"`
	EndDate     string `json:"end_date" yaml:"end_date"`
	Progress    int    `json:"progress" yaml:"progress"`
	Status      string `json:"status" yaml:"status"`
	Priority    string `json:"priority,omitempty" yaml:"priority,omitempty"`
	TeamSize    int    `json:"team_size" yaml:"team_size"`
	Manager     string `json:"manager,omitempty" yaml:"manager,omitempty"`
	Budget      int    `json:"budget,omitempty" yaml:"budget,omitempty"`
	Spent       int    `json:"spent,omitempty" yaml:"spent,omitempty"`
}

// RawMember is the on-disk shape of a team member.
type RawMember struct {
	ID     string   `json:"id" yaml:"id"`
	Name   string   `json:"name" yaml:"name"`
	Email  string   `json:"email,omitempty" yaml:"email,omitempty"`
	Role   string   `json:"role" yaml:"role"`
	Status string   `json:"status,omitempty" yaml:"status,omitempty"`
	Skills []string `json:"skills,omitempty" yaml:"skills,omitempty"`
}

// RawMilestone is the on-disk shape of a milestone.
type RawMilestone struct {
	ID        string `json:"id" yaml:"id"`
	ProjectID string `json:"project_id" yaml:"project_id"`
	Title     string `json:"title" yaml:"title"`
	Due       string `json:"due" yaml:"due"`
	Completed bool   `json:"completed,omitempty" yaml:"completed,omitempty"`
}

// RawDataset is the on-disk shape of a data file.
type RawDataset struct {
	Projects   []RawProject   `json:"projects" yaml:"projects"`
	Tasks      []RawTask      `json:"tasks" yaml:"tasks"`
	Members    []RawMember    `json:"members" yaml:"members"`
	Milestones []RawMilestone `json:"milestones,omitempty" yaml:"milestones,omitempty"`
}

// Task converts and validates a raw task.
func (rt RawTask) Task() (model.Task, error) {
	start, err := parseOptionalDate(rt.StartDate)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %q start: %w", rt.ID, err)
	}
	end, err := parseOptionalDate(rt.EndDate)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %q end: %w", rt.ID, err)
	}
	t := model.Task{
		ID:             rt.ID,
		Name:           rt.Name,
		ProjectID:      rt.ProjectID,
		Project:        rt.Project,
		Description:    rt.Description,
		Start:          start,
		End:            end,
		Progress:       rt.Progress,
		Dependencies:   rt.Dependencies,
		Assignee:       rt.Assignee,
		Priority:       model.Priority(rt.Priority),
		Status:         model.Status(rt.Status),
		Critical:       rt.Critical,
		Tags:           rt.Tags,
		EstimatedHours: rt.EstimatedHours,
		CompletedHours: rt.CompletedHours,
	}
	if err := t.Validate(); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// Project converts and validates a raw project.
func (rp RawProject) Project() (model.Project, error) {
	start, err := parseOptionalDate(rp.StartDate)
	if err != nil {
		return model.Project{}, fmt.Errorf("project %q start: %w", rp.ID, err)
	}
	end, err := parseOptionalDate(rp.EndDate)
	if err != nil {
		return model.Project{}, fmt.Errorf("project %q end: %w", rp.ID, err)
	}
	p := model.Project{
		ID:          rp.ID,
		Name:        rp.Name,
		Description: rp.Description,
		Start:       start,
		End:         end,
		Progress:    rp.Progress,
		Status:      model.ProjectStatus(rp.Status),
		Priority:    model.Priority(rp.Priority),
		TeamSize:    rp.TeamSize,
		Manager:     rp.Manager,
		Budget:      rp.Budget,
		Spent:       rp.Spent,
	}
	if err := p.Validate(); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

// Member converts and validates a raw member.
func (rm RawMember) Member() (model.Member, error) {
	m := model.Member{
		ID:     rm.ID,
		Name:   rm.Name,
		Email:  rm.Email,
		Role:   rm.Role,
		Status: model.MemberStatus(rm.Status),
		Skills: rm.Skills,
	}
	if err := m.Validate(); err != nil {
		return model.Member{}, err
	}
	return m, nil
}

// Milestone converts and validates a raw milestone.
func (rm RawMilestone) Milestone() (model.Milestone, error) {
	due, err := parseOptionalDate(rm.Due)
	if err != nil {
		return model.Milestone{}, fmt.Errorf("milestone %q due: %w", rm.ID, err)
	}
	m := model.Milestone{
		ID:        rm.ID,
		ProjectID: rm.ProjectID,
		Title:     rm.Title,
		Due:       due,
		Completed: rm.Completed,
	}
	if err := m.Validate(); err != nil {
		return model.Milestone{}, err
	}
	return m, nil
}

// Dataset converts every record, failing on the first invalid one. Tasks
// without a project name inherit it from their project.
func (rd RawDataset) Dataset() (Dataset, error) {
	var ds Dataset
	names := make(map[string]string, len(rd.Projects))
	for _, rp := range rd.Projects {
		p, err := rp.Project()
		if err != nil {
			return Dataset{}, err
		}
		names[p.ID] = p.Name
		ds.Projects = append(ds.Projects, p)
	}
	for _, rt := range rd.Tasks {
		t, err := rt.Task()
		if err != nil {
			return Dataset{}, err
		}
		if t.Project == "" {
			t.Project = names[t.ProjectID]
		}
		ds.Tasks = append(ds.Tasks, t)
	}
	for _, rm := range rd.Members {
		m, err := rm.Member()
		if err != nil {
			return Dataset{}, err
		}
		ds.Members = append(ds.Members, m)
	}
	for _, rm := range rd.Milestones {
		m, err := rm.Milestone()
		if err != nil {
			return Dataset{}, err
		}
		if _, ok := names[m.ProjectID]; !ok {
			return Dataset{}, fmt.Errorf("milestone %q: project %q: %w", m.ID, m.ProjectID, ErrNotFound)
		}
		ds.Milestones = append(ds.Milestones, m)
	}
	return ds, nil
}

func parseOptionalDate(s string) (model.Date, error) {
	if s == "" {
		return model.Date{}, nil
	}
	return model.ParseDate(s)
}
