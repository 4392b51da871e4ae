// Package board composes the repository, filters, Gantt layout and critical
// path analysis into the views the CLI and viewer render. Every call reads
// fresh data and recomputes; nothing is cached.
package board

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joshharrison/ganttboard/internal/analysis"
	"github.com/joshharrison/ganttboard/internal/cpm"
	"github.com/joshharrison/ganttboard/internal/filter"
	"github.com/joshharrison/ganttboard/internal/gantt"
	"github.com/joshharrison/ganttboard/internal/graph"
	"github.com/joshharrison/ganttboard/internal/model"
	"github.com/joshharrison/ganttboard/internal/store"
)

// AllProjectsName labels views that span every project.
const AllProjectsName = "All Projects"

// Options configures a Service.
type Options struct {
	Window  gantt.Window            // used when a selection names no time range
	AsOf    model.Date              // reference "today"
	Source  analysis.CriticalSource // where critical flags come from
	Horizon int                     // deadline look-ahead in days
}

// Service answers board queries over a repository.
type Service struct {
	repo store.Repository
	opts Options
}

func New(repo store.Repository, opts Options) *Service {
	if opts.Window == (gantt.Window{}) {
		opts.Window = gantt.DefaultWindow()
	}
	if opts.AsOf.IsZero() {
		opts.AsOf = opts.Window.Start
	}
	if opts.Source == "" {
		opts.Source = analysis.SourceComputed
	}
	return &Service{repo: repo, opts: opts}
}

// Options returns the service configuration.
func (s *Service) Options() Options {
	return s.opts
}

// GanttView is a laid out chart plus the selection that produced it.
type GanttView struct {
	Selection   filter.Selection        `json:"selection"`
	ProjectName string                  `json:"project_name"`
	Source      analysis.CriticalSource `json:"source"`
	Chart       *gantt.Chart            `json:"chart"`

	// Set when the scope has a dependency cycle. The chart is still drawn,
	// highlighting the tasks flagged critical.
	Cycle   []string `json:"cycle,omitempty"`
	Warning string   `json:"warning,omitempty"`
}

// Analysis is the graph, CPM result and critical lookup for one project
// scope.
type Analysis struct {
	Report   *analysis.Report
	Graph    *graph.TaskGraph
	CPM      *cpm.CPMResult
	Critical func(id string) bool
	Tasks    []model.Task
}

// Window resolves the selection's time range. An empty range means the
// configured window; other ranges are anchored at its start.
func (s *Service) Window(sel filter.Selection) (gantt.Window, error) {
	if sel.TimeRange == "" {
		return s.opts.Window, nil
	}
	return sel.Window(s.opts.Window.Start)
}

// Gantt lays out the tasks the selection matches. Criticality is computed
// over the whole project scope so text filters do not change it. A
// dependency cycle does not fail the view: every bar and line is drawn, the
// flagged tasks are highlighted and the view carries a warning.
func (s *Service) Gantt(ctx context.Context, sel filter.Selection) (*GanttView, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	w, err := s.Window(sel)
	if err != nil {
		return nil, err
	}
	name, projectID, scope, err := s.scope(ctx, sel.Project)
	if err != nil {
		return nil, err
	}

	view := &GanttView{
		Selection:   sel,
		ProjectName: name,
		Source:      s.opts.Source,
	}
	var critical func(id string) bool
	_, g, res, err := analysis.Run(scope, analysis.Config{
		ProjectName: name,
		AsOf:        s.opts.AsOf,
		Source:      s.opts.Source,
	})
	var cycle *graph.CycleError
	switch {
	case err == nil:
		critical = analysis.CriticalFunc(s.opts.Source, g, res)
	case errors.As(err, &cycle):
		critical = gantt.FlagCritical(scope)
		view.Source = analysis.SourceFlag
		view.Cycle = cycle.Path
		view.Warning = fmt.Sprintf("dependency cycle %s: showing flagged critical tasks",
			strings.Join(cycle.Path, " -> "))
	default:
		return nil, err
	}

	view.Chart = gantt.Build(sel.Apply(scope), w, critical)
	ms, err := s.milestones(ctx, projectID)
	if err != nil {
		return nil, err
	}
	view.Chart.AddMilestones(ms)
	return view, nil
}

// Analyze runs the critical path analysis over one project, or over every
// task when project is empty or "all".
func (s *Service) Analyze(ctx context.Context, project string) (*Analysis, error) {
	name, _, scope, err := s.scope(ctx, project)
	if err != nil {
		return nil, err
	}

	report, g, res, err := analysis.Run(scope, analysis.Config{
		ProjectName: name,
		AsOf:        s.opts.AsOf,
		Source:      s.opts.Source,
	})
	if err != nil {
		return nil, err
	}
	return &Analysis{
		Report:   report,
		Graph:    g,
		CPM:      res,
		Critical: analysis.CriticalFunc(s.opts.Source, g, res),
		Tasks:    scope,
	}, nil
}

// scope resolves a project key to its display name and id and returns its
// tasks. The id is empty for "all".
func (s *Service) scope(ctx context.Context, project string) (name, id string, tasks []model.Task, err error) {
	name = AllProjectsName
	if !isAll(project) {
		p, err := s.findProject(ctx, project)
		if err != nil {
			return "", "", nil, err
		}
		name, id = p.Name, p.ID
	}
	all, err := s.repo.ListTasks(ctx)
	if err != nil {
		return "", "", nil, fmt.Errorf("list tasks: %w", err)
	}
	return name, id, filter.Selection{Project: project}.Apply(all), nil
}

// milestones lists the milestones of one project, or of every project when
// projectID is empty.
func (s *Service) milestones(ctx context.Context, projectID string) ([]model.Milestone, error) {
	ms, err := s.repo.ListMilestones(ctx)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	if projectID == "" {
		return ms, nil
	}
	out := ms[:0]
	for _, m := range ms {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	return out, nil
}

// CriticalPath is the critical path report for a project or "all".
func (s *Service) CriticalPath(ctx context.Context, project string) (*analysis.Report, error) {
	a, err := s.Analyze(ctx, project)
	if err != nil {
		return nil, err
	}
	return a.Report, nil
}

// Tasks returns the tasks the selection matches.
func (s *Service) Tasks(ctx context.Context, sel filter.Selection) ([]model.Task, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.projectName(ctx, sel.Project); err != nil {
		return nil, err
	}
	all, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return sel.Apply(all), nil
}

// Deadlines lists open tasks in the selection due within the horizon.
func (s *Service) Deadlines(ctx context.Context, sel filter.Selection) ([]analysis.Deadline, error) {
	tasks, err := s.Tasks(ctx, sel)
	if err != nil {
		return nil, err
	}
	return analysis.Deadlines(tasks, s.opts.AsOf, s.opts.Horizon), nil
}

// Stats are the headline numbers for a project or "all".
func (s *Service) Stats(ctx context.Context, project string) (analysis.Stats, error) {
	a, err := s.Analyze(ctx, project)
	if err != nil {
		return analysis.Stats{}, err
	}
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return analysis.Stats{}, fmt.Errorf("list projects: %w", err)
	}
	if !isAll(project) {
		projects = matchProjects(projects, project)
	}
	return analysis.Summarize(projects, a.Tasks, s.opts.AsOf, a.Critical), nil
}

// Workload is the per-assignee load for a project or "all".
func (s *Service) Workload(ctx context.Context, project string) ([]analysis.Load, error) {
	a, err := s.Analyze(ctx, project)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return analysis.Workload(a.Tasks, members, a.Critical), nil
}
