package board

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/joshharrison/ganttboard/internal/analysis"
	"github.com/joshharrison/ganttboard/internal/filter"
	"github.com/joshharrison/ganttboard/internal/gantt"
	"github.com/joshharrison/ganttboard/internal/model"
	"github.com/joshharrison/ganttboard/internal/store"
	"github.com/joshharrison/ganttboard/internal/store/memory"
)

func newService(source analysis.CriticalSource) *Service {
	return New(memory.NewFixtures(), Options{
		AsOf:    model.MustDate("2024-01-09"),
		Source:  source,
		Horizon: 7,
	})
}

func TestGantt_ProjectComputed(t *testing.T) {
	svc := newService(analysis.SourceComputed)

	view, err := svc.Gantt(context.Background(), filter.Selection{Project: "1"})
	if err != nil {
		t.Fatalf("Gantt: %v", err)
	}
	if view.ProjectName != "Website Redesign" {
		t.Errorf("expected project name, got %q", view.ProjectName)
	}
	if view.Chart.Window != gantt.DefaultWindow() {
		t.Errorf("expected configured window, got %+v", view.Chart.Window)
	}
	if len(view.Chart.Rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(view.Chart.Rows))
	}
	for _, r := range view.Chart.Rows {
		if !r.Critical {
			t.Errorf("task %s should be critical when computed", r.Task.ID)
		}
	}
	for _, l := range view.Chart.Lines {
		if l.Style != gantt.StyleSolid {
			t.Errorf("line %s->%s should be solid", l.FromID, l.ToID)
		}
	}
}

func TestGantt_FlagSource(t *testing.T) {
	svc := newService(analysis.SourceFlag)

	view, err := svc.Gantt(context.Background(), filter.Selection{Project: "1"})
	if err != nil {
		t.Fatalf("Gantt: %v", err)
	}
	for _, r := range view.Chart.Rows {
		if r.Task.ID == "5" && r.Critical {
			t.Error("task 5 is not flagged critical")
		}
	}
}

func TestGantt_FilteredDependencyIsHidden(t *testing.T) {
	svc := newService(analysis.SourceComputed)

	// Only pending tasks: 5 and 6 are visible, 4 is not.
	view, err := svc.Gantt(context.Background(), filter.Selection{Project: "1", Status: "pending"})
	if err != nil {
		t.Fatalf("Gantt: %v", err)
	}
	if len(view.Chart.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(view.Chart.Rows))
	}
	if len(view.Chart.Lines) != 1 {
		t.Errorf("expected only the 5 -> 6 line, got %+v", view.Chart.Lines)
	}
	if len(view.Chart.Hidden) != 2 {
		t.Errorf("expected 4 -> 5 and 4 -> 6 hidden, got %+v", view.Chart.Hidden)
	}
	// criticality comes from the whole project, not the filtered rows
	if !view.Chart.Rows[0].Critical {
		t.Error("task 5 should stay critical under a status filter")
	}
}

func TestGantt_TimeRange(t *testing.T) {
	svc := newService(analysis.SourceComputed)

	view, err := svc.Gantt(context.Background(), filter.Selection{TimeRange: gantt.RangeQuarter})
	if err != nil {
		t.Fatalf("Gantt: %v", err)
	}
	if view.Chart.Window.End.String() != "2024-03-31" {
		t.Errorf("expected quarter window, got %s..%s", view.Chart.Window.Start, view.Chart.Window.End)
	}
	if view.ProjectName != AllProjectsName {
		t.Errorf("expected all-projects name, got %q", view.ProjectName)
	}
}

func TestGantt_Errors(t *testing.T) {
	svc := newService(analysis.SourceComputed)

	_, err := svc.Gantt(context.Background(), filter.Selection{Project: "99"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown project, got %v", err)
	}
	if _, err := svc.Gantt(context.Background(), filter.Selection{TimeRange: "decade"}); err == nil {
		t.Error("expected error for invalid time range")
	}
}

func TestCriticalPath_BySlug(t *testing.T) {
	svc := newService(analysis.SourceComputed)

	report, err := svc.CriticalPath(context.Background(), "marketing-campaign")
	if err != nil {
		t.Fatalf("CriticalPath: %v", err)
	}
	if report.ProjectName != "Marketing Campaign" {
		t.Errorf("unexpected project name %q", report.ProjectName)
	}
	if report.TotalDuration != 13 {
		t.Errorf("expected 13 days, got %d", report.TotalDuration)
	}
	if len(report.CriticalPath) != 3 {
		t.Errorf("expected 9 -> 10 -> 11, got %+v", report.CriticalPath)
	}
}

func TestProjects(t *testing.T) {
	svc := newService(analysis.SourceComputed)

	list, err := svc.Projects(context.Background(), filter.ProjectQuery{})
	if err != nil {
		t.Fatalf("Projects: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("expected 4 projects, got %d", len(list))
	}
	if list[0].TaskCount != 6 || list[0].CompletedTasks != 2 {
		t.Errorf("unexpected rollup for project 1: %+v", list[0])
	}
	if list[3].TaskCount != 0 {
		t.Errorf("project 4 has no tasks, got %d", list[3].TaskCount)
	}

	detail, err := svc.Project(context.Background(), "mobile-app-development")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if detail.ID != "2" || len(detail.Tasks) != 2 {
		t.Errorf("unexpected detail %+v", detail.ProjectSummary)
	}
	// on its own, project 2 is one chain
	if len(detail.CriticalPath.CriticalPath) != 2 {
		t.Errorf("expected 7 -> 8 critical, got %+v", detail.CriticalPath.CriticalPath)
	}

	if _, err := svc.Project(context.Background(), "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeadlinesStatsWorkload(t *testing.T) {
	svc := newService(analysis.SourceComputed)
	ctx := context.Background()

	deadlines, err := svc.Deadlines(ctx, filter.Selection{Project: "1"})
	if err != nil {
		t.Fatalf("Deadlines: %v", err)
	}
	if len(deadlines) != 4 || deadlines[0].TaskID != "3" || deadlines[0].Urgency != analysis.UrgencyOverdue {
		t.Errorf("expected overdue 3 then 4, 5, 6 due, got %+v", deadlines)
	}

	stats, err := svc.Stats(ctx, "1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalProjects != 1 || stats.TotalTasks != 6 || stats.CriticalTasks != 6 {
		t.Errorf("unexpected stats %+v", stats)
	}

	loads, err := svc.Workload(ctx, "2")
	if err != nil {
		t.Fatalf("Workload: %v", err)
	}
	for _, l := range loads {
		if l.Assignee == "Mike Wilson" && l.CriticalTasks != 1 {
			t.Errorf("expected Mike to hold critical task 7, got %+v", l)
		}
	}
}

func cycleService(source analysis.CriticalSource) *Service {
	task := func(id string, critical bool, deps ...string) model.Task {
		return model.Task{
			ID:           id,
			Name:         "Task " + id,
			ProjectID:    "p",
			Project:      "Loop",
			Start:        model.MustDate("2024-01-02"),
			End:          model.MustDate("2024-01-04"),
			Status:       model.StatusPending,
			Critical:     critical,
			Dependencies: deps,
		}
	}
	repo := memory.New(store.Dataset{
		Projects: []model.Project{{ID: "p", Name: "Loop"}},
		Tasks: []model.Task{
			task("a", true, "b"),
			task("b", false, "a"),
			task("c", false),
		},
	})
	return New(repo, Options{AsOf: model.MustDate("2024-01-03"), Source: source})
}

func TestGantt_CycleStillDrawn(t *testing.T) {
	for _, source := range []analysis.CriticalSource{analysis.SourceComputed, analysis.SourceFlag} {
		t.Run(string(source), func(t *testing.T) {
			svc := cycleService(source)

			view, err := svc.Gantt(context.Background(), filter.Selection{Project: "p"})
			if err != nil {
				t.Fatalf("Gantt: %v", err)
			}
			if len(view.Chart.Rows) != 3 {
				t.Fatalf("expected 3 rows, got %d", len(view.Chart.Rows))
			}
			if len(view.Chart.Lines) != 2 {
				t.Errorf("expected both cycle edges drawn, got %+v", view.Chart.Lines)
			}
			if len(view.Cycle) == 0 || !strings.Contains(view.Warning, "cycle") {
				t.Errorf("expected a cycle warning, got %q %v", view.Warning, view.Cycle)
			}
			if view.Source != analysis.SourceFlag {
				t.Errorf("expected flag source on a cycle, got %s", view.Source)
			}
			for _, r := range view.Chart.Rows {
				if r.Critical != (r.Task.ID == "a") {
					t.Errorf("task %s: critical = %v", r.Task.ID, r.Critical)
				}
			}
		})
	}

	// the analysis itself still reports the cycle
	_, err := cycleService(analysis.SourceComputed).CriticalPath(context.Background(), "p")
	if err == nil {
		t.Error("expected cycle error from CriticalPath")
	}
}

func TestGantt_AcyclicHasNoWarning(t *testing.T) {
	view, err := newService(analysis.SourceComputed).Gantt(context.Background(), filter.Selection{Project: "1"})
	if err != nil {
		t.Fatalf("Gantt: %v", err)
	}
	if view.Warning != "" || view.Cycle != nil {
		t.Errorf("unexpected warning %q", view.Warning)
	}
}

func TestGantt_DefaultSelectionUsesConfiguredWindow(t *testing.T) {
	configured := gantt.Window{Start: model.MustDate("2024-03-01"), End: model.MustDate("2024-04-15")}
	svc := New(memory.NewFixtures(), Options{Window: configured, AsOf: model.MustDate("2024-01-09")})

	view, err := svc.Gantt(context.Background(), filter.Selection{}.Normalize())
	if err != nil {
		t.Fatalf("Gantt: %v", err)
	}
	if view.Chart.Window != configured {
		t.Errorf("expected %s..%s, got %s..%s", configured.Start, configured.End,
			view.Chart.Window.Start, view.Chart.Window.End)
	}
}

func TestGantt_Milestones(t *testing.T) {
	svc := newService(analysis.SourceComputed)

	view, err := svc.Gantt(context.Background(), filter.Selection{Project: "1"})
	if err != nil {
		t.Fatalf("Gantt: %v", err)
	}
	if len(view.Chart.Milestones) != 4 {
		t.Fatalf("expected 4 milestones for project 1, got %+v", view.Chart.Milestones)
	}
	if m := view.Chart.Milestones[0]; m.Title != "Research Phase Complete" || !m.Completed {
		t.Errorf("unexpected first milestone %+v", m)
	}

	// across all projects only those due in January are placed
	all, err := svc.Gantt(context.Background(), filter.Selection{})
	if err != nil {
		t.Fatalf("Gantt: %v", err)
	}
	if len(all.Chart.Milestones) != 6 {
		t.Errorf("expected 6 January milestones, got %d", len(all.Chart.Milestones))
	}
}

func TestProject_BudgetAndMilestones(t *testing.T) {
	svc := newService(analysis.SourceComputed)

	detail, err := svc.Project(context.Background(), "1")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if detail.Spent != 37500 || detail.BudgetRemaining != 12500 {
		t.Errorf("expected 37500 spent and 12500 left, got %d and %d", detail.Spent, detail.BudgetRemaining)
	}
	if len(detail.Milestones) != 4 {
		t.Errorf("expected 4 milestones, got %+v", detail.Milestones)
	}

	list, err := svc.Projects(context.Background(), filter.ProjectQuery{})
	if err != nil {
		t.Fatalf("Projects: %v", err)
	}
	if list[3].BudgetRemaining != 3000 {
		t.Errorf("expected 3000 left on project 4, got %d", list[3].BudgetRemaining)
	}
}
