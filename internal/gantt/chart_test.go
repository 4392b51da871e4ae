package gantt

import (
	"testing"

	"github.com/joshharrison/ganttboard/internal/model"
	"github.com/joshharrison/ganttboard/internal/store"
)

func ganttTask(id string, critical bool, deps ...string) model.Task {
	return model.Task{
		ID:           id,
		Name:         "Task " + id,
		ProjectID:    "p",
		Start:        model.MustDate("2024-01-02"),
		End:          model.MustDate("2024-01-04"),
		Critical:     critical,
		Dependencies: deps,
	}
}

func TestLines_OneLinePerDependency(t *testing.T) {
	tasks := []model.Task{
		ganttTask("a", false),
		ganttTask("b", false, "a", "a"),
	}

	lines, hidden := Lines(tasks, nil)
	if len(lines) != 1 {
		t.Fatalf("expected exactly one line, got %d: %+v", len(lines), lines)
	}
	if len(hidden) != 0 {
		t.Errorf("expected no hidden edges, got %v", hidden)
	}

	l := lines[0]
	if l.FromID != "a" || l.ToID != "b" {
		t.Errorf("expected a -> b, got %s -> %s", l.FromID, l.ToID)
	}
	if l.X1 != 75 || l.X2 != 25 {
		t.Errorf("expected anchors 75%%/25%%, got %.0f/%.0f", l.X1, l.X2)
	}
	if l.Y1 != 32 || l.Y2 != 96 {
		t.Errorf("expected y 32 -> 96, got %.0f -> %.0f", l.Y1, l.Y2)
	}
	if l.Style != StyleDashed || l.Critical {
		t.Errorf("expected dashed non-critical line, got %+v", l)
	}
}

func TestLines_MissingDependencySkipped(t *testing.T) {
	tasks := []model.Task{
		ganttTask("b", true, "a"),
		ganttTask("c", true, "ghost"),
	}

	lines, hidden := Lines(tasks, nil)
	if len(lines) != 0 {
		t.Errorf("expected no lines, got %+v", lines)
	}
	if len(hidden) != 2 {
		t.Fatalf("expected 2 hidden edges, got %v", hidden)
	}
	if hidden[0] != (Edge{FromID: "a", ToID: "b"}) {
		t.Errorf("unexpected hidden edge %+v", hidden[0])
	}
}

func TestLines_CriticalNeedsBothEnds(t *testing.T) {
	tasks := []model.Task{
		ganttTask("a", true),
		ganttTask("b", true, "a"),
		ganttTask("c", false, "b"),
	}

	lines, _ := Lines(tasks, FlagCritical(tasks))
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !lines[0].Critical || lines[0].Style != StyleSolid {
		t.Errorf("a -> b should be solid critical, got %+v", lines[0])
	}
	if lines[1].Critical || lines[1].Style != StyleDashed {
		t.Errorf("b -> c should be dashed, got %+v", lines[1])
	}
}

func TestLines_UpwardDependency(t *testing.T) {
	// the dependent is listed above its dependency
	tasks := []model.Task{
		ganttTask("b", false, "a"),
		ganttTask("a", false),
	}

	lines, _ := Lines(tasks, nil)
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	if lines[0].FromRow != 1 || lines[0].ToRow != 0 {
		t.Errorf("expected rows 1 -> 0, got %d -> %d", lines[0].FromRow, lines[0].ToRow)
	}
}

func TestBuild_Fixtures(t *testing.T) {
	var tasks []model.Task
	for _, task := range store.FixtureDataset().Tasks {
		if task.ProjectID == "1" {
			tasks = append(tasks, task)
		}
	}

	c := Build(tasks, DefaultWindow(), FlagCritical(tasks))

	if len(c.Rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(c.Rows))
	}
	if c.Height != 6*RowHeight {
		t.Errorf("expected height %d, got %d", 6*RowHeight, c.Height)
	}
	// 2->1, 3->2, 4->3, 5->4, 6->4, 6->5
	if len(c.Lines) != 6 {
		t.Errorf("expected 6 lines, got %d", len(c.Lines))
	}
	if len(c.Hidden) != 0 {
		t.Errorf("expected no hidden edges, got %v", c.Hidden)
	}

	row4 := c.Rows[3]
	if row4.Task.ID != "4" {
		t.Fatalf("expected row 3 to be task 4, got %s", row4.Task.ID)
	}
	approx(t, "task 4 offset", row4.Position.OffsetPct, 23.33)
	approx(t, "task 4 width", row4.Position.WidthPct, 13.33)
	if !row4.Critical {
		t.Error("task 4 is flagged critical")
	}

	solid := 0
	for _, l := range c.Lines {
		if l.Style == StyleSolid {
			solid++
		}
	}
	// 5 is not flagged, so 5->4 and 6->5 are dashed.
	if solid != 4 {
		t.Errorf("expected 4 solid lines, got %d", solid)
	}
	if len(c.Ticks) != 16 {
		t.Errorf("expected 16 header ticks, got %d", len(c.Ticks))
	}
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	tasks := []model.Task{ganttTask("a", false), ganttTask("b", false, "a")}
	c := Build(tasks, DefaultWindow(), nil)
	c.Rows[1].Task.Dependencies[0] = "changed"
	if tasks[1].Dependencies[0] != "a" {
		t.Errorf("chart row shares dependency slice with input")
	}
}

func TestAddMilestones_InsideWindowOnly(t *testing.T) {
	c := Build(nil, DefaultWindow(), nil)
	c.AddMilestones([]model.Milestone{
		{ID: "late", Title: "Beta Release", Due: model.MustDate("2024-02-28")},
		{ID: "launch", Title: "Project Launch", Due: model.MustDate("2024-01-16")},
		{ID: "research", Title: "Research Phase Complete", Due: model.MustDate("2024-01-01"), Completed: true},
	})

	if len(c.Milestones) != 2 {
		t.Fatalf("expected 2 markers inside January, got %+v", c.Milestones)
	}
	if c.Milestones[0].ID != "research" || c.Milestones[1].ID != "launch" {
		t.Errorf("expected markers in date order, got %+v", c.Milestones)
	}
	if c.Milestones[0].OffsetPct != 0 || !c.Milestones[0].Completed {
		t.Errorf("unexpected first marker %+v", c.Milestones[0])
	}
	// 15 of 30 days in
	if c.Milestones[1].OffsetPct != 50 {
		t.Errorf("expected launch at 50%%, got %.2f", c.Milestones[1].OffsetPct)
	}
}

func TestLines_DrawsCycles(t *testing.T) {
	tasks := []model.Task{
		ganttTask("a", false, "b"),
		ganttTask("b", false, "a"),
	}
	lines, hidden := Lines(tasks, nil)
	if len(lines) != 2 || len(hidden) != 0 {
		t.Errorf("expected both cycle edges drawn, got %+v hidden %+v", lines, hidden)
	}
}
