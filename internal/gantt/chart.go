package gantt

import (
	"sort"

	"github.com/joshharrison/ganttboard/internal/model"
)

// Row is one task bar on the chart.
type Row struct {
	Index    int            `json:"index"`
	Task     model.Task     `json:"task"`
	Position Position       `json:"position"`
	Critical bool           `json:"critical"`
	Status   model.Status   `json:"status"`
	Priority model.Priority `json:"priority"`
	Progress int            `json:"progress"`
}

// Chart is a fully laid out Gantt view.
type Chart struct {
	Window Window   `json:"window"`
	Ticks  []string `json:"ticks"`
	Rows   []Row    `json:"rows"`
	Lines  []Line   `json:"lines"`
	Hidden []Edge   `json:"hidden,omitempty"`
	Height int      `json:"height"` // pixels

	Milestones []Marker `json:"milestones,omitempty"`
}

// Marker is a milestone placed on the timeline.
type Marker struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"project_id"`
	Title     string     `json:"title"`
	Date      model.Date `json:"date"`
	OffsetPct float64    `json:"offset_pct"`
	Completed bool       `json:"completed"`
}

// TickStep is the spacing of header dates, in days.
const TickStep = 2

// Build lays out tasks in the given order. critical decides which tasks are
// highlighted and which lines are solid; nil means none are.
func Build(tasks []model.Task, w Window, critical func(id string) bool) *Chart {
	if critical == nil {
		critical = func(string) bool { return false }
	}
	c := &Chart{
		Window: w,
		Rows:   make([]Row, 0, len(tasks)),
		Height: len(tasks) * RowHeight,
	}
	for _, d := range w.Ticks(TickStep) {
		c.Ticks = append(c.Ticks, d.String())
	}
	for i, t := range tasks {
		c.Rows = append(c.Rows, Row{
			Index:    i,
			Task:     t.Clone(),
			Position: w.Position(t.Start, t.End),
			Critical: critical(t.ID),
			Status:   t.Status,
			Priority: t.Priority,
			Progress: t.Progress,
		})
	}
	c.Lines, c.Hidden = Lines(tasks, critical)
	return c
}

// AddMilestones places the milestones due inside the window, earliest
// first. Milestones outside it are skipped.
func (c *Chart) AddMilestones(ms []model.Milestone) {
	for _, m := range ms {
		if !c.Window.Contains(m.Due) {
			continue
		}
		c.Milestones = append(c.Milestones, Marker{
			ID:        m.ID,
			ProjectID: m.ProjectID,
			Title:     m.Title,
			Date:      m.Due,
			OffsetPct: c.Window.Position(m.Due, m.Due).OffsetPct,
			Completed: m.Completed,
		})
	}
	sort.SliceStable(c.Milestones, func(i, j int) bool {
		return c.Milestones[i].Date.Before(c.Milestones[j].Date)
	})
}

// FlagCritical uses each task's preset critical flag.
func FlagCritical(tasks []model.Task) func(id string) bool {
	set := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if t.Critical {
			set[t.ID] = true
		}
	}
	return func(id string) bool { return set[id] }
}
