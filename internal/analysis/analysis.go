// Package analysis derives the critical path report, deadlines, headline
// stats and workload from a task set.
package analysis

import (
	"fmt"
	"math"

	"github.com/joshharrison/ganttboard/internal/cpm"
	"github.com/joshharrison/ganttboard/internal/graph"
	"github.com/joshharrison/ganttboard/internal/model"
)

// ParseSource accepts computed or flag. Empty input means computed.
func ParseSource(s string) (CriticalSource, error) {
	switch CriticalSource(s) {
	case "", SourceComputed:
		return SourceComputed, nil
	case SourceFlag:
		return SourceFlag, nil
	default:
		return "", fmt.Errorf("unknown critical source %q (use computed or flag)", s)
	}
}

// CriticalFunc returns the per-task critical lookup for source.
func CriticalFunc(source CriticalSource, g *graph.TaskGraph, res *cpm.CPMResult) func(id string) bool {
	if source == SourceFlag {
		return func(id string) bool {
			t, ok := g.Tasks[id]
			return ok && t.Critical
		}
	}
	return res.Critical
}

// Run builds the graph and CPM result for tasks and generates the report.
func Run(tasks []model.Task, cfg Config) (*Report, *graph.TaskGraph, *cpm.CPMResult, error) {
	g, err := graph.BuildFromTasks(tasks)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build task graph: %w", err)
	}
	res, err := cpm.Analyze(g)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("CPM analysis: %w", err)
	}
	return Generate(g, res, cfg), g, res, nil
}

// Generate creates the critical path report from CPM results.
func Generate(g *graph.TaskGraph, res *cpm.CPMResult, cfg Config) *Report {
	if cfg.Source == "" {
		cfg.Source = SourceComputed
	}
	critical := CriticalFunc(cfg.Source, g, res)
	violations := Violations(g)

	late := make(map[string]bool, len(violations))
	for _, v := range violations {
		late[v.TaskID] = true
	}

	r := &Report{
		ProjectName:   cfg.ProjectName,
		AsOf:          cfg.AsOf,
		Source:        cfg.Source,
		TotalDuration: res.TotalDuration,
		Risk:          RiskLow,
		Violations:    violations,
		TotalTasks:    g.TaskCount(),
		Start:         earliestStart(g),
	}
	if !r.Start.IsZero() && res.TotalDuration > 0 {
		r.ProjectedEnd = r.Start.AddDays(res.TotalDuration - 1)
	}

	completed := 0
	for _, id := range res.TopoOrder {
		if !critical(id) {
			continue
		}
		t := g.Tasks[id]
		ts := res.Tasks[id]
		pt := PathTask{
			ID:       id,
			Name:     t.Name,
			Duration: ts.Duration,
			Start:    t.Start,
			End:      t.End,
			Status:   t.Status,
			Progress: t.Progress,
			Slack:    ts.Slack,
			Risk:     TaskRisk(*t, true, late[id], cfg.AsOf),
		}
		if start, end, ok := res.Projected(id, r.Start); ok && !r.Start.IsZero() {
			pt.EarliestStart, pt.EarliestEnd = start, end
		}
		if pt.Risk.rank() > r.Risk.rank() {
			r.Risk = pt.Risk
		}
		if t.Status == model.StatusCompleted {
			completed++
		}
		r.CriticalPath = append(r.CriticalPath, pt)
	}
	if len(r.CriticalPath) > 0 {
		r.Progress = float64(completed) / float64(len(r.CriticalPath)) * 100
	}

	for _, w := range res.Waves {
		ws := WaveSummary{Index: w.Index, StartDay: w.Start, TaskIDs: w.TaskIDs}
		for _, id := range w.TaskIDs {
			if critical(id) {
				ws.IsCritical = true
				break
			}
		}
		r.Waves = append(r.Waves, ws)
	}

	r.Risks = RiskRegister(g, res.TopoOrder, critical, violations, cfg.AsOf)
	return r
}

// earliestStart is the first start date in g, or the zero date when no
// task has one.
func earliestStart(g *graph.TaskGraph) model.Date {
	var first model.Date
	for _, t := range g.Tasks {
		if t.Start.IsZero() {
			continue
		}
		if first.IsZero() || t.Start.Before(first) {
			first = t.Start
		}
	}
	return first
}

// TaskRisk grades a single task. late means it starts before one of its
// dependencies ends.
func TaskRisk(t model.Task, critical, late bool, asOf model.Date) Risk {
	if t.Status == model.StatusCompleted {
		return RiskLow
	}
	if late {
		return RiskHigh
	}
	if critical && !asOf.IsZero() && float64(t.Progress) < ExpectedProgress(t, asOf) {
		return RiskHigh
	}
	return RiskMedium
}

// ExpectedProgress is the percent complete a task would show at asOf if work
// went linearly from its start to its end, in [0, 100].
func ExpectedProgress(t model.Task, asOf model.Date) float64 {
	if asOf.Before(t.Start) {
		return 0
	}
	total := t.Start.DaysUntil(t.End)
	if total <= 0 {
		return 100
	}
	return math.Min(t.Start.DaysUntil(asOf)/total*100, 100)
}

// Violations lists every dependency edge whose dependent starts before the
// dependency ends, ordered by task id then dependency id.
func Violations(g *graph.TaskGraph) []Violation {
	var out []Violation
	for _, id := range g.IDs() {
		t := g.Tasks[id]
		for _, dep := range g.RevAdj[id] {
			d := g.Tasks[dep]
			if t.Start.Before(d.End) {
				out = append(out, Violation{
					DependencyID: dep,
					TaskID:       id,
					OverlapDays:  int(t.Start.DaysUntil(d.End)),
				})
			}
		}
	}
	return out
}
