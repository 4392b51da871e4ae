package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/joshharrison/ganttboard/internal/filter"
	"github.com/joshharrison/ganttboard/internal/graph"
	"github.com/joshharrison/ganttboard/internal/model"
)

// RiskRegister lists what threatens the schedule, in this order: open tasks
// that start before a dependency ends, critical tasks behind their expected
// progress at asOf, and assignees with open work in more than one project.
// order is the task order for the progress entries; critical may be nil.
func RiskRegister(g *graph.TaskGraph, order []string, critical func(id string) bool, violations []Violation, asOf model.Date) []RiskItem {
	if critical == nil {
		critical = func(string) bool { return false }
	}
	var out []RiskItem

	for _, v := range violations {
		t, dep := g.Tasks[v.TaskID], g.Tasks[v.DependencyID]
		if t.Status == model.StatusCompleted {
			continue
		}
		out = append(out, RiskItem{
			Subject:    t.Name,
			TaskID:     t.ID,
			Issue:      fmt.Sprintf("Starts before %s ends", dep.Name),
			Impact:     days(v.OverlapDays) + " delay",
			Severity:   RiskHigh,
			Mitigation: fmt.Sprintf("Move the start to %s or later", dep.End),
		})
	}

	if !asOf.IsZero() {
		for _, id := range order {
			t := g.Tasks[id]
			if !critical(id) || t.Status == model.StatusCompleted {
				continue
			}
			expected := ExpectedProgress(*t, asOf)
			gap := expected - float64(t.Progress)
			if gap <= 0 {
				continue
			}
			out = append(out, RiskItem{
				Subject:    t.Name,
				TaskID:     id,
				Issue:      fmt.Sprintf("%d%% complete, %.0f%% expected by %s", t.Progress, expected, asOf),
				Impact:     days(int(math.Ceil(gap/100*float64(t.DurationDays())))) + " behind",
				Severity:   RiskHigh,
				Mitigation: "Assign additional help",
			})
		}
	}

	return append(out, sharedAssignees(g)...)
}

// sharedAssignees flags people whose open tasks span several projects.
func sharedAssignees(g *graph.TaskGraph) []RiskItem {
	projects := make(map[string]map[string]bool)
	names := make(map[string]string)
	for _, id := range g.IDs() {
		t := g.Tasks[id]
		if t.Assignee == "" || t.Status == model.StatusCompleted {
			continue
		}
		key := filter.Slug(t.Assignee)
		if projects[key] == nil {
			projects[key] = make(map[string]bool)
			names[key] = t.Assignee
		}
		projects[key][t.ProjectID] = true
	}

	keys := make([]string, 0, len(projects))
	for k, ps := range projects {
		if len(ps) > 1 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]RiskItem, 0, len(keys))
	for _, k := range keys {
		out = append(out, RiskItem{
			Subject:    names[k],
			Issue:      fmt.Sprintf("Open work in %d projects", len(projects[k])),
			Impact:     "Delays can spread across projects",
			Severity:   RiskMedium,
			Mitigation: "Prioritize critical path tasks",
		})
	}
	return out
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
