package cpm

import (
	"fmt"
	"sort"

	"github.com/joshharrison/ganttboard/internal/graph"
	"github.com/joshharrison/ganttboard/internal/model"
)

// Analyze schedules every task as early as its dependencies allow and
// derives slack, the critical path and the waves. A task's duration is its
// inclusive length in calendar days, so day offsets are relative to the
// start of the earliest root.
func Analyze(g *graph.TaskGraph) (*CPMResult, error) {
	order, err := topoSort(g)
	if err != nil {
		return nil, err
	}

	result := &CPMResult{
		Tasks:     make(map[string]*TaskSchedule, len(order)),
		TopoOrder: order,
	}
	for _, id := range order {
		result.Tasks[id] = &TaskSchedule{TaskID: id, Duration: g.Tasks[id].DurationDays()}
	}

	result.TotalDuration = forwardPass(g, result)
	backwardPass(g, result)

	for _, id := range order {
		if result.Tasks[id].IsCritical {
			result.CriticalPath = append(result.CriticalPath, id)
		}
	}
	result.Waves = computeWaves(result)

	return result, nil
}

// forwardPass sets ES/EF in topological order and returns the project
// length, the latest EF.
func forwardPass(g *graph.TaskGraph, result *CPMResult) int {
	finish := 0
	for _, id := range result.TopoOrder {
		ts := result.Tasks[id]
		ts.ES = 0
		for _, dep := range g.RevAdj[id] {
			ts.ES = max(ts.ES, result.Tasks[dep].EF)
		}
		ts.EF = ts.ES + ts.Duration
		finish = max(finish, ts.EF)
	}
	return finish
}

// backwardPass sets LS/LF in reverse topological order. Tasks nothing
// depends on must finish by the project end; the rest by the earliest LS of
// their dependents.
func backwardPass(g *graph.TaskGraph, result *CPMResult) {
	for i := len(result.TopoOrder) - 1; i >= 0; i-- {
		id := result.TopoOrder[i]
		ts := result.Tasks[id]

		ts.LF = result.TotalDuration
		for _, next := range g.Adj[id] {
			ts.LF = min(ts.LF, result.Tasks[next].LS)
		}
		ts.LS = ts.LF - ts.Duration
		ts.Slack = ts.LS - ts.ES
		ts.IsCritical = ts.Slack == 0
	}
}

// topoSort is Kahn's algorithm. Ready tasks are taken in id order so the
// result is deterministic.
func topoSort(g *graph.TaskGraph) ([]string, error) {
	pending := make(map[string]int, len(g.Tasks))
	var ready []string
	for id := range g.Tasks {
		pending[id] = len(g.RevAdj[id])
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.Tasks))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		var unblocked []string
		for _, next := range g.Adj[id] {
			pending[next]--
			if pending[next] == 0 {
				unblocked = append(unblocked, next)
			}
		}
		sort.Strings(unblocked)
		ready = append(ready, unblocked...)
	}

	if len(order) != len(g.Tasks) {
		return nil, fmt.Errorf("schedule tasks: %w (%d of %d tasks ordered)", graph.ErrCycle, len(order), len(g.Tasks))
	}
	return order, nil
}

// computeWaves groups tasks by earliest start. Within a wave critical tasks
// come first, then ids in order.
func computeWaves(result *CPMResult) []Wave {
	byStart := make(map[int][]string)
	for _, id := range result.TopoOrder {
		es := result.Tasks[id].ES
		byStart[es] = append(byStart[es], id)
	}

	starts := make([]int, 0, len(byStart))
	for es := range byStart {
		starts = append(starts, es)
	}
	sort.Ints(starts)

	waves := make([]Wave, 0, len(starts))
	for i, es := range starts {
		ids := byStart[es]
		sort.Slice(ids, func(a, b int) bool {
			ca, cb := result.Tasks[ids[a]].IsCritical, result.Tasks[ids[b]].IsCritical
			if ca != cb {
				return ca
			}
			return ids[a] < ids[b]
		})

		w := Wave{Index: i, Start: es, TaskIDs: ids}
		for _, id := range ids {
			result.Tasks[id].Wave = i
			w.IsCritical = w.IsCritical || result.Tasks[id].IsCritical
		}
		waves = append(waves, w)
	}
	return waves
}

// Critical reports whether id is on the critical path. Unknown ids are not.
func (r *CPMResult) Critical(id string) bool {
	ts, ok := r.Tasks[id]
	return ok && ts.IsCritical
}

// Projected returns the earliest dates the task can occupy when the
// schedule starts on anchor. End is inclusive.
func (r *CPMResult) Projected(id string, anchor model.Date) (start, end model.Date, ok bool) {
	ts, ok := r.Tasks[id]
	if !ok {
		return model.Date{}, model.Date{}, false
	}
	return anchor.AddDays(ts.ES), anchor.AddDays(ts.EF - 1), true
}
