package graph

import (
	"errors"
	"slices"
	"sort"

	"github.com/joshharrison/ganttboard/internal/model"
)

// ErrCycle is matched by every error BuildFromTasks returns for a cyclic
// dependency set.
var ErrCycle = errors.New("dependency cycle")

func (e *CycleError) Is(target error) bool { return target == ErrCycle }

// BuildFromTasks constructs a TaskGraph from tasks. Dependency ids that do
// not name a task in the set are ignored.
func BuildFromTasks(tasks []model.Task) (*TaskGraph, error) {
	g := &TaskGraph{
		Tasks:  make(map[string]*model.Task, len(tasks)),
		Adj:    make(map[string][]string),
		RevAdj: make(map[string][]string),
	}

	for i := range tasks {
		t := tasks[i].Clone()
		g.Tasks[t.ID] = &t
	}

	// DependsOn is already deduplicated, so every edge is added once. Edges
	// run from the dependency to the task that waits on it.
	for _, id := range g.IDs() {
		for _, dep := range g.Tasks[id].DependsOn() {
			if _, known := g.Tasks[dep]; !known {
				continue
			}
			g.Adj[dep] = append(g.Adj[dep], id)
			g.RevAdj[id] = append(g.RevAdj[id], dep)
		}
	}
	for _, ids := range g.Adj {
		sort.Strings(ids)
	}
	for _, ids := range g.RevAdj {
		sort.Strings(ids)
	}

	for id := range g.Tasks {
		if len(g.RevAdj[id]) == 0 {
			g.Roots = append(g.Roots, id)
		}
		if len(g.Adj[id]) == 0 {
			g.Leaves = append(g.Leaves, id)
		}
	}
	sort.Strings(g.Roots)
	sort.Strings(g.Leaves)

	if cycle := g.DetectCycle(); cycle != nil {
		return nil, &CycleError{Path: cycle}
	}

	return g, nil
}

// DetectCycle returns a closed cycle path such as [a b c a], or nil when
// the graph is acyclic. Tasks are visited in id order, so the cycle found
// is deterministic.
func (g *TaskGraph) DetectCycle() []string {
	const (
		unvisited = iota
		onPath
		done
	)

	state := make(map[string]int, len(g.Tasks))
	var path []string

	var visit func(id string) []string
	visit = func(id string) []string {
		state[id] = onPath
		path = append(path, id)
		for _, next := range g.Adj[id] {
			switch state[next] {
			case onPath:
				i := slices.Index(path, next)
				return append(slices.Clone(path[i:]), next)
			case unvisited:
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}
		path = path[:len(path)-1]
		state[id] = done
		return nil
	}

	for _, id := range g.IDs() {
		if state[id] == unvisited {
			if cycle := visit(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// IDs returns every task id in sorted order.
func (g *TaskGraph) IDs() []string {
	ids := make([]string, 0, len(g.Tasks))
	for id := range g.Tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TaskCount returns the number of tasks in the graph.
func (g *TaskGraph) TaskCount() int {
	return len(g.Tasks)
}

// EdgeCount returns the number of distinct dependency edges.
func (g *TaskGraph) EdgeCount() int {
	n := 0
	for _, tos := range g.Adj {
		n += len(tos)
	}
	return n
}
