package graph

import (
	"fmt"
	"strings"

	"github.com/joshharrison/ganttboard/internal/model"
)

// TaskGraph is a directed acyclic graph of tasks. An edge runs from a
// dependency to the task that depends on it.
type TaskGraph struct {
	Tasks  map[string]*model.Task
	Adj    map[string][]string // task -> tasks that depend on it
	RevAdj map[string][]string // task -> its dependencies
	Roots  []string            // tasks with no dependencies in the graph
	Leaves []string            // tasks nothing in the graph depends on
}

// CycleError reports a dependency cycle as the ids along it, first id
// repeated at the end.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Path, " -> "))
}
