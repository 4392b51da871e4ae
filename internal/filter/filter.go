// Package filter holds the user's view selection and derives the visible
// task subset from it.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joshharrison/ganttboard/internal/gantt"
	"github.com/joshharrison/ganttboard/internal/model"
)

// All matches every value of a field. An empty field means the same.
const All = "all"

// Tab is the panel of the Gantt view being shown.
type Tab string

const (
	TabGantt        Tab = "gantt"
	TabCriticalPath Tab = "critical-path"
	TabTimeline     Tab = "timeline"
)

// Selection is the current project, time range, tab and task filters.
type Selection struct {
	Project   string          `json:"project"`
	TimeRange gantt.TimeRange `json:"time_range" validate:"omitempty,oneof=week month quarter year"`
	Tab       Tab             `json:"tab" validate:"omitempty,oneof=gantt critical-path timeline"`
	Search    string          `json:"search,omitempty"`
	Status    string          `json:"status,omitempty" validate:"omitempty,oneof=all pending in-progress completed"`
	Priority  string          `json:"priority,omitempty" validate:"omitempty,oneof=all low medium high critical"`
	Assignee  string          `json:"assignee,omitempty"`
}

// Default is the initial selection: every project, the configured window,
// the chart tab.
func Default() Selection {
	return Selection{Project: All, Tab: TabGantt}
}

// Normalize fills empty fields with their defaults and lowercases enums. An
// empty time range is kept: it selects the configured window.
func (s Selection) Normalize() Selection {
	if s.Project == "" {
		s.Project = All
	}
	s.TimeRange = gantt.TimeRange(strings.ToLower(strings.TrimSpace(string(s.TimeRange))))
	s.Tab = Tab(strings.ToLower(string(s.Tab)))
	if s.Tab == "" {
		s.Tab = TabGantt
	}
	s.Status = strings.ToLower(s.Status)
	s.Priority = strings.ToLower(s.Priority)
	return s
}

// Validate rejects unknown time ranges, tabs, statuses and priorities.
func (s Selection) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid selection: %w", err)
	}
	return nil
}

// Apply returns copies of the tasks the selection matches, in source order.
// tasks is never modified.
func (s Selection) Apply(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if s.Match(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Match reports whether a single task passes every filter.
func (s Selection) Match(t model.Task) bool {
	if !isAll(s.Project) && t.ProjectID != s.Project && Slug(t.Project) != s.Project {
		return false
	}
	if !isAll(s.Status) && string(t.Status) != s.Status {
		return false
	}
	if !isAll(s.Priority) && string(t.Priority) != s.Priority {
		return false
	}
	if !isAll(s.Assignee) && t.Assignee != s.Assignee && Slug(t.Assignee) != s.Assignee {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(s.Search)); q != "" {
		if !strings.Contains(strings.ToLower(t.Name), q) && !strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

// Window resolves the time range around anchor.
func (s Selection) Window(anchor model.Date) (gantt.Window, error) {
	r := s.TimeRange
	if r == "" {
		r = gantt.RangeMonth
	}
	return gantt.WindowFor(r, anchor)
}

// ProjectQuery filters the project list.
type ProjectQuery struct {
	Search   string `json:"search,omitempty"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// Apply returns the matching projects in source order.
func (q ProjectQuery) Apply(projects []model.Project) []model.Project {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]model.Project, 0, len(projects))
	for _, p := range projects {
		if !isAll(q.Status) && !strings.EqualFold(string(p.Status), q.Status) {
			continue
		}
		if !isAll(q.Priority) && !strings.EqualFold(string(p.Priority), q.Priority) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

var whitespace = regexp.MustCompile(`\s+`)

// Slug lowercases s and joins its words with dashes: "Website Redesign"
// becomes "website-redesign".
func Slug(s string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
}

func isAll(v string) bool {
	return v == "" || strings.EqualFold(v, All)
}
