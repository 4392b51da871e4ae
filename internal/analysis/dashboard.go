package analysis

import (
	"sort"

	"github.com/joshharrison/ganttboard/internal/filter"
	"github.com/joshharrison/ganttboard/internal/model"
)

// Deadline urgency thresholds, in days left.
const (
	UrgentDays = 1
	SoonDays   = 3
)

// UrgencyFor buckets days left. Negative values are overdue.
func UrgencyFor(daysLeft int) Urgency {
	switch {
	case daysLeft < 0:
		return UrgencyOverdue
	case daysLeft <= UrgentDays:
		return UrgencyUrgent
	case daysLeft <= SoonDays:
		return UrgencySoon
	default:
		return UrgencyOK
	}
}

// Deadlines returns open tasks due by asOf+horizon days, soonest first.
// Open tasks whose end date has already passed are included as overdue.
func Deadlines(tasks []model.Task, asOf model.Date, horizon int) []Deadline {
	var out []Deadline
	for _, t := range tasks {
		if t.Status == model.StatusCompleted {
			continue
		}
		left := int(asOf.DaysUntil(t.End))
		if left > horizon {
			continue
		}
		out = append(out, Deadline{
			TaskID:   t.ID,
			Name:     t.Name,
			Project:  t.Project,
			Assignee: t.Assignee,
			Priority: t.Priority,
			Due:      t.End,
			DaysLeft: left,
			Urgency:  UrgencyFor(left),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysLeft != out[j].DaysLeft {
			return out[i].DaysLeft < out[j].DaysLeft
		}
		return out[i].Priority.Rank() > out[j].Priority.Rank()
	})
	return out
}

// Summarize computes the headline numbers. critical may be nil.
func Summarize(projects []model.Project, tasks []model.Task, asOf model.Date, critical func(id string) bool) Stats {
	s := Stats{TotalProjects: len(projects), TotalTasks: len(tasks)}

	total := 0
	for _, p := range projects {
		if p.Status != model.ProjectCompleted {
			s.ActiveProjects++
		}
		total += p.Progress
	}
	if len(projects) > 0 {
		s.AverageCompletion = float64(total) / float64(len(projects))
	}

	onSchedule := 0
	for _, t := range tasks {
		if t.Status == model.StatusCompleted {
			s.CompletedTasks++
		}
		if critical != nil && critical(t.ID) {
			s.CriticalTasks++
		}
		if t.Status == model.StatusCompleted || float64(t.Progress) >= ExpectedProgress(t, asOf) {
			onSchedule++
		}
	}
	if len(tasks) > 0 {
		s.OnSchedulePct = float64(onSchedule) / float64(len(tasks)) * 100
	}
	return s
}

// Workload groups tasks by assignee, busiest first. Members without tasks
// are listed with zero counts. critical may be nil.
func Workload(tasks []model.Task, members []model.Member, critical func(id string) bool) []Load {
	byName := make(map[string]*Load)
	var order []string
	get := func(name string) *Load {
		key := filter.Slug(name)
		if l, ok := byName[key]; ok {
			return l
		}
		l := &Load{Assignee: name}
		byName[key] = l
		order = append(order, key)
		return l
	}

	for _, m := range members {
		l := get(m.Name)
		l.Role = m.Role
		l.Status = m.Status
	}
	for _, t := range tasks {
		if t.Assignee == "" {
			continue
		}
		l := get(t.Assignee)
		l.TotalTasks++
		if t.Status == model.StatusCompleted {
			continue
		}
		l.OpenTasks++
		if open := t.EstimatedHours - t.CompletedHours; open > 0 {
			l.OpenHours += open
		}
		if critical != nil && critical(t.ID) {
			l.CriticalTasks++
		}
	}

	out := make([]Load, 0, len(order))
	for _, key := range order {
		out = append(out, *byName[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OpenTasks != out[j].OpenTasks {
			return out[i].OpenTasks > out[j].OpenTasks
		}
		return out[i].Assignee < out[j].Assignee
	})
	return out
}

// Rollups computes each project's duration-weighted task progress, in
// order of first appearance.
func Rollups(tasks []model.Task) []Rollup {
	idx := make(map[string]int)
	var out []Rollup
	weighted := make(map[string]int)
	for _, t := range tasks {
		i, ok := idx[t.ProjectID]
		if !ok {
			i = len(out)
			idx[t.ProjectID] = i
			out = append(out, Rollup{ProjectID: t.ProjectID})
		}
		d := t.DurationDays()
		out[i].Tasks++
		out[i].Days += d
		weighted[t.ProjectID] += d * t.Progress
	}
	for i := range out {
		if out[i].Days > 0 {
			out[i].Progress = float64(weighted[out[i].ProjectID]) / float64(out[i].Days)
		}
	}
	return out
}
