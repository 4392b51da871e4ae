package analysis

import (
	"testing"

	"github.com/joshharrison/ganttboard/internal/store"
)

func TestDeadlines(t *testing.T) {
	got := Deadlines(projectTasks(""), asOf, 7)

	want := []struct {
		id      string
		left    int
		urgency Urgency
	}{
		{"3", -1, UrgencyOverdue}, // ended yesterday, still in progress
		{"11", 1, UrgencyUrgent},
		{"4", 3, UrgencySoon},
		{"5", 5, UrgencyOK},
		{"7", 6, UrgencyOK}, // critical priority sorts before high
		{"6", 6, UrgencyOK},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d deadlines, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].TaskID != w.id || got[i].DaysLeft != w.left || got[i].Urgency != w.urgency {
			t.Errorf("deadline %d: expected %s/%d/%s, got %s/%d/%s",
				i, w.id, w.left, w.urgency, got[i].TaskID, got[i].DaysLeft, got[i].Urgency)
		}
	}
}

func TestUrgencyFor(t *testing.T) {
	for left, want := range map[int]Urgency{-3: UrgencyOverdue, 0: UrgencyUrgent, 1: UrgencyUrgent, 2: UrgencySoon, 3: UrgencySoon, 4: UrgencyOK} {
		if got := UrgencyFor(left); got != want {
			t.Errorf("%d days: expected %s, got %s", left, want, got)
		}
	}
}

func TestSummarize(t *testing.T) {
	ds := store.FixtureDataset()
	_, _, res, err := Run(ds.Tasks, Config{AsOf: asOf})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := Summarize(ds.Projects, ds.Tasks, asOf, res.Critical)

	if s.TotalProjects != 4 || s.ActiveProjects != 3 {
		t.Errorf("expected 3 of 4 projects active, got %d of %d", s.ActiveProjects, s.TotalProjects)
	}
	if !near(s.AverageCompletion, 72.5) {
		t.Errorf("expected average completion 72.5, got %.2f", s.AverageCompletion)
	}
	if s.TotalTasks != 11 || s.CompletedTasks != 4 {
		t.Errorf("expected 4 of 11 tasks completed, got %d of %d", s.CompletedTasks, s.TotalTasks)
	}
	if s.CriticalTasks != 6 {
		t.Errorf("expected 6 critical tasks, got %d", s.CriticalTasks)
	}
	// only task 3 is behind
	if !near(s.OnSchedulePct, 1000.0/11) {
		t.Errorf("expected on-schedule 90.91, got %.2f", s.OnSchedulePct)
	}
}

func TestWorkload(t *testing.T) {
	ds := store.FixtureDataset()
	_, _, res, err := Run(ds.Tasks, Config{AsOf: asOf})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loads := Workload(ds.Tasks, ds.Members, res.Critical)

	want := []struct {
		name           string
		open, critical int
	}{
		{"Jane Smith", 2, 1},
		{"Lisa Chen", 2, 1},
		{"Mike Wilson", 2, 1},
		{"John Doe", 1, 1},
		{"Sarah Johnson", 0, 0},
	}
	if len(loads) != len(want) {
		t.Fatalf("expected %d assignees, got %d: %+v", len(want), len(loads), loads)
	}
	for i, w := range want {
		l := loads[i]
		if l.Assignee != w.name || l.OpenTasks != w.open || l.CriticalTasks != w.critical {
			t.Errorf("row %d: expected %s open=%d critical=%d, got %s open=%d critical=%d",
				i, w.name, w.open, w.critical, l.Assignee, l.OpenTasks, l.CriticalTasks)
		}
	}
	if loads[3].Role != "Senior Designer" || loads[3].TotalTasks != 4 {
		t.Errorf("expected John Doe to carry role and 4 tasks, got %+v", loads[3])
	}
}

func TestRollups(t *testing.T) {
	rollups := Rollups(projectTasks("1"))
	if len(rollups) != 1 {
		t.Fatalf("expected 1 rollup, got %d", len(rollups))
	}
	r := rollups[0]
	if r.Tasks != 6 || r.Days != 24 {
		t.Errorf("expected 6 tasks over 24 days, got %d over %d", r.Tasks, r.Days)
	}
	if !near(r.Progress, 1100.0/24) {
		t.Errorf("expected progress 45.83, got %.2f", r.Progress)
	}
}
