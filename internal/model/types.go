package model

import "slices"

// Priority ranks how urgent a task or project is.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank orders priorities from low (0) to critical (3). Unknown values rank -1.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityCritical:
		return 3
	default:
		return -1
	}
}

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectReview     ProjectStatus = "review"
	ProjectCompleted  ProjectStatus = "completed"
)

// MemberStatus is a team member's availability.
type MemberStatus string

const (
	MemberActive  MemberStatus = "active"
	MemberBusy    MemberStatus = "busy"
	MemberOffline MemberStatus = "offline"
)

// Task is a unit of work with an inclusive date range and dependency list.
type Task struct {
	ID             string   `json:"id" validate:"required"`
	Name           string   `json:"name" validate:"required"`
	ProjectID      string   `json:"project_id" validate:"required"`
	Project        string   `json:"project"`
	Description    string   `json:"description,omitempty"`
	Start          Date     `json:"start_date"`
	End            Date     `json:"end_date"`
	Progress       int      `json:"progress" validate:"min=0,max=100"`
	Dependencies   []string `json:"dependencies"`
	Assignee       string   `json:"assignee"`
	Priority       Priority `json:"priority" validate:"priority"`
	Status         Status   `json:"status" validate:"taskstatus"`
	Critical       bool     `json:"critical"` // pre-assigned in data, see cpm for the computed value
	Tags           []string `json:"tags,omitempty"`
	EstimatedHours int      `json:"estimated_hours,omitempty" validate:"min=0"`
	CompletedHours int      `json:"completed_hours,omitempty" validate:"min=0"`
}

// DurationDays is the inclusive length of the task in calendar days, never
// less than 1.
func (t Task) DurationDays() int {
	n := int(t.Start.DaysUntil(t.End)) + 1
	if n < 1 {
		return 1
	}
	return n
}

// DependsOn returns the task's dependency ids with duplicates and self
// references removed, in first-seen order.
func (t Task) DependsOn() []string {
	seen := make(map[string]bool, len(t.Dependencies))
	var out []string
	for _, id := range t.Dependencies {
		if id == "" || id == t.ID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Clone returns a copy of t that shares no slices with it.
func (t Task) Clone() Task {
	t.Dependencies = slices.Clone(t.Dependencies)
	t.Tags = slices.Clone(t.Tags)
	return t
}

// Project groups tasks under a shared date range.
type Project struct {
	ID          string        `json:"id" validate:"required"`
	Name        string        `json:"name" validate:"required"`
	Description string        `json:"description,omitempty"`
	Start       Date          `json:"start_date"`
	End         Date          `json:"end_date"`
	Progress    int           `json:"progress" validate:"min=0,max=100"`
	Status      ProjectStatus `json:"status" validate:"projectstatus"`
	Priority    Priority      `json:"priority,omitempty" validate:"omitempty,priority"`
	TeamSize    int           `json:"team_size" validate:"min=0"`
	Manager     string        `json:"manager,omitempty"`
	Budget      int           `json:"budget,omitempty" validate:"min=0"`
	Spent       int           `json:"spent,omitempty" validate:"min=0"`
}

// BudgetRemaining is Budget minus Spent. It is negative when the project
// is over budget.
func (p Project) BudgetRemaining() int {
	return p.Budget - p.Spent
}

// Milestone is a dated checkpoint of a project.
type Milestone struct {
	ID        string `json:"id" validate:"required"`
	ProjectID string `json:"project_id" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Due       Date   `json:"due"`
	Completed bool   `json:"completed"`
}

// Member is a person tasks can be assigned to.
type Member struct {
	ID     string       `json:"id" validate:"required"`
	Name   string       `json:"name" validate:"required"`
	Email  string       `json:"email,omitempty" validate:"omitempty,email"`
	Role   string       `json:"role"`
	Status MemberStatus `json:"status" validate:"omitempty,oneof=active busy offline"`
	Skills []string     `json:"skills,omitempty"`
}

// Clone returns a copy of m that shares no slices with it.
func (m Member) Clone() Member {
	m.Skills = slices.Clone(m.Skills)
	return m
}

// CloneTasks deep-copies a task slice.
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
