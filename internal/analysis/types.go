package analysis

import "github.com/joshharrison/ganttboard/internal/model"

// Risk grades how likely a task is to slip.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

func (r Risk) rank() int {
	switch r {
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

// CriticalSource selects where a task's critical flag comes from.
type CriticalSource string

const (
	// SourceComputed derives the flag from the critical path method.
	SourceComputed CriticalSource = "computed"
	// SourceFlag uses the flag stored with each task.
	SourceFlag CriticalSource = "flag"
)

// Config controls report generation.
type Config struct {
	ProjectName string         `json:"project_name"`
	AsOf        model.Date     `json:"as_of"`
	Source      CriticalSource `json:"source"`
}

// Report is the critical path analysis of one task set.
type Report struct {
	ProjectName   string         `json:"project_name"`
	AsOf          model.Date     `json:"as_of"`
	Source        CriticalSource `json:"source"`
	TotalDuration int            `json:"total_duration"` // days
	CriticalPath  []PathTask     `json:"critical_path"`
	Progress      float64        `json:"progress"` // percent of critical tasks completed
	Risk          Risk           `json:"risk"`
	Violations    []Violation    `json:"violations,omitempty"`
	Waves         []WaveSummary  `json:"waves"`
	TotalTasks    int            `json:"total_tasks"`
	Risks         []RiskItem     `json:"risks,omitempty"`

	// Start is the earliest task start. ProjectedEnd is the last day of a
	// schedule where every task waits for its dependencies to finish.
	Start        model.Date `json:"start"`
	ProjectedEnd model.Date `json:"projected_end"`
}

// PathTask is one task on the critical path.
type PathTask struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Duration int          `json:"duration"`
	Start    model.Date   `json:"start_date"`
	End      model.Date   `json:"end_date"`
	Status   model.Status `json:"status"`
	Progress int          `json:"progress"`
	Slack    int          `json:"slack"`
	Risk     Risk         `json:"risk"`

	EarliestStart model.Date `json:"earliest_start"`
	EarliestEnd   model.Date `json:"earliest_end"`
}

// RiskItem is one entry of the risk register.
type RiskItem struct {
	Subject    string `json:"subject"`
	TaskID     string `json:"task_id,omitempty"`
	Issue      string `json:"issue"`
	Impact     string `json:"impact"`
	Severity   Risk   `json:"severity"`
	Mitigation string `json:"mitigation"`
}

// Violation is a task scheduled to start before one of its dependencies ends.
type Violation struct {
	DependencyID string `json:"dependency_id"`
	TaskID       string `json:"task_id"`
	OverlapDays  int    `json:"overlap_days"`
}

// WaveSummary lists the tasks sharing an earliest start.
type WaveSummary struct {
	Index      int      `json:"index"`
	StartDay   int      `json:"start_day"`
	TaskIDs    []string `json:"task_ids"`
	IsCritical bool     `json:"is_critical"`
}

// Urgency buckets a deadline by days left.
type Urgency string

const (
	UrgencyOverdue Urgency = "overdue"
	UrgencyUrgent  Urgency = "urgent"
	UrgencySoon    Urgency = "soon"
	UrgencyOK      Urgency = "ok"
)

// Deadline is an open task due within the horizon or already overdue.
type Deadline struct {
	TaskID   string         `json:"task_id"`
	Name     string         `json:"name"`
	Project  string         `json:"project"`
	Assignee string         `json:"assignee"`
	Priority model.Priority `json:"priority"`
	Due      model.Date     `json:"due"`
	DaysLeft int            `json:"days_left"` // negative when overdue
	Urgency  Urgency        `json:"urgency"`
}

// Stats are the dashboard headline numbers.
type Stats struct {
	TotalProjects     int     `json:"total_projects"`
	ActiveProjects    int     `json:"active_projects"`
	TotalTasks        int     `json:"total_tasks"`
	CompletedTasks    int     `json:"completed_tasks"`
	CriticalTasks     int     `json:"critical_tasks"`
	OnSchedulePct     float64 `json:"on_schedule_pct"`
	AverageCompletion float64 `json:"average_completion"`
}

// Load is one assignee's share of the work.
type Load struct {
	Assignee      string             `json:"assignee"`
	Role          string             `json:"role,omitempty"`
	Status        model.MemberStatus `json:"status,omitempty"`
	TotalTasks    int                `json:"total_tasks"`
	OpenTasks     int                `json:"open_tasks"`
	CriticalTasks int                `json:"critical_tasks"`
	OpenHours     int                `json:"open_hours"`
}

// Rollup is a project's progress derived from its tasks.
type Rollup struct {
	ProjectID string  `json:"project_id"`
	Tasks     int     `json:"tasks"`
	Days      int     `json:"days"`
	Progress  float64 `json:"progress"`
}
