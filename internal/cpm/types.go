package cpm

// CPMResult is the schedule of a task graph. Day offsets count from the
// start of the earliest root task.
type CPMResult struct {
	Tasks         map[string]*TaskSchedule `json:"tasks"`
	CriticalPath  []string                 `json:"critical_path"` // topological order
	TotalDuration int                      `json:"total_duration"`
	Waves         []Wave                   `json:"waves"`
	TopoOrder     []string                 `json:"topo_order"`
}

// TaskSchedule is one task's slot in the schedule, in days.
type TaskSchedule struct {
	TaskID     string `json:"task_id"`
	Duration   int    `json:"duration"`
	ES         int    `json:"es"` // earliest start/finish
	EF         int    `json:"ef"`
	LS         int    `json:"ls"` // latest start/finish
	LF         int    `json:"lf"`
	Slack      int    `json:"slack"`
	IsCritical bool   `json:"is_critical"`
	Wave       int    `json:"wave"`
}

// Wave is the set of tasks that can start on the same day.
type Wave struct {
	Index      int      `json:"index"`
	Start      int      `json:"start"` // ES shared by the wave
	TaskIDs    []string `json:"task_ids"`
	IsCritical bool     `json:"is_critical"`
}
