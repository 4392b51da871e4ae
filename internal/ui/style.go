package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	Blue        = color.New(color.FgBlue).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// PrintLogo renders the colored ganttboard banner to w.
func PrintLogo(w io.Writer) {
	frame := color.New(color.FgCyan)
	done := color.New(color.FgGreen)
	crit := color.New(color.FgRed)
	open := color.New(color.FgBlue)
	brand := color.New(color.Bold, color.FgMagenta)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +------------------------------+")
	done.Fprintln(w, "   |  ████████                    |")
	crit.Fprintln(w, "   |        ██████████            |")
	open.Fprintln(w, "   |              ░░░░░░░░░░░░    |")
	frame.Fprintln(w, "   |==============================|")
	brand.Fprintln(w, "   |   G A N T T B O A R D        |")
	frame.Fprintln(w, "   +------------------------------+")
	fmt.Fprintln(w)
}

// projectColors is a palette of distinct bold colors for telling projects
// apart.
var projectColors = []func(a ...any) string{
	BoldMagenta,
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

// colorIndex hashes an id to a palette index.
func colorIndex(id string) int {
	var h uint32
	for _, c := range id {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(projectColors)))
}

// ProjectLabel returns the project name colored by its id.
func ProjectLabel(id, name string) string {
	return projectColors[colorIndex(id)](name)
}

// TaskPrefix returns a dim [task-id] prefix string.
func TaskPrefix(taskID string) string {
	return Dim("[") + BoldMagenta(taskID) + Dim("]")
}

// StatusIcon returns a colored task status icon for compact table display.
func StatusIcon(status string) string {
	switch status {
	case "completed":
		return Green("✓")
	case "in-progress":
		return Cyan("●")
	case "pending":
		return Dim("◌")
	default:
		return Yellow("?")
	}
}

// Priority returns the priority name colored by urgency.
func Priority(p string) string {
	switch p {
	case "critical":
		return BoldRed(p)
	case "high":
		return Red(p)
	case "medium":
		return Yellow(p)
	case "low":
		return Green(p)
	default:
		return Dim(p)
	}
}

// Risk returns a colored risk level.
func Risk(r string) string {
	switch r {
	case "high":
		return BoldRed(r)
	case "medium":
		return Yellow(r)
	default:
		return Green(r)
	}
}

// Urgency returns a colored deadline urgency.
func Urgency(u string) string {
	switch u {
	case "overdue", "urgent":
		return BoldRed(u)
	case "soon":
		return BoldYellow(u)
	default:
		return Green(u)
	}
}

// Critical marks critical items.
func Critical(isCritical bool) string {
	if isCritical {
		return BoldYellow("⚡")
	}
	return " "
}
