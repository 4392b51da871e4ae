// Package reporter renders board views for the terminal.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/joshharrison/ganttboard/internal/analysis"
	"github.com/joshharrison/ganttboard/internal/board"
	"github.com/joshharrison/ganttboard/internal/gantt"
	"github.com/joshharrison/ganttboard/internal/graph"
	"github.com/joshharrison/ganttboard/internal/model"
	"github.com/joshharrison/ganttboard/internal/ui"
)

// DefaultWidth is the number of terminal cells a full window spans.
const DefaultWidth = 60

// Reporter writes terminal views to W.
type Reporter struct {
	W     io.Writer
	Width int
}

// New creates a Reporter with the default bar width.
func New(w io.Writer) *Reporter {
	return &Reporter{W: w, Width: DefaultWidth}
}

// JSON returns v as indented JSON.
func JSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// BarSpan converts a position into the [start, end) cells of a bar width
// cells wide. Bars are cropped to the visible cells and are at least one
// cell long when any part is visible; ok is false when nothing is.
func BarSpan(p gantt.Position, width int) (start, end int, ok bool) {
	from := p.OffsetPct / 100 * float64(width)
	to := (p.OffsetPct + p.WidthPct) / 100 * float64(width)
	if to < from {
		from, to = to, from
	}
	start = int(math.Floor(from))
	end = int(math.Ceil(to))
	if end == start {
		end++
	}
	if start < 0 {
		start = 0
	}
	if end > width {
		end = width
	}
	return start, end, start < end
}

// PrintGantt draws the chart as text bars with the dependency list below.
func (r *Reporter) PrintGantt(view *board.GanttView) {
	c := view.Chart
	w := r.width()

	fmt.Fprintf(r.W, "📊 %s %s\n", ui.BoldCyan("Gantt:"), ui.BoldWhite(view.ProjectName))
	fmt.Fprintf(r.W, "%s %s → %s  %s\n",
		ui.Dim("Window:"), c.Window.Start, c.Window.End,
		ui.Dim(fmt.Sprintf("(critical: %s)", view.Source)))
	if view.Warning != "" {
		fmt.Fprintf(r.W, "%s %s\n", ui.BoldYellow("⚠"), ui.Yellow(view.Warning))
	}
	fmt.Fprintln(r.W)

	if len(c.Rows) == 0 {
		fmt.Fprintf(r.W, "  %s\n", ui.Dim("No tasks match the current selection."))
		return
	}

	fmt.Fprintf(r.W, "    %-6s %-28s %s\n", "", "", ui.Dim(tickHeader(c, w)))
	for _, row := range c.Rows {
		name := truncate(row.Task.Name, 28)
		fmt.Fprintf(r.W, "  %s %s %-6s %-28s %s %s\n",
			ui.StatusIcon(string(row.Status)), ui.Critical(row.Critical),
			row.Task.ID, name, bar(row, w), ui.Dim(fmt.Sprintf("%3d%%", row.Progress)))
	}

	if len(c.Lines) > 0 {
		fmt.Fprintf(r.W, "\n🔗 %s\n", ui.BoldCyan("Dependencies"))
		for _, l := range c.Lines {
			arrow := ui.Dim("╌╌→")
			if l.Style == gantt.StyleSolid {
				arrow = ui.BoldRed("──→")
			}
			fmt.Fprintf(r.W, "    %s %s %s\n", ui.Magenta(l.FromID), arrow, ui.Magenta(l.ToID))
		}
	}
	if n := len(c.Hidden); n > 0 {
		fmt.Fprintf(r.W, "\n  %s\n", ui.Yellow(fmt.Sprintf("%d dependencies point outside this view", n)))
	}
	if len(c.Milestones) > 0 {
		fmt.Fprintf(r.W, "\n🏁 %s\n", ui.BoldCyan("Milestones"))
		for _, m := range c.Milestones {
			fmt.Fprintf(r.W, "    %s %s %s\n", milestoneIcon(m.Completed), m.Date, m.Title)
		}
	}
}

// PrintMilestones lists a project's milestones in due order.
func (r *Reporter) PrintMilestones(ms []model.Milestone) {
	fmt.Fprintf(r.W, "🏁 %s\n", ui.BoldCyan("Milestones"))
	if len(ms) == 0 {
		fmt.Fprintf(r.W, "  %s\n", ui.Dim("None."))
		return
	}
	sorted := append([]model.Milestone(nil), ms...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Due.Before(sorted[j].Due) })
	for _, m := range sorted {
		fmt.Fprintf(r.W, "  %s %s  %s\n", milestoneIcon(m.Completed), m.Due, m.Title)
	}
}

func milestoneIcon(completed bool) string {
	if completed {
		return ui.Green("✓")
	}
	return ui.Dim("◇")
}

func (r *Reporter) width() int {
	if r.Width <= 0 {
		return DefaultWidth
	}
	return r.Width
}

// tickHeader places the day-of-month of every tick at its column.
func tickHeader(c *gantt.Chart, width int) string {
	cells := []rune(strings.Repeat(" ", width))
	for _, s := range c.Ticks {
		d, err := model.ParseDate(s)
		if err != nil {
			continue
		}
		start, _, ok := BarSpan(c.Window.Position(d, d), width)
		if !ok {
			continue
		}
		label := []rune(fmt.Sprintf("%d", d.Day()))
		if start+len(label) > width || (start > 0 && cells[start-1] != ' ') {
			continue
		}
		copy(cells[start:], label)
	}
	return string(cells)
}

// bar renders one row: completed part solid, the rest shaded, critical rows
// in red.
func bar(row gantt.Row, width int) string {
	start, end, ok := BarSpan(row.Position, width)
	if !ok {
		return strings.Repeat(" ", width)
	}
	length := end - start
	done := int(math.Round(float64(length) * float64(row.Progress) / 100))

	paint := ui.Blue
	switch {
	case row.Critical:
		paint = ui.Red
	case row.Status == model.StatusCompleted:
		paint = ui.Green
	}

	return strings.Repeat(" ", start) +
		paint(strings.Repeat("█", done)+strings.Repeat("░", length-done)) +
		strings.Repeat(" ", width-end)
}

// PrintCriticalPath writes the critical path report.
func (r *Reporter) PrintCriticalPath(rep *analysis.Report) {
	fmt.Fprintf(r.W, "⚡ %s %s\n", ui.BoldCyan("Critical Path:"), ui.BoldWhite(rep.ProjectName))
	fmt.Fprintln(r.W, ui.Cyan("═══════════════════════════════"))
	fmt.Fprintf(r.W, "Duration:  %s\n", ui.Bold(fmt.Sprintf("%d days", rep.TotalDuration)))
	if !rep.ProjectedEnd.IsZero() {
		fmt.Fprintf(r.W, "Finish:    %s %s\n", rep.ProjectedEnd, ui.Dim(fmt.Sprintf("(from %s)", rep.Start)))
	}
	fmt.Fprintf(r.W, "Progress:  %s\n", ui.Bold(fmt.Sprintf("%.0f%%", rep.Progress)))
	fmt.Fprintf(r.W, "Risk:      %s\n", ui.Risk(string(rep.Risk)))
	fmt.Fprintf(r.W, "Tasks:     %d of %d critical %s\n\n",
		len(rep.CriticalPath), rep.TotalTasks, ui.Dim(fmt.Sprintf("(as of %s, %s)", rep.AsOf, rep.Source)))

	for i, pt := range rep.CriticalPath {
		fmt.Fprintf(r.W, "  %s %s %-30s %s → %s  %2dd  %s\n",
			ui.StatusIcon(string(pt.Status)), ui.BoldMagenta(fmt.Sprintf("%-4s", pt.ID)),
			truncate(pt.Name, 30), pt.Start, pt.End, pt.Duration, ui.Risk(string(pt.Risk)))
		if i < len(rep.CriticalPath)-1 {
			fmt.Fprintf(r.W, "    %s\n", ui.Dim("│"))
		}
	}

	if len(rep.Violations) > 0 {
		fmt.Fprintf(r.W, "\n%s\n", ui.BoldYellow("Schedule conflicts:"))
		for _, v := range rep.Violations {
			fmt.Fprintf(r.W, "  %s %s starts %d day(s) before %s ends\n",
				ui.Yellow("!"), ui.BoldMagenta(v.TaskID), v.OverlapDays, ui.Magenta(v.DependencyID))
		}
	}

	if len(rep.Risks) > 0 {
		fmt.Fprintf(r.W, "\n%s\n", ui.BoldYellow("Risk register:"))
		for _, risk := range rep.Risks {
			fmt.Fprintf(r.W, "  %-6s %s: %s (%s)\n", ui.Risk(string(risk.Severity)),
				ui.Bold(risk.Subject), risk.Issue, risk.Impact)
			fmt.Fprintf(r.W, "         %s %s\n", ui.Dim("→"), risk.Mitigation)
		}
	}
}

// PrintTasks writes one line per task.
func (r *Reporter) PrintTasks(tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(r.W, ui.Dim("No tasks match."))
		return
	}
	for _, t := range tasks {
		fmt.Fprintf(r.W, "  %s %s %-30s %-22s %-14s %-8s %s → %s %3d%%\n",
			ui.StatusIcon(string(t.Status)), ui.Critical(t.Critical), truncate(t.Name, 30),
			truncate(t.Project, 22), truncate(t.Assignee, 14), ui.Priority(string(t.Priority)),
			t.Start, t.End, t.Progress)
	}
	fmt.Fprintf(r.W, "\n%s\n", ui.Dim(fmt.Sprintf("%d tasks", len(tasks))))
}

// PrintProjects writes the project list.
func (r *Reporter) PrintProjects(projects []board.ProjectSummary) {
	for _, p := range projects {
		fmt.Fprintf(r.W, "  %s %-26s %-12s %-8s %s → %s  %3d%%  %s\n",
			ui.Dim(fmt.Sprintf("%-3s", p.ID)), ui.ProjectLabel(p.ID, truncate(p.Name, 26)),
			string(p.Status), ui.Priority(string(p.Priority)), p.Start, p.End, p.Progress,
			ui.Dim(fmt.Sprintf("%d tasks, %d done, team %d", p.TaskCount, p.CompletedTasks, p.TeamSize)))
		if p.Budget > 0 {
			fmt.Fprintf(r.W, "      %s\n", ui.Dim(fmt.Sprintf("budget $%d, spent $%d, remaining $%d",
				p.Budget, p.Spent, p.BudgetRemaining)))
		}
	}
}

// PrintDeadlines writes the upcoming deadlines.
func (r *Reporter) PrintDeadlines(deadlines []analysis.Deadline) {
	fmt.Fprintf(r.W, "⏰ %s\n", ui.BoldCyan("Upcoming Deadlines"))
	if len(deadlines) == 0 {
		fmt.Fprintf(r.W, "  %s\n", ui.Dim("Nothing due."))
		return
	}
	for _, d := range deadlines {
		left := fmt.Sprintf("%d days left", d.DaysLeft)
		if d.DaysLeft < 0 {
			left = fmt.Sprintf("%d days overdue", -d.DaysLeft)
		}
		fmt.Fprintf(r.W, "  %-8s %-30s %-22s due %s  %s\n",
			ui.Urgency(string(d.Urgency)), truncate(d.Name, 30), truncate(d.Project, 22),
			d.Due, ui.Bold(left))
	}
}

// PrintStats writes the headline numbers.
func (r *Reporter) PrintStats(s analysis.Stats) {
	fmt.Fprintf(r.W, "📈 %s\n", ui.BoldCyan("Overview"))
	fmt.Fprintf(r.W, "Active projects:  %d of %d\n", s.ActiveProjects, s.TotalProjects)
	fmt.Fprintf(r.W, "Tasks:            %d (%d completed)\n", s.TotalTasks, s.CompletedTasks)
	fmt.Fprintf(r.W, "Critical tasks:   %s\n", ui.BoldRed(s.CriticalTasks))
	fmt.Fprintf(r.W, "On schedule:      %.0f%%\n", s.OnSchedulePct)
	fmt.Fprintf(r.W, "Avg completion:   %.0f%%\n", s.AverageCompletion)
}

// PrintWorkload writes the per-assignee load.
func (r *Reporter) PrintWorkload(loads []analysis.Load) {
	fmt.Fprintf(r.W, "👥 %s\n", ui.BoldCyan("Workload"))
	for _, l := range loads {
		fmt.Fprintf(r.W, "  %-16s %-20s %2d open  %2d critical  %3dh  %s\n",
			l.Assignee, truncate(l.Role, 20), l.OpenTasks, l.CriticalTasks, l.OpenHours,
			ui.Dim(fmt.Sprintf("(%d total)", l.TotalTasks)))
	}
}

// PrintASCIIDAG writes the dependency graph wave by wave.
func (r *Reporter) PrintASCIIDAG(rep *analysis.Report, g *graph.TaskGraph, critical func(string) bool) {
	fmt.Fprintf(r.W, "🔗 %s %s\n", ui.BoldCyan("Task Dependency Graph"),
		ui.Dim(fmt.Sprintf("(%d tasks, %d edges)", g.TaskCount(), g.EdgeCount())))
	fmt.Fprintln(r.W, ui.Cyan("═══════════════════════"))
	fmt.Fprintln(r.W)

	for _, wave := range rep.Waves {
		fmt.Fprintf(r.W, "%s 🌊 Wave %d (day %d) %s\n", ui.Cyan("──"), wave.Index+1, wave.StartDay, ui.Cyan("──────────────────────────────"))
		for _, id := range wave.TaskIDs {
			fmt.Fprintf(r.W, "  %s %s %s\n", ui.Critical(critical(id)), ui.TaskPrefix(id), g.Tasks[id].Name)
			for _, next := range g.Adj[id] {
				fmt.Fprintf(r.W, "      %s %s\n", ui.Dim("└──→"), ui.Magenta(next))
			}
		}
		fmt.Fprintln(r.W)
	}
}

// PrintDOT writes the dependency graph in Graphviz format with the critical
// path in red.
func (r *Reporter) PrintDOT(g *graph.TaskGraph, critical func(string) bool) {
	fmt.Fprintln(r.W, "digraph ganttboard {")
	fmt.Fprintln(r.W, "  rankdir=LR;")
	fmt.Fprintln(r.W, "  node [shape=box, style=rounded];")
	fmt.Fprintln(r.W)

	ids := g.IDs()
	for _, id := range ids {
		t := g.Tasks[id]
		label := fmt.Sprintf("%s\\n%s\\n%s..%s", id, escapeDOT(t.Name), t.Start, t.End)
		attrs := fmt.Sprintf(`label="%s"`, label)
		if critical(id) {
			attrs += `, style="rounded,bold", color=red`
		}
		fmt.Fprintf(r.W, "  %q [%s];\n", id, attrs)
	}

	fmt.Fprintln(r.W)

	for _, from := range ids {
		tos := append([]string(nil), g.Adj[from]...)
		sort.Strings(tos)
		for _, to := range tos {
			style := ` [style=dashed]`
			if critical(from) && critical(to) {
				style = ` [color=red, penwidth=2]`
			}
			fmt.Fprintf(r.W, "  %q -> %q%s;\n", from, to, style)
		}
	}

	fmt.Fprintln(r.W, "}")
}

func escapeDOT(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n-3]) + "..."
}
