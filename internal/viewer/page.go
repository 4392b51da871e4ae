package viewer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"github.com/joshharrison/ganttboard/internal/analysis"
	"github.com/joshharrison/ganttboard/internal/board"
	"github.com/joshharrison/ganttboard/internal/filter"
	"github.com/joshharrison/ganttboard/internal/gantt"
	"github.com/joshharrison/ganttboard/internal/session"
)

// pageData holds data for the Gantt page template.
type pageData struct {
	Session   session.Session
	Selection filter.Selection
	View      *board.GanttView
	Report    *analysis.Report
	Projects  []board.ProjectSummary
	Project   *board.ProjectSummary // nil for all projects
	Tabs      []filter.Tab
	Ranges    []gantt.TimeRange
	RowHeight int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) error {
	sel, err := s.selection(r)
	if err != nil {
		return err
	}
	return s.renderPage(w, r, sel)
}

func (s *Server) handleProjectPage(w http.ResponseWriter, r *http.Request) error {
	sel, err := s.selection(r)
	if err != nil {
		return err
	}
	sel.Project = r.PathValue("id")
	return s.renderPage(w, r, sel)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, sel filter.Selection) error {
	ctx := r.Context()
	view, err := s.board.Gantt(ctx, sel)
	if err != nil {
		return err
	}
	s.metrics.hidden.Add(float64(len(view.Chart.Hidden)))
	// a cyclic scope has no critical path; the chart carries the warning
	var rep *analysis.Report
	if view.Cycle == nil {
		if rep, err = s.board.CriticalPath(ctx, sel.Project); err != nil {
			return err
		}
	}
	projects, err := s.board.Projects(ctx, filter.ProjectQuery{})
	if err != nil {
		return err
	}
	var current *board.ProjectSummary
	for i := range projects {
		if projects[i].Name == view.ProjectName {
			current = &projects[i]
		}
	}

	data := pageData{
		Session:   s.currentSession(r),
		Selection: sel,
		View:      view,
		Report:    rep,
		Projects:  projects,
		Project:   current,
		Tabs:      []filter.Tab{filter.TabGantt, filter.TabCriticalPath, filter.TabTimeline},
		Ranges:    []gantt.TimeRange{gantt.RangeWeek, gantt.RangeMonth, gantt.RangeQuarter, gantt.RangeYear},
		RowHeight: gantt.RowHeight,
	}

	// Render into a buffer so a template failure can still produce a clean
	// error response.
	var buf bytes.Buffer
	if err := getPageTemplate().Execute(&buf, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}

var pageFuncMap = template.FuncMap{
	"pct": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"add": func(a, b int) int { return a + b },
}

var (
	tmplPage     *template.Template
	tmplPageOnce sync.Once
)

func getPageTemplate() *template.Template {
	tmplPageOnce.Do(func() {
		tmplPage = template.Must(template.New("page").Funcs(pageFuncMap).Parse(pageTemplateStr))
	})
	return tmplPage
}

const pageTemplateStr = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.View.ProjectName}} · ganttboard</title>
<style>
body{font-family:system-ui,sans-serif;margin:0;background:#0d1117;color:#c9d1d9}
header{padding:12px 20px;border-bottom:1px solid #30363d;display:flex;gap:16px;align-items:center}
header h1{font-size:18px;margin:0}
nav a{color:#8b949e;margin-right:12px;text-decoration:none}
nav a.active{color:#58a6ff;font-weight:600}
main{padding:16px 20px}
.chart{display:grid;grid-template-columns:260px 1fr}
.labels div,.track{height:{{.RowHeight}}px;border-bottom:1px solid #21262d;display:flex;align-items:center}
.timeline{position:relative;overflow:hidden}
.ticks{display:flex;justify-content:space-between;font-size:11px;color:#8b949e;padding-bottom:4px}
.track{position:relative}
.bar{position:absolute;height:24px;border-radius:4px;background:#1f6feb;overflow:hidden}
.bar.critical{background:#da3633}
.bar.completed{background:#238636}
.bar .done{height:100%;background:rgba(255,255,255,.25)}
svg.lines{position:absolute;top:0;left:0;width:100%;pointer-events:none}
.note{color:#d29922;font-size:12px;margin-top:8px}
table{border-collapse:collapse;width:100%}
td,th{padding:6px 8px;border-bottom:1px solid #21262d;text-align:left;font-size:13px}
.warning{background:#3d1d00;border:1px solid #d29922;color:#d29922;padding:8px 12px;margin-bottom:12px}
.marker{position:absolute;top:0;bottom:0;border-left:2px dashed #a371f7}
.marker.done{border-left-style:solid}
.marker span{position:absolute;top:-16px;left:4px;font-size:10px;color:#a371f7;white-space:nowrap}
.risk-high{color:#f85149}.risk-medium{color:#d29922}.risk-low{color:#3fb950}
</style>
</head>
<body>
<header>
<h1>{{.View.ProjectName}}</h1>
<nav>
<a href="/?project=all" {{if eq .Selection.Project "all"}}class="active"{{end}}>All Projects</a>
{{range .Projects}}<a href="/projects/{{.ID}}" {{if eq $.Selection.Project .ID}}class="active"{{end}}>{{.Name}}</a>{{end}}
</nav>
<span>{{.Session.User}}</span>
</header>
<main>
<nav>
{{range .Tabs}}<a href="?project={{$.Selection.Project}}&tab={{.}}" {{if eq $.Selection.Tab .}}class="active"{{end}}>{{.}}</a>{{end}}
|
{{range .Ranges}}<a href="?project={{$.Selection.Project}}&tab={{$.Selection.Tab}}&time_range={{.}}" {{if eq $.Selection.TimeRange .}}class="active"{{end}}>{{.}}</a>{{end}}
</nav>
{{with .View.Warning}}<p class="warning">{{.}}</p>{{end}}
{{with .Project}}<p>Budget ${{.Budget}}, spent ${{.Spent}}, remaining ${{.BudgetRemaining}}</p>{{end}}

{{if eq .Selection.Tab "critical-path"}}
{{with .Report}}
<h2>Critical path: {{.TotalDuration}} days, {{pct .Progress}}% complete, <span class="risk-{{.Risk}}">{{.Risk}} risk</span></h2>
{{if not .ProjectedEnd.IsZero}}<p>Projected finish {{.ProjectedEnd}}</p>{{end}}
<table>
<tr><th>ID</th><th>Task</th><th>Start</th><th>End</th><th>Earliest</th><th>Days</th><th>Status</th><th>Risk</th></tr>
{{range .CriticalPath}}<tr><td>{{.ID}}</td><td>{{.Name}}</td><td>{{.Start}}</td><td>{{.End}}</td><td>{{.EarliestStart}} to {{.EarliestEnd}}</td><td>{{.Duration}}</td><td>{{.Status}}</td><td class="risk-{{.Risk}}">{{.Risk}}</td></tr>
{{end}}
</table>
{{range .Violations}}<p class="note">Task {{.TaskID}} starts {{.OverlapDays}} day(s) before {{.DependencyID}} ends</p>{{end}}
{{with .Risks}}
<h3>Risk register</h3>
<table>
<tr><th>Subject</th><th>Issue</th><th>Impact</th><th>Severity</th><th>Mitigation</th></tr>
{{range .}}<tr><td>{{.Subject}}</td><td>{{.Issue}}</td><td>{{.Impact}}</td><td class="risk-{{.Severity}}">{{.Severity}}</td><td>{{.Mitigation}}</td></tr>
{{end}}
</table>
{{end}}
{{end}}

{{else if eq .Selection.Tab "timeline"}}
<table>
<tr><th>Start</th><th>End</th><th>Task</th><th>Project</th><th>Assignee</th><th>Progress</th></tr>
{{range .View.Chart.Rows}}<tr><td>{{.Task.Start}}</td><td>{{.Task.End}}</td><td>{{.Task.Name}}</td><td>{{.Task.Project}}</td><td>{{.Task.Assignee}}</td><td>{{.Progress}}%</td></tr>
{{end}}
</table>

{{else}}
<p>{{.View.Chart.Window.Start}} to {{.View.Chart.Window.End}}</p>
<div class="chart">
<div class="labels">
<div>&nbsp;</div>
{{range .View.Chart.Rows}}<div>{{if .Critical}}⚡ {{end}}{{.Task.Name}}</div>
{{end}}
</div>
<div class="timeline">
<div class="ticks">{{range .View.Chart.Ticks}}<span>{{.}}</span>{{end}}</div>
<div style="position:relative">
{{range .View.Chart.Rows}}<div class="track">
<div class="bar {{.Status}}{{if .Critical}} critical{{end}}" data-task="{{.Task.ID}}" style="left:{{pct .Position.OffsetPct}}%;width:{{pct .Position.WidthPct}}%" title="{{.Task.Name}} ({{.Task.Start}} to {{.Task.End}})"><div class="done" style="width:{{.Progress}}%"></div></div>
</div>
{{end}}
{{range .View.Chart.Milestones}}<div class="marker{{if .Completed}} done{{end}}" data-milestone="{{.ID}}" style="left:{{pct .OffsetPct}}%" title="{{.Title}} ({{.Date}})"><span>{{.Title}}</span></div>
{{end}}
<svg class="lines" height="{{.View.Chart.Height}}">
{{range .View.Chart.Lines}}<line data-from="{{.FromID}}" data-to="{{.ToID}}" x1="{{pct .X1}}%" y1="{{.Y1}}" x2="{{pct .X2}}%" y2="{{.Y2}}" stroke="{{if .Critical}}#f85149{{else}}#8b949e{{end}}" stroke-width="2" {{if eq .Style "dashed"}}stroke-dasharray="6 4"{{end}}/>
{{end}}
</svg>
</div>
</div>
</div>
{{with .View.Chart.Hidden}}<p class="note">{{len .}} dependencies point outside this view</p>{{end}}
{{end}}
</main>
</body>
</html>`
