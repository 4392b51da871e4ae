package viewer

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/joshharrison/ganttboard/internal/analysis"
	"github.com/joshharrison/ganttboard/internal/board"
	"github.com/joshharrison/ganttboard/internal/filter"
	"github.com/joshharrison/ganttboard/internal/model"
	"github.com/joshharrison/ganttboard/internal/session"
	"github.com/joshharrison/ganttboard/internal/store"
	"github.com/joshharrison/ganttboard/internal/store/memory"
)

const secret = "test-secret"

func newServer(t *testing.T, opts Options) *Server {
	t.Helper()
	return newServerFor(t, memory.NewFixtures(), opts)
}

func newServerFor(t *testing.T, repo store.Repository, opts Options) *Server {
	t.Helper()
	svc := board.New(repo, board.Options{
		AsOf:    model.MustDate("2024-01-09"),
		Source:  analysis.SourceComputed,
		Horizon: 7,
	})
	log := logrus.New()
	log.SetOutput(io.Discard)
	opts.Logger = log
	if opts.Signer == nil {
		opts.Signer = session.NewSigner(secret, time.Hour)
	}
	return New(svc, opts)
}

func do(t *testing.T, s *Server, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	s := newServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGantt(t *testing.T) {
	s := newServer(t, Options{})

	var view board.GanttView
	decode(t, do(t, s, http.MethodGet, "/api/gantt?project=1", "", ""), &view)

	if view.ProjectName != "Website Redesign" {
		t.Errorf("project name = %q", view.ProjectName)
	}
	if len(view.Chart.Rows) != 6 {
		t.Errorf("expected 6 rows, got %d", len(view.Chart.Rows))
	}
	if len(view.Chart.Lines) != 6 {
		t.Errorf("expected 6 lines, got %d", len(view.Chart.Lines))
	}
}

func TestGantt_HiddenDependenciesAreCounted(t *testing.T) {
	s := newServer(t, Options{})

	var view board.GanttView
	decode(t, do(t, s, http.MethodGet, "/api/gantt?project=1&status=pending", "", ""), &view)
	if len(view.Chart.Hidden) != 2 {
		t.Fatalf("expected 2 hidden edges, got %+v", view.Chart.Hidden)
	}

	rec := do(t, s, http.MethodGet, "/metrics", "", "")
	body := rec.Body.String()
	for _, want := range []string{
		"ganttboard_hidden_dependencies_total 2",
		`ganttboard_endpoint_calls_total{endpoint="gantt"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestErrors(t *testing.T) {
	s := newServer(t, Options{})

	cases := []struct {
		target string
		code   int
	}{
		{"/api/gantt?project=99", http.StatusNotFound},
		{"/api/projects/99", http.StatusNotFound},
		{"/api/tasks?status=blocked", http.StatusBadRequest},
		{"/api/gantt?time_range=decade", http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := do(t, s, http.MethodGet, tc.target, "", "")
		if rec.Code != tc.code {
			t.Errorf("%s: expected %d, got %d", tc.target, tc.code, rec.Code)
			continue
		}
		var msg message
		if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil || msg.Body == "" {
			t.Errorf("%s: expected JSON error body, got %q", tc.target, rec.Body.String())
		}
	}

	rec := do(t, s, http.MethodGet, "/metrics", "", "")
	if !strings.Contains(rec.Body.String(), `ganttboard_errors_total{endpoint="gantt"} 2`) {
		t.Error("expected two gantt errors to be counted")
	}
}

func TestCriticalPathAndProject(t *testing.T) {
	s := newServer(t, Options{})

	var rep analysis.Report
	decode(t, do(t, s, http.MethodGet, "/api/critical-path?project=website-redesign", "", ""), &rep)
	if rep.TotalDuration != 24 {
		t.Errorf("total duration = %d, want 24", rep.TotalDuration)
	}

	var detail board.ProjectDetail
	decode(t, do(t, s, http.MethodGet, "/api/projects/3", "", ""), &detail)
	if detail.Name != "Marketing Campaign" || len(detail.Tasks) != 3 {
		t.Errorf("unexpected project detail: %s with %d tasks", detail.Name, len(detail.Tasks))
	}
}

func TestDashboardEndpoints(t *testing.T) {
	s := newServer(t, Options{})

	var projects []board.ProjectSummary
	decode(t, do(t, s, http.MethodGet, "/api/projects?status=completed", "", ""), &projects)
	if len(projects) != 1 || projects[0].ID != "4" {
		t.Errorf("expected only project 4, got %+v", projects)
	}

	var tasks []model.Task
	decode(t, do(t, s, http.MethodGet, "/api/tasks?assignee=jane-smith", "", ""), &tasks)
	if len(tasks) != 3 {
		t.Errorf("expected 3 tasks for Jane Smith, got %d", len(tasks))
	}

	var deadlines []analysis.Deadline
	decode(t, do(t, s, http.MethodGet, "/api/deadlines", "", ""), &deadlines)
	if len(deadlines) < 2 || deadlines[0].TaskID != "3" || deadlines[1].TaskID != "11" {
		t.Errorf("expected overdue task 3 then task 11, got %+v", deadlines)
	}
	if len(deadlines) > 0 && deadlines[0].DaysLeft != -1 {
		t.Errorf("expected task 3 one day overdue, got %+v", deadlines[0])
	}

	var stats analysis.Stats
	decode(t, do(t, s, http.MethodGet, "/api/stats", "", ""), &stats)
	if stats.TotalTasks != 11 || stats.ActiveProjects != 3 {
		t.Errorf("unexpected stats %+v", stats)
	}

	var loads []analysis.Load
	decode(t, do(t, s, http.MethodGet, "/api/workload", "", ""), &loads)
	if len(loads) != 5 {
		t.Errorf("expected 5 assignees, got %d", len(loads))
	}
}

func TestSelectionPerSession(t *testing.T) {
	s := newServer(t, Options{})
	token, err := session.NewSigner(secret, time.Hour).Issue(session.New("emily", "manager"))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rec := do(t, s, http.MethodPut, "/api/selection", token, `{"project":"3","tab":"critical-path"}`)
	var sel filter.Selection
	decode(t, rec, &sel)
	if sel.Project != "3" || sel.TimeRange != "" || sel.Tab != filter.TabCriticalPath {
		t.Errorf("expected normalized selection, got %+v", sel)
	}

	var rep analysis.Report
	decode(t, do(t, s, http.MethodGet, "/api/critical-path", token, ""), &rep)
	if rep.ProjectName != "Marketing Campaign" {
		t.Errorf("stored selection not used, got %q", rep.ProjectName)
	}

	// A different caller still sees the default selection.
	decode(t, do(t, s, http.MethodGet, "/api/critical-path", "not-a-token", ""), &rep)
	if rep.ProjectName != board.AllProjectsName {
		t.Errorf("expected default selection, got %q", rep.ProjectName)
	}

	rec = do(t, s, http.MethodGet, "/metrics", "", "")
	if !strings.Contains(rec.Body.String(), "ganttboard_sessions 1") {
		t.Error("expected one stored session in metrics")
	}

	decode(t, do(t, s, http.MethodDelete, "/api/selection", token, ""), &sel)
	if sel != filter.Default() {
		t.Errorf("expected default selection after reset, got %+v", sel)
	}
	decode(t, do(t, s, http.MethodGet, "/api/critical-path", token, ""), &rep)
	if rep.ProjectName != board.AllProjectsName {
		t.Errorf("expected reset selection, got %q", rep.ProjectName)
	}
	rec = do(t, s, http.MethodGet, "/metrics", "", "")
	if !strings.Contains(rec.Body.String(), "ganttboard_sessions 0") {
		t.Error("expected no stored sessions after reset")
	}
}

func TestSelection_RangeParams(t *testing.T) {
	s := newServer(t, Options{})

	cases := []struct {
		query string
		end   string
	}{
		{"range=quarter", "2024-03-31"},
		{"range=Week", "2024-01-07"},
		{"time_range=year&range=week", "2024-12-31"},
		{"range=week&time_range=year", "2024-12-31"},
		{"", "2024-01-31"},
	}
	for _, tc := range cases {
		for i := 0; i < 5; i++ {
			var view board.GanttView
			decode(t, do(t, s, http.MethodGet, "/api/gantt?"+tc.query, "", ""), &view)
			if got := view.Chart.Window.End.String(); got != tc.end {
				t.Errorf("%q: expected window ending %s, got %s", tc.query, tc.end, got)
				break
			}
		}
	}

	if rec := do(t, s, http.MethodGet, "/api/gantt?range=decade", "", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown range: expected 400, got %d", rec.Code)
	}
}

func cycleRepo() *memory.Store {
	task := func(id string, deps ...string) model.Task {
		return model.Task{
			ID:           id,
			Name:         "Task " + id,
			ProjectID:    "p",
			Project:      "Loop",
			Start:        model.MustDate("2024-01-02"),
			End:          model.MustDate("2024-01-04"),
			Status:       model.StatusPending,
			Dependencies: deps,
		}
	}
	return memory.New(store.Dataset{
		Projects: []model.Project{{ID: "p", Name: "Loop"}},
		Tasks:    []model.Task{task("a", "b"), task("b", "a")},
	})
}

func TestGantt_CycleIsDrawnWithWarning(t *testing.T) {
	s := newServerFor(t, cycleRepo(), Options{})

	var view board.GanttView
	decode(t, do(t, s, http.MethodGet, "/api/gantt?project=p", "", ""), &view)
	if len(view.Chart.Rows) != 2 || len(view.Chart.Lines) != 2 {
		t.Errorf("expected 2 rows and 2 lines, got %d and %d", len(view.Chart.Rows), len(view.Chart.Lines))
	}
	if !strings.Contains(view.Warning, "dependency cycle") {
		t.Errorf("expected cycle warning, got %q", view.Warning)
	}

	for _, target := range []string{"/", "/projects/p", "/projects/p?tab=critical-path"} {
		rec := do(t, s, http.MethodGet, target, "", "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d: %s", target, rec.Code, rec.Body.String())
			continue
		}
		if !strings.Contains(rec.Body.String(), `class="warning"`) {
			t.Errorf("%s: warning not rendered", target)
		}
	}
}

func TestPutSelection_Invalid(t *testing.T) {
	s := newServer(t, Options{})

	if rec := do(t, s, http.MethodPut, "/api/selection", "", `{"project":`); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed JSON: expected 400, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, "/api/selection", "", `{"priority":"urgent"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown priority: expected 400, got %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	s := newServer(t, Options{RateLimit: 1, RateBurst: 1})

	if rec := do(t, s, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rec.Code)
	}
	rec := do(t, s, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "at capacity") {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestPages(t *testing.T) {
	s := newServer(t, Options{})

	rec := do(t, s, http.MethodGet, "/", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"<h1>All Projects</h1>", `data-task="1"`, `data-from="4" data-to="5"`} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}

	rec = do(t, s, http.MethodGet, "/projects/1?tab=critical-path", "", "")
	body = rec.Body.String()
	for _, want := range []string{"Critical path: 24 days", "Projected finish 2024-01-24", "Risk register", "Move the start to 2024-01-12 or later"} {
		if !strings.Contains(body, want) {
			t.Errorf("critical path tab missing %q", want)
		}
	}

	rec = do(t, s, http.MethodGet, "/projects/1", "", "")
	body = rec.Body.String()
	for _, want := range []string{`data-milestone="4"`, "remaining $12500"} {
		if !strings.Contains(body, want) {
			t.Errorf("project page missing %q", want)
		}
	}

	if rec := do(t, s, http.MethodGet, "/projects/99", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown project page: expected 404, got %d", rec.Code)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	s := newServer(t, Options{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
