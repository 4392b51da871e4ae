package viewer

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/joshharrison/ganttboard/internal/filter"
	"github.com/joshharrison/ganttboard/internal/gantt"
)

// selectionParams maps query parameters onto selection fields, applied in
// this order. time_range comes after its range alias so it wins when a
// request sends both.
var selectionParams = []struct {
	name string
	set  func(*filter.Selection, string) error
}{
	{"project", func(s *filter.Selection, v string) error { s.Project = v; return nil }},
	{"range", setTimeRange},
	{"time_range", setTimeRange},
	{"tab", func(s *filter.Selection, v string) error { s.Tab = filter.Tab(v); return nil }},
	{"search", func(s *filter.Selection, v string) error { s.Search = v; return nil }},
	{"status", func(s *filter.Selection, v string) error { s.Status = v; return nil }},
	{"priority", func(s *filter.Selection, v string) error { s.Priority = v; return nil }},
	{"assignee", func(s *filter.Selection, v string) error { s.Assignee = v; return nil }},
}

func setTimeRange(s *filter.Selection, v string) error {
	r, err := gantt.ParseTimeRange(v)
	if err != nil {
		return badRequest{err}
	}
	s.TimeRange = r
	return nil
}

// selection starts from the session's stored selection and applies any
// query parameters over it.
func (s *Server) selection(r *http.Request) (filter.Selection, error) {
	sel := s.sels.Get(s.currentSession(r).ID)
	q := r.URL.Query()
	for _, p := range selectionParams {
		if !q.Has(p.name) {
			continue
		}
		if err := p.set(&sel, q.Get(p.name)); err != nil {
			return filter.Selection{}, err
		}
	}
	sel = sel.Normalize()
	if err := sel.Validate(); err != nil {
		return filter.Selection{}, err
	}
	return sel, nil
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	projects, err := s.board.Projects(r.Context(), filter.ProjectQuery{
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
	})
	if err != nil {
		return err
	}
	s.writeJSON(w, http.StatusOK, projects)
	return nil
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) error {
	detail, err := s.board.Project(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	s.writeJSON(w, http.StatusOK, detail)
	return nil
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) error {
	sel, err := s.selection(r)
	if err != nil {
		return err
	}
	tasks, err := s.board.Tasks(r.Context(), sel)
	if err != nil {
		return err
	}
	s.writeJSON(w, http.StatusOK, tasks)
	return nil
}

func (s *Server) handleGantt(w http.ResponseWriter, r *http.Request) error {
	sel, err := s.selection(r)
	if err != nil {
		return err
	}
	view, err := s.board.Gantt(r.Context(), sel)
	if err != nil {
		return err
	}
	s.metrics.hidden.Add(float64(len(view.Chart.Hidden)))
	s.writeJSON(w, http.StatusOK, view)
	return nil
}

func (s *Server) handleCriticalPath(w http.ResponseWriter, r *http.Request) error {
	sel, err := s.selection(r)
	if err != nil {
		return err
	}
	rep, err := s.board.CriticalPath(r.Context(), sel.Project)
	if err != nil {
		return err
	}
	s.writeJSON(w, http.StatusOK, rep)
	return nil
}

func (s *Server) handleDeadlines(w http.ResponseWriter, r *http.Request) error {
	sel, err := s.selection(r)
	if err != nil {
		return err
	}
	deadlines, err := s.board.Deadlines(r.Context(), sel)
	if err != nil {
		return err
	}
	s.writeJSON(w, http.StatusOK, deadlines)
	return nil
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) error {
	sel, err := s.selection(r)
	if err != nil {
		return err
	}
	stats, err := s.board.Stats(r.Context(), sel.Project)
	if err != nil {
		return err
	}
	s.writeJSON(w, http.StatusOK, stats)
	return nil
}

func (s *Server) handleWorkload(w http.ResponseWriter, r *http.Request) error {
	sel, err := s.selection(r)
	if err != nil {
		return err
	}
	loads, err := s.board.Workload(r.Context(), sel.Project)
	if err != nil {
		return err
	}
	s.writeJSON(w, http.StatusOK, loads)
	return nil
}

func (s *Server) handleGetSelection(w http.ResponseWriter, r *http.Request) error {
	s.writeJSON(w, http.StatusOK, s.sels.Get(s.currentSession(r).ID))
	return nil
}

func (s *Server) handlePutSelection(w http.ResponseWriter, r *http.Request) error {
	var sel filter.Selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		return badRequest{fmt.Errorf("invalid JSON: %w", err)}
	}
	sel = sel.Normalize()
	if err := sel.Validate(); err != nil {
		return err
	}
	sess := s.currentSession(r)
	s.sels.Put(sess.ID, sel)
	s.log.WithField("session", sess.ID).WithField("project", sel.Project).Debug("selection updated")
	s.writeJSON(w, http.StatusOK, sel)
	return nil
}

func (s *Server) handleDeleteSelection(w http.ResponseWriter, r *http.Request) error {
	sess := s.currentSession(r)
	s.sels.Delete(sess.ID)
	s.log.WithField("session", sess.ID).Debug("selection reset")
	s.writeJSON(w, http.StatusOK, s.sels.Get(sess.ID))
	return nil
}
