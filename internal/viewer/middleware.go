package viewer

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/joshharrison/ganttboard/internal/session"
	"github.com/joshharrison/ganttboard/internal/store"
)

// message is the body of every error response.
type message struct {
	Status string `json:"status"`
	Body   string `json:"body"`
}

// handlerFunc is an endpoint that reports failures as errors instead of
// writing them itself.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// badRequest marks an error caused by the request itself.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

// endpoint counts calls to h and turns its errors into JSON responses.
func (s *Server) endpoint(name string, h handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.metrics.requests.WithLabelValues(name).Inc()
		err := h(w, r)
		if err == nil {
			return
		}
		s.metrics.errors.WithLabelValues(name).Inc()

		code := statusFor(err)
		entry := s.log.WithFields(logrus.Fields{
			"endpoint": name,
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   code,
		})
		if sess, ok := session.FromContext(r.Context()); ok {
			entry = entry.WithField("user", sess.User)
		}
		if code >= http.StatusInternalServerError {
			entry.WithError(err).Error("request failed")
		} else {
			entry.WithError(err).Debug("request rejected")
		}
		s.writeJSON(w, code, message{Status: "Request Failed", Body: err.Error()})
	})
}

func statusFor(err error) int {
	var verrs validator.ValidationErrors
	var bad badRequest
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &verrs), errors.As(err, &bad):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// rateLimit rejects requests over the limiter's budget with 429.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.metrics.limited.Inc()
			s.writeJSON(w, http.StatusTooManyRequests, message{
				Status: "Request Failed",
				Body:   "The API is at capacity, try again later.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withSession resolves the caller's session from a bearer token and falls
// back to the default session when there is none or it does not verify.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.fallback
		if tok, ok := bearer(r); ok && s.signer != nil {
			parsed, err := s.signer.Parse(tok)
			if err == nil {
				sess = parsed
			} else {
				s.log.WithError(err).Debug("ignoring session token")
			}
		}
		next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
	})
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).WithField("status", code).Warn("write response")
	}
}

// currentSession returns the request's session. withSession always sets one.
func (s *Server) currentSession(r *http.Request) session.Session {
	if sess, ok := session.FromContext(r.Context()); ok {
		return sess
	}
	return s.fallback
}
