// Package viewer serves the board over HTTP: JSON endpoints for every view,
// an HTML Gantt page and Prometheus metrics.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/joshharrison/ganttboard/internal/board"
	"github.com/joshharrison/ganttboard/internal/session"
	"github.com/joshharrison/ganttboard/internal/state"
)

// Options configures a Server. Zero values get usable defaults.
type Options struct {
	Logger *logrus.Logger
	// Signer verifies bearer tokens. Nil means every request uses Fallback.
	Signer *session.Signer
	// Fallback is the session for requests without a valid token.
	Fallback session.Session
	// RateLimit is requests per second across all clients; 0 disables it.
	RateLimit float64
	RateBurst int
	// Registry receives the server's metrics. Nil means a private registry.
	Registry *prometheus.Registry
}

// Server is the HTTP viewer.
type Server struct {
	board    *board.Service
	sels     *state.Registry
	signer   *session.Signer
	fallback session.Session
	log      *logrus.Logger
	limiter  *rate.Limiter
	metrics  *metrics
	registry *prometheus.Registry
	handler  http.Handler
}

// New builds a Server over svc.
func New(svc *board.Service, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.Fallback.ID == "" {
		opts.Fallback = session.Session{ID: "anonymous", User: "guest", Role: "viewer"}
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	if opts.RateBurst < 1 {
		opts.RateBurst = 1
	}

	sels := state.NewRegistry()
	s := &Server{
		board:    svc,
		sels:     sels,
		signer:   opts.Signer,
		fallback: opts.Fallback,
		log:      opts.Logger,
		limiter:  rate.NewLimiter(limit, opts.RateBurst),
		metrics:  newMetrics(opts.Registry, sels.Len),
		registry: opts.Registry,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /api/projects", s.endpoint("projects", s.handleProjects))
	mux.Handle("GET /api/projects/{id}", s.endpoint("project", s.handleProject))
	mux.Handle("GET /api/tasks", s.endpoint("tasks", s.handleTasks))
	mux.Handle("GET /api/gantt", s.endpoint("gantt", s.handleGantt))
	mux.Handle("GET /api/critical-path", s.endpoint("critical_path", s.handleCriticalPath))
	mux.Handle("GET /api/deadlines", s.endpoint("deadlines", s.handleDeadlines))
	mux.Handle("GET /api/stats", s.endpoint("stats", s.handleStats))
	mux.Handle("GET /api/workload", s.endpoint("workload", s.handleWorkload))
	mux.Handle("GET /api/selection", s.endpoint("selection", s.handleGetSelection))
	mux.Handle("PUT /api/selection", s.endpoint("selection", s.handlePutSelection))
	mux.Handle("DELETE /api/selection", s.endpoint("selection", s.handleDeleteSelection))
	mux.Handle("GET /projects/{id}", s.endpoint("project_page", s.handleProjectPage))
	mux.Handle("GET /{$}", s.endpoint("index", s.handleIndex))

	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return s.rateLimit(s.withSession(mux))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.log.WithField("addr", ln.Addr().String()).Info("viewer listening")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("viewer shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
