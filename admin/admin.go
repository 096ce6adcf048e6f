// Package admin implements the local HTTP debug surface (spec.md §6):
// read-only introspection into sync peers/stats and scheduler task
// counts, plus the Prometheus /metrics endpoint. Grounded on the
// teacher's admin.go (a dedicated, separately-configured HTTP server
// distinct from the application's main traffic) but routed with
// go-chi/chi instead of the teacher's hand-rolled mux, since chi rides
// along in the dependency pack specifically for this kind of small
// JSON debug API.
package admin

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/martos-project/martos/executor/cooperative"
	"github.com/martos-project/martos/syncmgr"
)

// Server wires the admin HTTP surface together.
type Server struct {
	router *chi.Mux
	log    *zap.Logger
	mgr    *syncmgr.Manager
	coop   *cooperative.Executor
}

// New constructs a Server. mgr and coop may be nil if that subsystem is
// not running on this node (e.g. a pure preemptive-only node has no
// cooperative.Executor to report on).
func New(mgr *syncmgr.Manager, coop *cooperative.Executor, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{log: log.Named("martos.admin"), mgr: mgr, coop: coop}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/sync/stats", s.handleSyncStats)
	r.Get("/sync/peers", s.handleSyncPeers)
	r.Get("/scheduler/tasks", s.handleSchedulerTasks)
	r.Handle("/metrics", promhttp.Handler())

	s.router = r
	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("admin request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleSyncStats(w http.ResponseWriter, r *http.Request) {
	if s.mgr == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "sync manager not running on this node"})
		return
	}
	writeJSON(w, http.StatusOK, s.mgr.Algorithm().Stats())
}

func (s *Server) handleSyncPeers(w http.ResponseWriter, r *http.Request) {
	if s.mgr == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "sync manager not running on this node"})
		return
	}
	writeJSON(w, http.StatusOK, s.mgr.Algorithm().Peers())
}

func (s *Server) handleSchedulerTasks(w http.ResponseWriter, r *http.Request) {
	if s.coop == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "cooperative executor not running on this node"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"task_count": s.coop.TaskCount()})
}
