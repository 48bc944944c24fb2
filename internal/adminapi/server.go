// Package adminapi is the thin, optional HTTP control surface around the
// scheduler core: IPC with clients is a separate concern the core itself
// stays agnostic to, but nothing forbids a minimal admin shell around it.
// Grounded on the reference engine's internal/server (server.go's routing
// tree, middleware.go's request-id/logging middleware, response.go's
// envelope). Every handler that touches the scheduler or graph marshals
// onto the reactor's own goroutine via (*reactor.Loop).Defer, since every
// public scheduler method must be called from that single thread.
package adminapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/InitWare/Neo-InitWare/internal/audit"
	"github.com/InitWare/Neo-InitWare/internal/graph"
	"github.com/InitWare/Neo-InitWare/internal/reactor"
	"github.com/InitWare/Neo-InitWare/internal/scheduler"
)

// Server is the svcschedd admin HTTP API.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	graph     *graph.Graph
	scheduler *scheduler.Scheduler
	loop      *reactor.Loop
	auditor   *audit.Store // optional; nil reports the audit log as disabled in /health
	startTime time.Time
}

// New creates a Server with all routes registered. auditor may be nil.
func New(g *graph.Graph, sched *scheduler.Scheduler, loop *reactor.Loop, auditor *audit.Store, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "adminapi"),
		graph:     g,
		scheduler: sched,
		loop:      loop,
		auditor:   auditor,
		startTime: time.Now(),
	}
	s.routes()
	return s
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Route("/units", func(r chi.Router) {
			r.Get("/", s.handleListUnits)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetUnit)
				r.Post("/{op}", s.handleUnitOp)
			})
		})
		r.Get("/transactions", s.handleListTransactions)
	})
}

// runOnLoop marshals fn onto the reactor's goroutine and blocks until it
// has run, giving HTTP handlers a synchronous view of an inherently
// single-threaded scheduler.
func (s *Server) runOnLoop(fn func()) {
	done := make(chan struct{})
	s.loop.Defer(func() {
		fn()
		close(done)
	})
	<-done
}
