// Package server provides the HTTP server implementation.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/choretracker/choretracker/internal/config"
	"github.com/choretracker/choretracker/internal/handlers"
	"github.com/choretracker/choretracker/internal/metrics"
	"github.com/choretracker/choretracker/internal/middleware"
	"github.com/choretracker/choretracker/internal/problem"
	"github.com/choretracker/choretracker/internal/ratelimit"
	"github.com/choretracker/choretracker/internal/repository"
	"github.com/choretracker/choretracker/internal/services"
	"github.com/choretracker/choretracker/pkg/logger"
)

// Option configures a Server.
type Option func(*options)

type options struct {
	limiter ratelimit.Limiter
	now     func() time.Time
	checks  map[string]handlers.CheckFunc
}

// WithRateLimiter replaces the in-memory limiter built from the config.
func WithRateLimiter(l ratelimit.Limiter) Option {
	return func(o *options) {
		o.limiter = l
	}
}

// WithClock sets the time source used by services and error envelopes.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithReadyCheck registers an extra readiness check.
func WithReadyCheck(name string, check handlers.CheckFunc) Option {
	return func(o *options) {
		o.checks[name] = check
	}
}

// Server represents the HTTP server.
type Server struct {
	cfg               *config.Config
	log               *logger.Logger
	httpServer        *http.Server
	handler           http.Handler
	store             *repository.Store
	responder         *problem.Responder
	healthHandler     *handlers.HealthHandler
	docsHandler       *handlers.DocsHandler
	userHandler       *handlers.UserHandler
	choreHandler      *handlers.ChoreHandler
	assignmentHandler *handlers.AssignmentHandler
	rateLimiter       ratelimit.Limiter
	listener          net.Listener
	running           bool
	mu                sync.RWMutex
}

// New creates a new Server backed by store.
func New(cfg *config.Config, log *logger.Logger, store *repository.Store, opts ...Option) (*Server, error) {
	o := options{now: time.Now, checks: make(map[string]handlers.CheckFunc)}
	for _, opt := range opts {
		opt(&o)
	}

	if o.limiter == nil {
		limiter, err := ratelimit.NewMemoryLimiter(ratelimit.Config{
			MaxRequests:   cfg.Rate.MaxRequests,
			Window:        cfg.Rate.Window,
			BlockDuration: cfg.Rate.BlockDuration,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter: %w", err)
		}
		o.limiter = limiter
	}

	responder := problem.NewResponder(log,
		problem.WithClock(o.now),
		problem.WithCorrelationSource(middleware.GetCorrelationID),
	)

	svcOpts := []services.Option{services.WithClock(o.now)}
	userSvc := services.NewUserService(store.Users, svcOpts...)
	choreSvc := services.NewChoreService(store.Chores, svcOpts...)
	assignmentSvc := services.NewAssignmentService(store, svcOpts...)

	s := &Server{
		cfg:               cfg,
		log:               log,
		store:             store,
		responder:         responder,
		healthHandler:     handlers.NewHealthHandler(),
		docsHandler:       handlers.NewDocsHandler(),
		userHandler:       handlers.NewUserHandler(userSvc, assignmentSvc, responder),
		choreHandler:      handlers.NewChoreHandler(choreSvc, assignmentSvc, responder),
		assignmentHandler: handlers.NewAssignmentHandler(assignmentSvc, responder),
		rateLimiter:       o.limiter,
	}

	s.healthHandler.AddCheck(store.Backend, store.HealthCheck)
	for name, check := range o.checks {
		s.healthHandler.AddCheck(name, check)
	}

	router := chi.NewRouter()
	s.registerRoutes(router)
	s.handler = s.buildMiddlewareChain(router)

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s, nil
}

// buildMiddlewareChain wraps the router. Correlation and security headers
// sit outside recovery so a recovered panic still carries them.
func (s *Server) buildMiddlewareChain(handler http.Handler) http.Handler {
	chain := middleware.New(
		middleware.CorrelationID(),
		middleware.SecurityHeaders(s.cfg.App.IsProduction()),
		middleware.Recovery(s.responder, s.log),
		middleware.CORS(s.cfg.CORS.AllowedOrigins),
		middleware.Metrics(),
		middleware.RequestLogger(s.log),
		middleware.ClientIP(s.cfg.Rate.TrustProxy),
		middleware.RateLimit(s.rateLimiter, s.responder, s.log, middleware.RateLimitConfig{
			BypassPaths: middleware.DefaultBypassPaths(),
			Disabled:    s.cfg.App.Testing,
		}),
	)

	if s.cfg.App.Testing {
		s.log.Info("rate limiting disabled in testing mode")
	} else {
		s.log.Info("rate limiting enabled",
			"max_requests", s.cfg.Rate.MaxRequests,
			"window", s.cfg.Rate.Window.String(),
			"block_duration", s.cfg.Rate.BlockDuration.String(),
		)
	}

	return chain.Then(handler)
}

// registerRoutes sets up the HTTP routes.
func (s *Server) registerRoutes(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		s.responder.Write(w, req, problem.NewHTTPError(http.StatusNotFound, "Not Found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		s.responder.Write(w, req, problem.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"))
	})

	r.Get("/", s.healthHandler.Root)
	r.Get("/health", s.healthHandler.Health)
	r.Get("/healthz", s.healthHandler.Health)
	r.Get("/ready", s.healthHandler.Ready)

	// Metrics endpoint for Prometheus
	r.Handle("/metrics", metrics.Handler())

	r.Get("/docs", s.docsHandler.SwaggerUI)
	r.Get("/redoc", s.docsHandler.Redoc)
	r.Get("/openapi.json", s.docsHandler.OpenAPISpec)

	r.Get("/statistics", s.assignmentHandler.Statistics)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", s.userHandler.List)
		r.Post("/", s.userHandler.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.userHandler.Get)
			r.Put("/", s.userHandler.Update)
			r.Delete("/", s.userHandler.Delete)
			r.Get("/assignments", s.userHandler.Assignments)
		})
	})

	r.Route("/chores", func(r chi.Router) {
		r.Get("/", s.choreHandler.List)
		r.Post("/", s.choreHandler.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.choreHandler.Get)
			r.Put("/", s.choreHandler.Update)
			r.Delete("/", s.choreHandler.Delete)
			r.Get("/assignments", s.choreHandler.Assignments)
		})
	})

	r.Route("/assignments", func(r chi.Router) {
		r.Get("/", s.assignmentHandler.List)
		r.Post("/", s.assignmentHandler.Create)
		r.Get("/overdue", s.assignmentHandler.Overdue)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.assignmentHandler.Get)
			r.Put("/", s.assignmentHandler.Update)
			r.Delete("/", s.assignmentHandler.Delete)
			r.Post("/complete", s.assignmentHandler.Complete)
		})
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := s.cfg.Server.Address()

	// Create listener first to get the actual address (important when port is 0)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	s.log.Info("server starting", "address", listener.Addr().String(), "store", s.store.Backend)

	err = s.httpServer.Serve(listener)
	if err != nil && err != http.ErrServerClosed {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("server shutting down")

	// Mark as not ready during shutdown
	s.healthHandler.SetReady(false)

	err := s.httpServer.Shutdown(ctx)

	if closeErr := s.rateLimiter.Close(); closeErr != nil {
		s.log.Error("failed to close rate limiter", "error", closeErr)
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	if err != nil {
		s.log.Error("shutdown error", "error", err)
		return err
	}

	s.log.Info("server stopped")
	return nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// IsRunning returns whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's address.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// HealthHandler returns the health handler.
func (s *Server) HealthHandler() *handlers.HealthHandler {
	return s.healthHandler
}

// RateLimiter returns the limiter guarding the API, so tests can clear it.
func (s *Server) RateLimiter() ratelimit.Limiter {
	return s.rateLimiter
}
