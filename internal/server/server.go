// Package server exposes the hub through a small read-only HTTP gateway.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Sternrassler/neis-client/pkg/client"
	"github.com/Sternrassler/neis-client/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RowFetcher fetches every row of a service query.
// *school.Client implements it.
type RowFetcher interface {
	Rows(ctx context.Context, service client.Service, params client.Params, hint int) ([]client.Row, error)
}

// HealthChecker is one readiness dependency.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// CheckFunc adapts a function to HealthChecker.
type CheckFunc func(ctx context.Context) error

// CheckHealth calls f.
func (f CheckFunc) CheckHealth(ctx context.Context) error { return f(ctx) }

// Config holds server configuration.
type Config struct {
	Addr string

	// FetchTimeout bounds one /v1 request including all of its pages.
	FetchTimeout time.Duration

	// ReadyTimeout bounds the readiness checks.
	ReadyTimeout time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		FetchTimeout: 60 * time.Second,
		ReadyTimeout: 2 * time.Second,
	}
}

// Server represents the HTTP server.
type Server struct {
	router   *chi.Mux
	server   *http.Server
	config   Config
	rows     RowFetcher
	checkers map[string]HealthChecker
	logger   zerolog.Logger
}

// New creates a new HTTP server instance.
func New(config Config, rows RowFetcher) *Server {
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = DefaultConfig().FetchTimeout
	}
	if config.ReadyTimeout <= 0 {
		config.ReadyTimeout = DefaultConfig().ReadyTimeout
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   config,
		rows:     rows,
		checkers: make(map[string]HealthChecker),
		logger:   log.With().Str("component", "neis-server").Logger(),
	}

	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestMetrics)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "the requested resource was not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "only GET is supported")
	})

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/ready", s.handleReady)
	s.router.Method(http.MethodGet, "/metrics", metrics.Handler())
	s.router.Get("/v1/services", s.handleServices)
	s.router.Get("/v1/{service}", s.handleRows)
}

// RegisterChecker adds a readiness dependency.
func (s *Server) RegisterChecker(name string, checker HealthChecker) {
	s.checkers[name] = checker
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.config.FetchTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info().Str("addr", s.config.Addr).Msg("Starting HTTP server")

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}
