// Package httpserver exposes the service API: market lifecycle operations,
// trial execution, claims, transcript retrieval, the websocket event feed,
// and the usual metrics and health endpoints.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/openverdict/tribunal/internal/circuitbreaker"
	"github.com/openverdict/tribunal/internal/events"
	"github.com/openverdict/tribunal/internal/ledger"
	"github.com/openverdict/tribunal/internal/storage"
	"github.com/openverdict/tribunal/internal/trial"
	"github.com/openverdict/tribunal/pkg/healthprobe"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server provides the HTTP API.
type Server struct {
	server        *http.Server
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
}

// Config holds server configuration.
type Config struct {
	Port          string
	Logger        *zap.Logger
	HealthChecker *healthprobe.HealthChecker
	Ledger        *ledger.Ledger
	TrialRunner   *trial.Runner
	Settler       *trial.Settler
	Breaker       *circuitbreaker.TrialCircuitBreaker
	Storage       storage.Storage
	Bus           *events.Bus
}

// New creates a new HTTP server.
func New(cfg *Config) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/health", cfg.HealthChecker.Health())
	r.Get("/ready", cfg.HealthChecker.Ready())

	h := newAPIHandler(cfg)
	r.Route("/api", func(r chi.Router) {
		// Trial runs can exceed the default timeout; everything else is
		// bounded.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))

			r.Post("/markets", h.handleCreateMarket)
			r.Get("/markets", h.handleListMarkets)
			r.Get("/markets/{id}", h.handleGetMarket)
			r.Post("/markets/{id}/positions", h.handleTakePosition)
			r.Post("/markets/{id}/request-settlement", h.handleRequestSettlement)
			r.Post("/markets/{id}/claims/winnings", h.handleClaimWinnings)
			r.Post("/markets/{id}/claims/refund", h.handleClaimRefund)
			r.Get("/transcripts/{hash}", h.handleGetTranscript)
			r.Get("/breaker", h.handleBreakerStatus)
		})

		r.Post("/markets/{id}/run-trial", h.handleRunTrial)
	})

	if cfg.Bus != nil {
		feed := NewEventFeed(cfg.Bus, cfg.Logger)
		r.Get("/ws/events", feed.Handle)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{
		server:        server,
		logger:        cfg.Logger,
		healthChecker: cfg.HealthChecker,
	}
}

// Start starts the HTTP server.
// This is a blocking call that returns when the server stops or encounters an error.
func (s *Server) Start() error {
	s.logger.Info("http-server-starting", zap.String("addr", s.server.Addr))

	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http-server-shutting-down")

	err := s.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("http-server-shutdown-complete")
	return nil
}
