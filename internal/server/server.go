// Package server exposes the read-only API and operational endpoints:
// post history, the latest quote, health probes, and metrics.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
)

// Server wraps the echo instance and its dependencies.
type Server struct {
	echo *echo.Echo
	port string

	posts  domain.PostRepository
	rates  domain.RateRepository
	cache  domain.QuoteCache
	ticker string

	healthChecks []HealthCheck
	startTime    time.Time
}

// NewServer builds the HTTP server. ticker is the exchange-rate symbol
// the quote endpoint serves.
func NewServer(port string, posts domain.PostRepository, rates domain.RateRepository, cache domain.QuoteCache, ticker string, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		port:         port,
		posts:        posts,
		rates:        rates,
		cache:        cache,
		ticker:       ticker,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()
	return srv
}

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.port)
	if err := s.echo.Start(":" + s.port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown drains connections and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
