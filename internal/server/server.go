// Package server provides HTTP server setup and handlers
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campaignhub/internal/config"
	"campaignhub/internal/listing"
	"campaignhub/internal/repository"
	"campaignhub/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server represents the HTTP server
type Server struct {
	config   *config.Config
	repos    *repository.Repositories
	sessions *session.Provider
	views    *listing.Loader
	logger   *zap.Logger
	router   *chi.Mux
	http     *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, repos *repository.Repositories, sessions *session.Provider, logger *zap.Logger) *Server {
	s := &Server{
		config:   cfg,
		repos:    repos,
		sessions: sessions,
		views:    listing.NewLoader(*repos, logger),
		logger:   logger,
		router:   chi.NewRouter(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.http = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Run starts the server and handles graceful shutdown
func (s *Server) Run() error {
	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			zap.String("addr", s.config.Address()),
			zap.Bool("debug", s.config.Debug),
			zap.String("store", s.config.Store.Driver))
		serverErrors <- s.http.ListenAndServe()
	}()

	// Channel to listen for OS signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		s.logger.Info("shutting down", zap.Stringer("signal", sig))

		// Give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error("graceful shutdown failed", zap.Error(err))
			if err := s.http.Close(); err != nil {
				return fmt.Errorf("failed to close server: %w", err)
			}
		}

		s.logger.Info("server shutdown complete")
	}

	return nil
}

// setupMiddleware configures global middleware
func (s *Server) setupMiddleware() {
	// Real IP detection (important for logging behind proxies)
	s.router.Use(middleware.RealIP)

	// Request ID for tracing
	s.router.Use(middleware.RequestID)

	// Request logging
	s.router.Use(s.loggingMiddleware)

	// Panic recovery
	s.router.Use(middleware.Recoverer)

	// Security headers
	s.router.Use(s.securityHeaders)

	// Response compression (level 5 is a good balance)
	s.router.Use(middleware.Compress(5))

	// Timeout for requests
	s.router.Use(middleware.Timeout(30 * time.Second))
}

// securityHeaders adds security-related headers to all responses
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// Control referrer information
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Creative previews load media from external hosts
		csp := "default-src 'self'; " +
			"img-src * data:; " +
			"media-src *; " +
			"frame-ancestors 'none'"
		w.Header().Set("Content-Security-Policy", csp)

		// Permissions Policy (restrict browser features)
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		next.ServeHTTP(w, r)
	})
}

// GetRouter returns the chi router (useful for testing)
func (s *Server) GetRouter() *chi.Mux {
	return s.router
}
