package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/verdict/internal/app"
)

// Server manages the HTTP server and routes
type Server struct {
	app    *app.App
	server *http.Server
}

// New creates the HTTP server around the application's handlers. The write
// timeout is generous because an uncached analysis holds the connection open
// for the full specialist fan-out.
func New(application *app.App) *Server {
	s := &Server{app: application}

	handler := chain(s.setupRoutes(),
		requestLogging(application.Logger),
		allowCORS(),
		recoverPanics(application.Logger),
	)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", application.Config.Server.Host, application.Config.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start blocks serving requests until the server is shut down.
func (s *Server) Start() error {
	s.app.Logger.Info().
		Str("address", s.server.Addr).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("Shutting down HTTP server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.app.Logger.Info().Msg("HTTP server stopped")
	return nil
}
