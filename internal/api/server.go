// Package api exposes the tool catalog over HTTP. It serves the same
// registry as the MCP front end: listing at GET /tools and invocation at
// POST /call or POST /tools/{name}. Unlike the stdio front end, the HTTP
// layer validates arguments against each tool's input schema before
// dispatch.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bbeeken/PDIMCPServer/internal/logging"
	"github.com/bbeeken/PDIMCPServer/internal/registry"
)

// Server represents the HTTP API server
type Server struct {
	router    *http.ServeMux
	server    *http.Server
	addr      string
	logger    *logging.Logger
	registry  *registry.Registry
	tokenHash string
}

// NewServer creates a new HTTP server instance. tokenHash is a bcrypt hash
// of the API bearer token; an empty hash disables authentication.
func NewServer(addr string, reg *registry.Registry, logger *logging.Logger, tokenHash string) *Server {
	s := &Server{
		addr:      addr,
		logger:    logger,
		registry:  reg,
		tokenHash: tokenHash,
		router:    http.NewServeMux(),
	}

	s.registerRoutes()

	handler := s.applyMiddleware(s.router)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", map[string]interface{}{
		"addr":  s.addr,
		"tools": s.registry.Len(),
		"auth":  s.tokenHash != "",
	})

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server", nil)

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shut down successfully", nil)
	return nil
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with middleware in the correct order
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last one wraps first)
	handler = AuthMiddleware(s.tokenHash)(handler)
	handler = GzipMiddleware()(handler)
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	handler = CORSMiddleware()(handler)
	return handler
}
