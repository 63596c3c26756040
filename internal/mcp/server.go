// Package mcp implements the stdio MCP front end: a line-delimited
// JSON-RPC 2.0 loop exposing the tool registry to agent clients.
package mcp

import (
	"bufio"
	"io"
	"os"

	"github.com/bbeeken/PDIMCPServer/internal/logging"
	"github.com/bbeeken/PDIMCPServer/internal/registry"
)

// Server represents the MCP stdio server
type Server struct {
	stdin   io.Reader
	stdout  io.Writer
	scanner *bufio.Scanner
	logger  *logging.Logger

	name     string
	version  string
	registry *registry.Registry
}

// NewServer creates an MCP server over the given tool registry
func NewServer(name, version string, reg *registry.Registry, logger *logging.Logger) *Server {
	return &Server{
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		logger:   logger,
		name:     name,
		version:  version,
		registry: reg,
	}
}

// SetStdin sets the input stream (for testing)
func (s *Server) SetStdin(r io.Reader) {
	s.stdin = r
	s.scanner = nil
}

// SetStdout sets the output stream (for testing)
func (s *Server) SetStdout(w io.Writer) {
	s.stdout = w
}

// Start runs the message loop until stdin closes
func (s *Server) Start() error {
	s.logger.Info("MCP server starting", map[string]interface{}{
		"name":    s.name,
		"version": s.version,
		"tools":   s.registry.Len(),
	})

	for {
		msg, err := s.readMessage()
		if err != nil {
			if err == io.EOF {
				s.logger.Info("MCP server shutting down (EOF)", nil)
				return nil
			}
			s.logger.Error("Error reading message", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}

		response := s.handleMessage(msg)

		// Notifications don't generate responses.
		if response != nil {
			if err := s.writeMessage(response); err != nil {
				s.logger.Error("Error writing response", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}
