package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bbeeken/PDIMCPServer/internal/errors"
	"github.com/bbeeken/PDIMCPServer/internal/registry"
	"github.com/bbeeken/PDIMCPServer/internal/version"
)

// maxBodySize bounds request bodies, matching the stdio transport's limit.
const maxBodySize = 1 << 20

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth)
	s.router.HandleFunc("/tools", s.handleListTools)
	s.router.HandleFunc("/tools/", s.handleToolCall) // POST /tools/:name
	s.router.HandleFunc("/call", s.handleCall)
	s.router.HandleFunc("/", s.handleRoot)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Tools     int       `json:"tools"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	WriteJSON(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Tools:     s.registry.Len(),
	}, http.StatusOK)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	// Only handle exact root path
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	WriteJSON(w, map[string]interface{}{
		"name":    version.ServerName,
		"version": version.Version,
		"endpoints": []string{
			"GET /health",
			"GET /tools",
			"POST /call",
			"POST /tools/{name}",
		},
	}, http.StatusOK)
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tools := s.registry.List()
	WriteJSON(w, map[string]interface{}{
		"tools": tools,
		"count": len(tools),
	}, http.StatusOK)
}

// callRequest is the POST /call body. Both "name" and "tool" are accepted
// for the tool name; "tool" wins when both are present.
type callRequest struct {
	Name      string                 `json:"name"`
	Tool      string                 `json:"tool"`
	Arguments map[string]interface{} `json:"arguments"`
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req callRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := decoder.Decode(&req); err != nil {
		WriteError(w, errors.NewInvalidParameterError("body", "invalid JSON"), http.StatusBadRequest)
		return
	}

	name := req.Tool
	if name == "" {
		name = req.Name
	}
	if name == "" {
		WriteError(w, errors.NewInvalidParameterError("name", "tool name required"), http.StatusBadRequest)
		return
	}

	s.dispatch(w, r, name, req.Arguments)
}

// handleToolCall serves POST /tools/{name} where the body is the bare
// arguments object.
func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/tools/")
	if name == "" || strings.Contains(name, "/") {
		http.NotFound(w, r)
		return
	}

	// An empty body means no arguments.
	args := map[string]interface{}{}
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := decoder.Decode(&args); err != nil && err != io.EOF {
		WriteError(w, errors.NewInvalidParameterError("body", "invalid JSON"), http.StatusBadRequest)
		return
	}

	s.dispatch(w, r, name, args)
}

// dispatch validates arguments against the tool's schema and invokes it.
// Validation failures never reach the handler; the envelope is returned
// as-is with 200 for everything the tool itself reports.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, name string, args map[string]interface{}) {
	entry, ok := s.registry.Get(name)
	if !ok {
		WriteServerError(w, errors.NewUnknownToolError(name))
		return
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	if err := registry.ValidateArgs(entry.Tool, args); err != nil {
		if se, ok := err.(*errors.ServerError); ok {
			WriteServerError(w, se)
		} else {
			WriteError(w, err, http.StatusUnprocessableEntity)
		}
		return
	}

	resp := entry.Handler(r.Context(), args)
	WriteJSON(w, resp, http.StatusOK)
}
