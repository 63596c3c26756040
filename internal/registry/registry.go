// Package registry holds the tool catalog: each tool's descriptor and
// handler are registered together, so listing and dispatch read from
// the same table and a tool cannot be listed without being callable.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bbeeken/PDIMCPServer/internal/envelope"
	"github.com/bbeeken/PDIMCPServer/internal/errors"
)

// Tool describes a callable tool to MCP clients
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Handler executes a tool call. Handlers never return Go errors;
// failures are reported inside the response envelope.
type Handler func(ctx context.Context, args map[string]interface{}) *envelope.Response

// Entry pairs a tool descriptor with its handler
type Entry struct {
	Tool    Tool
	Handler Handler
}

// Registry is the tool catalog
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
	}
}

// Register adds a tool to the catalog. Registering a duplicate name or
// a nil handler panics; both are wiring bugs, not runtime conditions.
func (r *Registry) Register(tool Tool, handler Handler) {
	if handler == nil {
		panic(fmt.Sprintf("registry: tool %q registered with nil handler", tool.Name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[tool.Name]; exists {
		panic(fmt.Sprintf("registry: tool %q registered twice", tool.Name))
	}
	r.entries[tool.Name] = Entry{Tool: tool, Handler: handler}
}

// List returns all tool descriptors sorted by name
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.entries))
	for _, e := range r.entries {
		tools = append(tools, e.Tool)
	}
	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Name < tools[j].Name
	})
	return tools
}

// Get returns the entry for a tool name
func (r *Registry) Get(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// Len returns the number of registered tools
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Call dispatches a tool call by name. An unknown tool produces an
// error envelope rather than a Go error, matching how every other
// tool failure is reported to clients.
func (r *Registry) Call(ctx context.Context, name string, args map[string]interface{}) *envelope.Response {
	entry, ok := r.Get(name)
	if !ok {
		return envelope.New().Error(errors.NewUnknownToolError(name)).Build()
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return entry.Handler(ctx, args)
}
