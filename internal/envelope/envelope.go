// Package envelope provides the standardized response wrapper for all tool
// responses. Every tool call, regardless of front end, returns the same
// shape: a success flag, the rows (or object) produced, a row count, the
// executed SQL with parameters substituted for inspection, and a timestamp.
package envelope

// Status distinguishes the three terminal outcomes of a tool call.
type Status string

const (
	// StatusOK indicates the query ran; zero rows is still OK.
	StatusOK Status = "ok"
	// StatusError indicates validation or execution failed.
	StatusError Status = "error"
	// StatusUnimplemented indicates the tool is declared but its
	// implementation is a stub. Distinct from StatusError so callers can
	// tell "feature absent" from "feature failed".
	StatusUnimplemented Status = "unimplemented"
)

// Response is the standard envelope for all tool responses.
// Success is false iff Error is set; RowCount mirrors len(Data) when Data is
// a slice and is 1 otherwise. Never mutated after Build.
type Response struct {
	Success   bool                   `json:"success"`
	Status    Status                 `json:"status"`
	Data      interface{}            `json:"data"`
	RowCount  int                    `json:"row_count"`
	DebugSQL  string                 `json:"debug_sql"`
	Timestamp string                 `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Error     string                 `json:"error,omitempty"`
}
