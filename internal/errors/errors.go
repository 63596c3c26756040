// Package errors defines stable error codes for all failure modes of the
// tool server. Every error that crosses a front-end boundary carries one of
// these codes so the HTTP layer can map it to a status code and clients can
// branch on it without parsing messages.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InvalidParameter indicates a missing or badly typed tool argument
	InvalidParameter ErrorCode = "INVALID_PARAMETER"
	// InvalidDate indicates an unparseable date or an inverted date range
	InvalidDate ErrorCode = "INVALID_DATE"
	// InvalidChoice indicates an enum value outside its allow-list
	InvalidChoice ErrorCode = "INVALID_CHOICE"
	// UnknownTool indicates a call for a tool name that is not registered
	UnknownTool ErrorCode = "UNKNOWN_TOOL"
	// NotImplemented indicates a declared tool whose implementation is a stub
	NotImplemented ErrorCode = "NOT_IMPLEMENTED"
	// QueryFailed indicates a database or connectivity failure
	QueryFailed ErrorCode = "QUERY_FAILED"
	// ConfigMissing indicates required configuration absent at startup
	ConfigMissing ErrorCode = "CONFIG_MISSING"
	// Unauthorized indicates a missing or invalid API token
	Unauthorized ErrorCode = "UNAUTHORIZED"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// ServerError represents a server error with a stable code and message
type ServerError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // underlying error, not exported to JSON
}

// Error implements the error interface
func (e *ServerError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ServerError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *ServerError) WithDetails(details interface{}) *ServerError {
	e.Details = details
	return e
}

// New creates a ServerError with the given code and message
func New(code ErrorCode, message string) *ServerError {
	return &ServerError{Code: code, Message: message}
}

// Wrap creates a ServerError wrapping a cause
func Wrap(code ErrorCode, message string, cause error) *ServerError {
	return &ServerError{Code: code, Message: message, cause: cause}
}

// NewInvalidParameterError reports a missing or malformed tool argument
func NewInvalidParameterError(name, detail string) *ServerError {
	msg := fmt.Sprintf("missing or invalid parameter %q", name)
	if detail != "" {
		msg += ": " + detail
	}
	return New(InvalidParameter, msg)
}

// NewInvalidChoiceError reports an enum value outside its allow-list
func NewInvalidChoiceError(name, got string, allowed []string) *ServerError {
	return New(InvalidChoice,
		fmt.Sprintf("invalid %s %q (valid: %v)", name, got, allowed))
}

// NewUnknownToolError reports a call against an unregistered tool name
func NewUnknownToolError(name string) *ServerError {
	return New(UnknownTool, fmt.Sprintf("unknown tool: %s", name))
}

// NewQueryError wraps a database failure
func NewQueryError(op string, cause error) *ServerError {
	return Wrap(QueryFailed, op, cause)
}

// NewConfigError reports missing required configuration
func NewConfigError(field string) *ServerError {
	return New(ConfigMissing, fmt.Sprintf("required configuration %s is not set", field))
}

// CodeOf extracts the error code from err, or InternalError if err is not a
// ServerError.
func CodeOf(err error) ErrorCode {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Code
	}
	return InternalError
}
