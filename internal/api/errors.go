package api

import (
	"encoding/json"
	"net/http"

	"github.com/bbeeken/PDIMCPServer/internal/errors"
)

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := ErrorResponse{
		Error: err.Error(),
		Code:  string(errors.InternalError),
	}
	if se, ok := err.(*errors.ServerError); ok {
		resp.Code = string(se.Code)
		resp.Details = se.Details
	}

	json.NewEncoder(w).Encode(resp)
}

// WriteServerError writes a ServerError with automatic status code mapping
func WriteServerError(w http.ResponseWriter, err *errors.ServerError) {
	WriteError(w, err, MapErrorCodeToStatus(err.Code))
}

// MapErrorCodeToStatus maps stable error codes to HTTP status codes
func MapErrorCodeToStatus(code errors.ErrorCode) int {
	switch code {
	case errors.InvalidParameter, errors.InvalidDate, errors.InvalidChoice:
		return http.StatusUnprocessableEntity // 422
	case errors.UnknownTool:
		return http.StatusNotFound // 404
	case errors.NotImplemented:
		return http.StatusNotImplemented // 501
	case errors.QueryFailed:
		return http.StatusServiceUnavailable // 503
	case errors.Unauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
