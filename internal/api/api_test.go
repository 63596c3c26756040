package api

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/bbeeken/PDIMCPServer/internal/envelope"
	"github.com/bbeeken/PDIMCPServer/internal/logging"
	"github.com/bbeeken/PDIMCPServer/internal/registry"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.JSONFormat,
		Level:  logging.ErrorLevel,
		Output: io.Discard,
	})
}

func testRegistry() *registry.Registry {
	reg := registry.New()
	reg.Register(registry.Tool{
		Name:        "site_sales",
		Description: "test tool with a closed schema",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"site_id": map[string]interface{}{"type": "integer"},
			},
			"required":             []interface{}{"site_id"},
			"additionalProperties": false,
		},
	}, func(ctx context.Context, args map[string]interface{}) *envelope.Response {
		return envelope.New().
			Data([]map[string]interface{}{{"site_id": args["site_id"]}}).
			Build()
	})
	return reg
}

func newTestServer(t *testing.T, tokenHash string) *Server {
	t.Helper()
	return NewServer("127.0.0.1:0", testRegistry(), testLogger(), tokenHash)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, "")
	rec := doRequest(t, s, http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var health HealthResponse
	decodeBody(t, rec, &health)
	if health.Status != "healthy" || health.Tools != 1 {
		t.Errorf("unexpected health response: %+v", health)
	}
}

func TestListToolsEndpoint(t *testing.T) {
	s := newTestServer(t, "")
	rec := doRequest(t, s, http.MethodGet, "/tools", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Tools []registry.Tool `json:"tools"`
		Count int             `json:"count"`
	}
	decodeBody(t, rec, &body)
	if body.Count != 1 || body.Tools[0].Name != "site_sales" {
		t.Errorf("unexpected tool list: %+v", body)
	}
}

func TestCallEndpoint(t *testing.T) {
	s := newTestServer(t, "")
	rec := doRequest(t, s, http.MethodPost, "/call",
		`{"name":"site_sales","arguments":{"site_id":4}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp envelope.Response
	decodeBody(t, rec, &resp)
	if !resp.Success || resp.RowCount != 1 {
		t.Errorf("unexpected envelope: %+v", resp)
	}
}

func TestCallAcceptsToolKey(t *testing.T) {
	s := newTestServer(t, "")
	rec := doRequest(t, s, http.MethodPost, "/call",
		`{"tool":"site_sales","arguments":{"site_id":4}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCallUnknownTool(t *testing.T) {
	s := newTestServer(t, "")
	rec := doRequest(t, s, http.MethodPost, "/call",
		`{"name":"nope","arguments":{}}`)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var errResp ErrorResponse
	decodeBody(t, rec, &errResp)
	if errResp.Code != "UNKNOWN_TOOL" {
		t.Errorf("error code = %s", errResp.Code)
	}
}

func TestCallMissingName(t *testing.T) {
	s := newTestServer(t, "")
	rec := doRequest(t, s, http.MethodPost, "/call", `{"arguments":{}}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestToolPathEndpoint(t *testing.T) {
	s := newTestServer(t, "")
	rec := doRequest(t, s, http.MethodPost, "/tools/site_sales", `{"site_id":4}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp envelope.Response
	decodeBody(t, rec, &resp)
	if !resp.Success {
		t.Errorf("unexpected envelope: %+v", resp)
	}
}

func TestToolPathRejectsUnknownField(t *testing.T) {
	s := newTestServer(t, "")
	rec := doRequest(t, s, http.MethodPost, "/tools/site_sales",
		`{"site_id":4,"bogus":1}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var errResp ErrorResponse
	decodeBody(t, rec, &errResp)
	if !strings.Contains(errResp.Error, "bogus") {
		t.Errorf("error should name the unknown field: %s", errResp.Error)
	}
}

func TestToolPathRejectsMissingRequired(t *testing.T) {
	s := newTestServer(t, "")
	rec := doRequest(t, s, http.MethodPost, "/tools/site_sales", `{}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestToolPathRejectsWrongType(t *testing.T) {
	s := newTestServer(t, "")
	rec := doRequest(t, s, http.MethodPost, "/tools/site_sales",
		`{"site_id":"four"}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestToolPathUnknownTool(t *testing.T) {
	s := newTestServer(t, "")
	rec := doRequest(t, s, http.MethodPost, "/tools/nope", `{}`)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestToolPathRequiresPost(t *testing.T) {
	s := newTestServer(t, "")
	rec := doRequest(t, s, http.MethodGet, "/tools/site_sales", "")

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, "")

	rec := doRequest(t, s, http.MethodGet, "/health", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing generated request ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("request ID not preserved: %s", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, "")
	rec := doRequest(t, s, http.MethodOptions, "/call", "")

	if rec.Code != http.StatusOK {
		t.Errorf("preflight status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestGzipResponse(t *testing.T) {
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/tools", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q", rec.Header().Get("Content-Encoding"))
	}

	gz, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("body is not gzip: %v", err)
	}
	defer gz.Close()
	decompressed, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("failed to decompress: %v", err)
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(decompressed, &body); err != nil {
		t.Fatalf("decompressed body is not JSON: %v", err)
	}
	if body.Count != 1 {
		t.Errorf("count = %d", body.Count)
	}
}

func TestAuthRequired(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sesame"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	s := newTestServer(t, string(hash))

	// No token
	rec := doRequest(t, s, http.MethodGet, "/tools", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}

	// Wrong token
	req := httptest.NewRequest(http.MethodGet, "/tools", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", rec.Code)
	}

	// Valid token
	req = httptest.NewRequest(http.MethodGet, "/tools", nil)
	req.Header.Set("Authorization", "Bearer sesame")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", rec.Code)
	}

	// Health stays open for probes
	rec = doRequest(t, s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("health with auth enabled: status = %d, want 200", rec.Code)
	}
}
