package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/bbeeken/PDIMCPServer/internal/envelope"
	"github.com/bbeeken/PDIMCPServer/internal/logging"
	"github.com/bbeeken/PDIMCPServer/internal/registry"
)

func testServer() *Server {
	reg := registry.New()
	reg.Register(registry.Tool{
		Name:        "echo_args",
		Description: "test tool",
		InputSchema: map[string]interface{}{"type": "object"},
	}, func(ctx context.Context, args map[string]interface{}) *envelope.Response {
		return envelope.New().Data([]map[string]interface{}{args}).Build()
	})

	logger := logging.NewLogger(logging.Config{
		Format: logging.JSONFormat,
		Level:  logging.ErrorLevel,
		Output: os.Stderr,
	})
	return NewServer("mcp-pdi-sales", "1.0.0", reg, logger)
}

// run feeds line-delimited requests through the server and returns the
// decoded responses.
func run(t *testing.T, requests ...string) []Message {
	t.Helper()

	s := testServer()
	s.SetStdin(strings.NewReader(strings.Join(requests, "\n") + "\n"))
	var out bytes.Buffer
	s.SetStdout(&out)

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var responses []Message
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var msg Message
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			t.Fatalf("bad response line %q: %v", line, err)
		}
		responses = append(responses, msg)
	}
	return responses
}

func TestInitialize(t *testing.T) {
	responses := run(t, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}

	result := responses[0].Result.(map[string]interface{})
	info := result["serverInfo"].(map[string]interface{})
	if info["name"] != "mcp-pdi-sales" {
		t.Errorf("server name = %v", info["name"])
	}
	if result["protocolVersion"] == "" {
		t.Error("missing protocol version")
	}
}

func TestListTools(t *testing.T) {
	responses := run(t, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}

	result := responses[0].Result.(map[string]interface{})
	tools := result["tools"].([]interface{})
	if len(tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(tools))
	}
	tool := tools[0].(map[string]interface{})
	if tool["name"] != "echo_args" {
		t.Errorf("tool name = %v", tool["name"])
	}
}

func TestCallTool(t *testing.T) {
	responses := run(t,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"echo_args","arguments":{"site_id":4}}}`)
	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}

	result := responses[0].Result.(map[string]interface{})
	content := result["content"].([]interface{})
	if len(content) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(content))
	}
	block := content[0].(map[string]interface{})
	if block["type"] != "text" {
		t.Errorf("content type = %v", block["type"])
	}

	var resp envelope.Response
	if err := json.Unmarshal([]byte(block["text"].(string)), &resp); err != nil {
		t.Fatalf("content text is not an envelope: %v", err)
	}
	if !resp.Success || resp.RowCount != 1 {
		t.Errorf("unexpected envelope: %+v", resp)
	}
	if result["isError"] != false {
		t.Errorf("isError = %v", result["isError"])
	}
}

func TestCallUnknownToolIsEnvelopeError(t *testing.T) {
	responses := run(t,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"nope","arguments":{}}}`)
	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}

	// Unknown tool is a tool-level failure, not a JSON-RPC error.
	if responses[0].Error != nil {
		t.Fatalf("expected result, got RPC error %v", responses[0].Error)
	}
	result := responses[0].Result.(map[string]interface{})
	if result["isError"] != true {
		t.Error("expected isError true for unknown tool")
	}
}

func TestCallToolBadParams(t *testing.T) {
	responses := run(t, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{}}`)
	if responses[0].Error == nil || responses[0].Error.Code != InvalidParams {
		t.Errorf("expected InvalidParams error, got %+v", responses[0].Error)
	}
}

func TestUnknownMethod(t *testing.T) {
	responses := run(t, `{"jsonrpc":"2.0","id":6,"method":"bogus/method"}`)
	if responses[0].Error == nil || responses[0].Error.Code != MethodNotFound {
		t.Errorf("expected MethodNotFound, got %+v", responses[0].Error)
	}
}

func TestNotificationProducesNoResponse(t *testing.T) {
	responses := run(t,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":7,"method":"tools/list"}`)
	if len(responses) != 1 {
		t.Fatalf("expected only the list response, got %d", len(responses))
	}
	if responses[0].Id.(float64) != 7 {
		t.Errorf("response id = %v", responses[0].Id)
	}
}
