package registry

import (
	"context"
	"testing"

	"github.com/bbeeken/PDIMCPServer/internal/envelope"
	"github.com/bbeeken/PDIMCPServer/internal/errors"
)

func okHandler(ctx context.Context, args map[string]interface{}) *envelope.Response {
	return envelope.New().Data([]map[string]interface{}{{"ok": true}}).Build()
}

func TestRegisterAndCall(t *testing.T) {
	r := New()
	r.Register(Tool{Name: "sales_summary", Description: "d"}, okHandler)

	resp := r.Call(context.Background(), "sales_summary", nil)
	if !resp.Success {
		t.Errorf("expected success, got %+v", resp)
	}
	if resp.RowCount != 1 {
		t.Errorf("expected row count 1, got %d", resp.RowCount)
	}
}

func TestCallUnknownTool(t *testing.T) {
	r := New()
	resp := r.Call(context.Background(), "nope", nil)
	if resp.Success {
		t.Fatal("unknown tool should not succeed")
	}
	if resp.Status != envelope.StatusError {
		t.Errorf("expected error status, got %q", resp.Status)
	}
	if resp.Error == "" {
		t.Error("expected error message")
	}
}

func TestListSorted(t *testing.T) {
	r := New()
	r.Register(Tool{Name: "zebra"}, okHandler)
	r.Register(Tool{Name: "alpha"}, okHandler)
	r.Register(Tool{Name: "middle"}, okHandler)

	tools := r.List()
	if len(tools) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(tools))
	}
	want := []string{"alpha", "middle", "zebra"}
	for i, w := range want {
		if tools[i].Name != w {
			t.Errorf("tools[%d] = %q, want %q", i, tools[i].Name, w)
		}
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	r := New()
	r.Register(Tool{Name: "dup"}, okHandler)
	r.Register(Tool{Name: "dup"}, okHandler)
}

func schemaFixture() Tool {
	return Tool{
		Name: "t",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start_date": map[string]interface{}{"type": "string"},
				"limit":      map[string]interface{}{"type": "integer"},
				"metric": map[string]interface{}{
					"type": "string",
					"enum": []interface{}{"qty", "gross_sales"},
				},
			},
			"required":             []interface{}{"start_date"},
			"additionalProperties": false,
		},
	}
}

func TestValidateArgs(t *testing.T) {
	tool := schemaFixture()

	tests := []struct {
		name     string
		args     map[string]interface{}
		wantCode errors.ErrorCode
	}{
		{"valid", map[string]interface{}{"start_date": "2025-06-01", "limit": float64(10)}, ""},
		{"missing required", map[string]interface{}{"limit": float64(10)}, errors.InvalidParameter},
		{"unknown field", map[string]interface{}{"start_date": "x", "bogus": 1}, errors.InvalidParameter},
		{"wrong type", map[string]interface{}{"start_date": 42}, errors.InvalidParameter},
		{"float for integer", map[string]interface{}{"start_date": "x", "limit": 1.5}, errors.InvalidParameter},
		{"whole float ok", map[string]interface{}{"start_date": "x", "limit": float64(3)}, ""},
		{"bad enum", map[string]interface{}{"start_date": "x", "metric": "revenue"}, errors.InvalidChoice},
		{"good enum", map[string]interface{}{"start_date": "x", "metric": "qty"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArgs(tool, tt.args)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.CodeOf(err) != tt.wantCode {
				t.Errorf("code = %v, want %v", errors.CodeOf(err), tt.wantCode)
			}
		})
	}
}

func TestValidateArgsOpenSchema(t *testing.T) {
	tool := Tool{Name: "t", InputSchema: map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}}
	if err := ValidateArgs(tool, map[string]interface{}{"anything": 1}); err != nil {
		t.Errorf("open schema should accept unknown fields: %v", err)
	}
}
