package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestServerErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *ServerError
		want string
	}{
		{
			name: "without cause",
			err:  New(UnknownTool, "unknown tool: bogus"),
			want: "[UNKNOWN_TOOL] unknown tool: bogus",
		},
		{
			name: "with cause",
			err:  Wrap(QueryFailed, "select daily totals", fmt.Errorf("connection refused")),
			want: "[QUERY_FAILED] select daily totals: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := Wrap(QueryFailed, "op", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(InvalidDate, "bad date")); got != InvalidDate {
		t.Errorf("CodeOf(ServerError) = %s, want INVALID_DATE", got)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != InternalError {
		t.Errorf("CodeOf(plain error) = %s, want INTERNAL_ERROR", got)
	}
	wrapped := fmt.Errorf("outer: %w", NewUnknownToolError("x"))
	if got := CodeOf(wrapped); got != UnknownTool {
		t.Errorf("CodeOf(wrapped) = %s, want UNKNOWN_TOOL", got)
	}
}

func TestNewInvalidChoiceError(t *testing.T) {
	err := NewInvalidChoiceError("interval", "yearly", []string{"daily", "weekly"})
	if err.Code != InvalidChoice {
		t.Errorf("Code = %s, want INVALID_CHOICE", err.Code)
	}
	if !strings.Contains(err.Message, "yearly") || !strings.Contains(err.Message, "daily") {
		t.Errorf("message should name the bad value and the allow-list, got %q", err.Message)
	}
}
