package envelope

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestBuildSuccess(t *testing.T) {
	rows := []map[string]interface{}{
		{"item_id": 1, "total_sales": 10.5},
		{"item_id": 2, "total_sales": 4.0},
	}
	resp := New().
		Data(rows).
		SQL("SELECT * FROM sales WHERE site_id = :site_id", map[string]interface{}{"site_id": 7}).
		Metadata(map[string]interface{}{"site_id": 7}).
		Build()

	if !resp.Success {
		t.Error("Success should be true when no error is set")
	}
	if resp.Status != StatusOK {
		t.Errorf("Status = %s, want ok", resp.Status)
	}
	if resp.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", resp.RowCount)
	}
	if resp.Error != "" {
		t.Errorf("Error should be empty, got %q", resp.Error)
	}
	if !strings.Contains(resp.DebugSQL, "site_id = 7") {
		t.Errorf("DebugSQL should substitute params, got %q", resp.DebugSQL)
	}
	if _, err := time.Parse(time.RFC3339, resp.Timestamp); err != nil {
		t.Errorf("Timestamp %q is not RFC3339: %v", resp.Timestamp, err)
	}
}

func TestBuildError(t *testing.T) {
	resp := New().
		Data([]map[string]interface{}{}).
		Error(fmt.Errorf("connection refused")).
		Build()

	if resp.Success {
		t.Error("Success must be false when Error is set")
	}
	if resp.Status != StatusError {
		t.Errorf("Status = %s, want error", resp.Status)
	}
	if resp.Error != "connection refused" {
		t.Errorf("Error = %q, want 'connection refused'", resp.Error)
	}
	if resp.RowCount != 0 {
		t.Errorf("RowCount = %d, want 0 for empty data", resp.RowCount)
	}
}

func TestSuccessErrorExclusive(t *testing.T) {
	// Exactly one of: error set with success=false, or no error with
	// success=true.
	cases := []*Response{
		New().Data([]int{1}).Build(),
		New().Error(fmt.Errorf("boom")).Build(),
		New().Unimplemented("sales_forecast").Build(),
	}
	for i, resp := range cases {
		hasError := resp.Error != ""
		if resp.Success == hasError {
			t.Errorf("case %d: success=%v with error=%q violates the envelope invariant", i, resp.Success, resp.Error)
		}
	}
}

func TestUnimplemented(t *testing.T) {
	resp := New().Unimplemented("sales_forecast").Build()

	if resp.Status != StatusUnimplemented {
		t.Errorf("Status = %s, want unimplemented", resp.Status)
	}
	if resp.Success {
		t.Error("unimplemented responses are not successful")
	}
	if !strings.Contains(resp.Error, "sales_forecast") {
		t.Errorf("Error should name the tool, got %q", resp.Error)
	}
}

func TestRowCountScalarData(t *testing.T) {
	resp := New().Data(map[string]interface{}{"current_period": nil}).Build()
	if resp.RowCount != 1 {
		t.Errorf("RowCount for a mapping = %d, want 1", resp.RowCount)
	}
}

func TestBuildDebugSQL(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		params map[string]interface{}
		want   string
	}{
		{
			name:   "string quoting",
			sql:    "WHERE sale_date BETWEEN :start_date AND :end_date",
			params: map[string]interface{}{"start_date": "2024-01-01", "end_date": "2024-01-31"},
			want:   "WHERE sale_date BETWEEN '2024-01-01' AND '2024-01-31'",
		},
		{
			name:   "numeric unquoted",
			sql:    "WHERE site_id = :site_id LIMIT :limit",
			params: map[string]interface{}{"site_id": 3, "limit": 100},
			want:   "WHERE site_id = 3 LIMIT 100",
		},
		{
			name:   "nil renders NULL",
			sql:    "SET x = :val",
			params: map[string]interface{}{"val": nil},
			want:   "SET x = NULL",
		},
		{
			name:   "prefix collision",
			sql:    "WHERE a = :item AND b = :item_id",
			params: map[string]interface{}{"item": "coffee", "item_id": 9},
			want:   "WHERE a = 'coffee' AND b = 9",
		},
		{
			name:   "embedded quote escaped",
			sql:    "WHERE item_name LIKE :pattern",
			params: map[string]interface{}{"pattern": "%O'Brien%"},
			want:   "WHERE item_name LIKE '%O''Brien%'",
		},
		{
			name:   "no params",
			sql:    "SELECT 1",
			params: nil,
			want:   "SELECT 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildDebugSQL(tt.sql, tt.params); got != tt.want {
				t.Errorf("BuildDebugSQL() = %q, want %q", got, tt.want)
			}
		})
	}
}
