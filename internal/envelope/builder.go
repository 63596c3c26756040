package envelope

import (
	"fmt"
	"reflect"
	"time"
)

// Builder constructs Response envelopes using a fluent API.
type Builder struct {
	resp   *Response
	sql    string
	params map[string]interface{}
}

// New creates a new envelope builder.
func New() *Builder {
	return &Builder{
		resp: &Response{
			Status: StatusOK,
			Data:   []map[string]interface{}{},
		},
	}
}

// Data sets the tool-specific payload.
func (b *Builder) Data(data interface{}) *Builder {
	b.resp.Data = data
	return b
}

// SQL records the executed statement and its named parameters; Build renders
// them into the debug_sql field.
func (b *Builder) SQL(sql string, params map[string]interface{}) *Builder {
	b.sql = sql
	b.params = params
	return b
}

// Metadata sets the metadata mapping.
func (b *Builder) Metadata(md map[string]interface{}) *Builder {
	b.resp.Metadata = md
	return b
}

// Error marks the response failed. A nil err is a no-op.
func (b *Builder) Error(err error) *Builder {
	if err != nil {
		b.resp.Error = err.Error()
		b.resp.Status = StatusError
	}
	return b
}

// Errorf marks the response failed with a formatted message.
func (b *Builder) Errorf(format string, args ...interface{}) *Builder {
	b.resp.Error = fmt.Sprintf(format, args...)
	b.resp.Status = StatusError
	return b
}

// Unimplemented marks the response as the tagged stub outcome.
func (b *Builder) Unimplemented(tool string) *Builder {
	b.resp.Status = StatusUnimplemented
	b.resp.Error = fmt.Sprintf("%s tool not yet implemented", tool)
	return b
}

// Build finalizes the envelope: stamps the timestamp, renders debug SQL,
// derives success from status, and counts rows.
func (b *Builder) Build() *Response {
	b.resp.Success = b.resp.Status == StatusOK
	b.resp.Timestamp = time.Now().Format(time.RFC3339)
	if b.sql != "" {
		b.resp.DebugSQL = BuildDebugSQL(b.sql, b.params)
	}
	b.resp.RowCount = countRows(b.resp.Data)
	return b.resp
}

// countRows is len(data) for slices, else 1. A nil payload counts as 0.
func countRows(data interface{}) int {
	if data == nil {
		return 0
	}
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		return v.Len()
	}
	return 1
}
