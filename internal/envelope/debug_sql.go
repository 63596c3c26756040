package envelope

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// BuildDebugSQL substitutes named parameters into a SQL string for human
// inspection. The result is never executed; strings are quoted without any
// escaping beyond doubling single quotes.
func BuildDebugSQL(sql string, params map[string]interface{}) string {
	if len(params) == 0 {
		return sql
	}

	// Longest names first so :site_id is not clobbered by :site.
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	out := sql
	for _, k := range keys {
		out = strings.ReplaceAll(out, ":"+k, renderLiteral(params[k]))
	}
	return out
}

func renderLiteral(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case time.Time:
		return "'" + val.Format("2006-01-02") + "'"
	case bool:
		if val {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", val)
	}
}
