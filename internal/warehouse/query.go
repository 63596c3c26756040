package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bbeeken/PDIMCPServer/internal/errors"
)

// Row is one result row keyed by column name.
type Row = map[string]interface{}

// ExecuteQuery runs a SELECT written with :name parameters and returns
// the rows as maps. Parameters bind by name only; the SQL is rewritten
// to the driver's positional placeholders before execution.
func (db *DB) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) ([]Row, error) {
	rewritten, args, err := BindNamed(query, params, db.dialect)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, rewritten, args...)
	if err != nil {
		db.logger.Error("Query failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, errors.NewQueryError("execute query", err)
	}
	defer rows.Close()

	results, err := scanRows(rows)
	if err != nil {
		return nil, errors.NewQueryError("scan results", err)
	}

	db.logger.Debug("Query executed", map[string]interface{}{
		"rows":        len(results),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return results, nil
}

// BindNamed rewrites :name parameters in query to the dialect's
// positional placeholders and returns the argument list in placeholder
// order. A :name with no entry in params is an error; extra params are
// ignored. Text inside single-quoted literals is left untouched, as
// are Postgres :: casts.
func BindNamed(query string, params map[string]interface{}, dialect Dialect) (string, []interface{}, error) {
	var (
		sb       strings.Builder
		args     []interface{}
		ordinals = make(map[string]int) // name -> placeholder number (postgres reuse)
		inString bool
	)
	sb.Grow(len(query))

	for i := 0; i < len(query); i++ {
		ch := query[i]

		if inString {
			sb.WriteByte(ch)
			if ch == '\'' {
				inString = false
			}
			continue
		}

		switch {
		case ch == '\'':
			inString = true
			sb.WriteByte(ch)

		case ch == ':' && i+1 < len(query) && query[i+1] == ':':
			// Postgres cast, not a parameter.
			sb.WriteString("::")
			i++

		case ch == ':' && i+1 < len(query) && isIdentStart(query[i+1]):
			j := i + 1
			for j < len(query) && isIdentPart(query[j]) {
				j++
			}
			name := query[i+1 : j]
			value, ok := params[name]
			if !ok {
				return "", nil, errors.New(errors.InvalidParameter,
					fmt.Sprintf("query references unbound parameter :%s", name))
			}

			if _, isPostgres := dialect.(PostgresDialect); isPostgres {
				n, seen := ordinals[name]
				if !seen {
					args = append(args, value)
					n = len(args)
					ordinals[name] = n
				}
				sb.WriteString(dialect.Placeholder(n))
			} else {
				args = append(args, value)
				sb.WriteString(dialect.Placeholder(len(args)))
			}
			i = j - 1

		default:
			sb.WriteByte(ch)
		}
	}

	return sb.String(), args, nil
}

// scanRows converts sql.Rows into []Row preserving column values.
func scanRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := make([]Row, 0, 16)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		results = append(results, row)
	}

	return results, rows.Err()
}

// normalizeValue makes driver-specific scan types JSON-friendly.
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return v
	}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}
