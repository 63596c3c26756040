package warehouse

import "fmt"

// Dialect abstracts the SQL expressions that differ between the
// supported drivers. Tool SQL otherwise sticks to the portable subset
// (LIMIT, standard aggregates), so this stays small.
type Dialect interface {
	// Name identifies the dialect ("sqlite" or "postgres").
	Name() string
	// Placeholder returns the positional placeholder for argument n (1-based).
	Placeholder(n int) string
	// HourExpr extracts the hour (0-23) from a timestamp column.
	HourExpr(column string) string
	// DowExpr extracts the day of week (0=Sunday) from a date column.
	DowExpr(column string) string
	// WeekExpr extracts the week of year from a date column.
	WeekExpr(column string) string
	// MonthExpr extracts the month (1-12) from a date column.
	MonthExpr(column string) string
	// YearExpr extracts the year from a date column.
	YearExpr(column string) string
	// DateExpr truncates a timestamp column to its date.
	DateExpr(column string) string
}

// SQLiteDialect implements Dialect for modernc.org/sqlite.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string { return "sqlite" }

func (SQLiteDialect) Placeholder(int) string { return "?" }

func (SQLiteDialect) HourExpr(column string) string {
	return fmt.Sprintf("CAST(strftime('%%H', %s) AS INTEGER)", column)
}

func (SQLiteDialect) DowExpr(column string) string {
	return fmt.Sprintf("CAST(strftime('%%w', %s) AS INTEGER)", column)
}

func (SQLiteDialect) WeekExpr(column string) string {
	return fmt.Sprintf("CAST(strftime('%%W', %s) AS INTEGER)", column)
}

func (SQLiteDialect) MonthExpr(column string) string {
	return fmt.Sprintf("CAST(strftime('%%m', %s) AS INTEGER)", column)
}

func (SQLiteDialect) YearExpr(column string) string {
	return fmt.Sprintf("CAST(strftime('%%Y', %s) AS INTEGER)", column)
}

func (SQLiteDialect) DateExpr(column string) string {
	return fmt.Sprintf("date(%s)", column)
}

// PostgresDialect implements Dialect for pgx.
type PostgresDialect struct{}

func (PostgresDialect) Name() string { return "postgres" }

func (PostgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (PostgresDialect) HourExpr(column string) string {
	return fmt.Sprintf("EXTRACT(HOUR FROM %s)::int", column)
}

func (PostgresDialect) DowExpr(column string) string {
	return fmt.Sprintf("EXTRACT(DOW FROM %s)::int", column)
}

func (PostgresDialect) WeekExpr(column string) string {
	return fmt.Sprintf("EXTRACT(WEEK FROM %s)::int", column)
}

func (PostgresDialect) MonthExpr(column string) string {
	return fmt.Sprintf("EXTRACT(MONTH FROM %s)::int", column)
}

func (PostgresDialect) YearExpr(column string) string {
	return fmt.Sprintf("EXTRACT(YEAR FROM %s)::int", column)
}

func (PostgresDialect) DateExpr(column string) string {
	return fmt.Sprintf("%s::date", column)
}
