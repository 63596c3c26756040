package warehouse

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/bbeeken/PDIMCPServer/internal/errors"
	"github.com/bbeeken/PDIMCPServer/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.JSONFormat,
		Level:  logging.ErrorLevel,
		Output: os.Stderr,
	})
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	schema := `
CREATE TABLE v_llm_salesfact (
	sale_date TEXT,
	site_id INTEGER,
	item_id INTEGER,
	qty_sold REAL,
	gross_sales REAL
);
INSERT INTO v_llm_salesfact VALUES
	('2025-06-01', 1, 100, 3, 9.75),
	('2025-06-01', 1, 101, 1, 2.50),
	('2025-06-02', 2, 100, 5, 16.25);
`
	if _, err := conn.Exec(schema); err != nil {
		t.Fatalf("seed schema: %v", err)
	}

	return NewFromConn(conn, SQLiteDialect{}, testLogger())
}

func TestBindNamedSQLite(t *testing.T) {
	sql, args, err := BindNamed(
		"SELECT * FROM t WHERE a = :start AND b = :start_date AND c = :start",
		map[string]interface{}{"start": "s", "start_date": "sd"},
		SQLiteDialect{},
	)
	if err != nil {
		t.Fatalf("BindNamed failed: %v", err)
	}
	want := "SELECT * FROM t WHERE a = ? AND b = ? AND c = ?"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 3 || args[0] != "s" || args[1] != "sd" || args[2] != "s" {
		t.Errorf("args = %v", args)
	}
}

func TestBindNamedPostgresReusesPlaceholders(t *testing.T) {
	sql, args, err := BindNamed(
		"SELECT * FROM t WHERE a = :start AND b = :end AND c = :start",
		map[string]interface{}{"start": 1, "end": 2},
		PostgresDialect{},
	)
	if err != nil {
		t.Fatalf("BindNamed failed: %v", err)
	}
	want := "SELECT * FROM t WHERE a = $1 AND b = $2 AND c = $1"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 2 {
		t.Errorf("expected 2 args, got %v", args)
	}
}

func TestBindNamedSkipsCastsAndLiterals(t *testing.T) {
	sql, args, err := BindNamed(
		"SELECT sale_date::date, ':fake' FROM t WHERE id = :id",
		map[string]interface{}{"id": 7},
		PostgresDialect{},
	)
	if err != nil {
		t.Fatalf("BindNamed failed: %v", err)
	}
	want := "SELECT sale_date::date, ':fake' FROM t WHERE id = $1"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 1 {
		t.Errorf("expected 1 arg, got %v", args)
	}
}

func TestBindNamedUnboundParameter(t *testing.T) {
	_, _, err := BindNamed("SELECT :missing", map[string]interface{}{}, SQLiteDialect{})
	if err == nil {
		t.Fatal("expected error for unbound parameter")
	}
	if errors.CodeOf(err) != errors.InvalidParameter {
		t.Errorf("expected InvalidParameter, got %v", errors.CodeOf(err))
	}
}

func TestExecuteQuery(t *testing.T) {
	db := openTestDB(t)

	rows, err := db.ExecuteQuery(context.Background(),
		"SELECT site_id, SUM(gross_sales) AS total FROM v_llm_salesfact WHERE sale_date >= :start GROUP BY site_id ORDER BY site_id",
		map[string]interface{}{"start": "2025-06-01"},
	)
	if err != nil {
		t.Fatalf("ExecuteQuery failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if got := rows[0]["site_id"]; got != int64(1) {
		t.Errorf("site_id = %v (%T), want 1", got, got)
	}
	if got := rows[0]["total"]; got != 12.25 {
		t.Errorf("total = %v, want 12.25", got)
	}
}

func TestExecuteQueryEmptyResult(t *testing.T) {
	db := openTestDB(t)

	rows, err := db.ExecuteQuery(context.Background(),
		"SELECT * FROM v_llm_salesfact WHERE sale_date > :start",
		map[string]interface{}{"start": "2030-01-01"},
	)
	if err != nil {
		t.Fatalf("ExecuteQuery failed: %v", err)
	}
	if rows == nil {
		t.Error("expected non-nil empty slice")
	}
	if len(rows) != 0 {
		t.Errorf("expected 0 rows, got %d", len(rows))
	}
}

func TestExecuteQueryBadSQL(t *testing.T) {
	db := openTestDB(t)

	_, err := db.ExecuteQuery(context.Background(), "SELECT FROM nowhere", nil)
	if err == nil {
		t.Fatal("expected error for invalid SQL")
	}
	if errors.CodeOf(err) != errors.QueryFailed {
		t.Errorf("expected QueryFailed, got %v", errors.CodeOf(err))
	}
}

func TestWithTxRollback(t *testing.T) {
	db := openTestDB(t)

	wantErr := errors.New(errors.InternalError, "boom")
	err := db.WithTx(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO v_llm_salesfact VALUES ('2025-06-03', 3, 102, 1, 1.00)"); err != nil {
			return err
		}
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("expected propagated error, got %v", err)
	}

	rows, err := db.ExecuteQuery(context.Background(),
		"SELECT * FROM v_llm_salesfact WHERE site_id = :site",
		map[string]interface{}{"site": 3},
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Error("rolled-back insert should not be visible")
	}
}

func TestLoadViews(t *testing.T) {
	views, err := LoadViews("")
	if err != nil {
		t.Fatalf("LoadViews(\"\") failed: %v", err)
	}
	if views.SalesFact != "v_llm_salesfact" {
		t.Errorf("default sales fact = %q", views.SalesFact)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "views.toml")
	if err := os.WriteFile(path, []byte("sales_fact = \"fact_sales\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	views, err = LoadViews(path)
	if err != nil {
		t.Fatalf("LoadViews failed: %v", err)
	}
	if views.SalesFact != "fact_sales" {
		t.Errorf("override sales fact = %q", views.SalesFact)
	}
	if views.Product != "v_llm_product" {
		t.Errorf("unset key should keep default, got %q", views.Product)
	}
}

func TestDialectExpressions(t *testing.T) {
	s := SQLiteDialect{}
	if got := s.HourExpr("ts"); got != "CAST(strftime('%H', ts) AS INTEGER)" {
		t.Errorf("sqlite hour expr = %q", got)
	}
	p := PostgresDialect{}
	if got := p.HourExpr("ts"); got != "EXTRACT(HOUR FROM ts)::int" {
		t.Errorf("postgres hour expr = %q", got)
	}
	if p.Placeholder(3) != "$3" || s.Placeholder(3) != "?" {
		t.Error("placeholder mismatch")
	}
}
