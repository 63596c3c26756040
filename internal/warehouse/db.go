// Package warehouse provides read access to the sales warehouse views.
// It speaks to either an embedded SQLite file or a PostgreSQL server,
// hiding the driver differences behind a named-parameter query API.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // Pure Go SQLite driver

	"github.com/bbeeken/PDIMCPServer/internal/config"
	"github.com/bbeeken/PDIMCPServer/internal/logging"
)

// DB represents a warehouse connection with query helpers
type DB struct {
	conn    *sql.DB
	logger  *logging.Logger
	dialect Dialect
	views   Views
}

// Open connects to the warehouse configured in cfg and verifies the
// connection with a ping. Pool sizing follows the configured pool_size
// plus max_overflow burst headroom.
func Open(cfg *config.Config, logger *logging.Logger) (*DB, error) {
	var (
		driverName string
		dialect    Dialect
	)
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		driverName = "pgx"
		dialect = PostgresDialect{}
	default:
		driverName = "sqlite"
		dialect = SQLiteDialect{}
	}

	conn, err := sql.Open(driverName, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse connection: %w", err)
	}

	conn.SetMaxOpenConns(cfg.Database.PoolSize + cfg.Database.MaxOverflow)
	conn.SetMaxIdleConns(cfg.Database.PoolSize)
	conn.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to reach warehouse: %w", err)
	}

	views, err := LoadViews(cfg.Database.ViewsFile)
	if err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("Connected to warehouse", map[string]interface{}{
		"driver":    driverName,
		"pool_size": cfg.Database.PoolSize,
	})

	return &DB{
		conn:    conn,
		logger:  logger,
		dialect: dialect,
		views:   views,
	}, nil
}

// NewFromConn wraps an existing connection. Used by tests and tooling
// that manage their own sql.DB lifecycle.
func NewFromConn(conn *sql.DB, dialect Dialect, logger *logging.Logger) *DB {
	return &DB{
		conn:    conn,
		logger:  logger,
		dialect: dialect,
		views:   DefaultViews(),
	}
}

// Close closes the warehouse connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Conn returns the underlying sql.DB connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Dialect returns the SQL dialect for the active driver
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Views returns the configured warehouse view names
func (db *DB) Views() Views {
	return db.views
}

// SetViews overrides the view names. Called during startup when a
// views file is configured; not safe after queries begin.
func (db *DB) SetViews(v Views) {
	db.views = v
}

// WithTx executes a function within a transaction
// If the function returns an error, the transaction is rolled back
// Otherwise, the transaction is committed
func (db *DB) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-throw panic after rollback
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error("failed to rollback transaction", map[string]interface{}{
				"error":          err.Error(),
				"rollback_error": rbErr.Error(),
			})
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
