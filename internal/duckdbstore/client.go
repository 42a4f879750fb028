// Package duckdbstore persists the prerequisite topology and learner progress
// in an embedded DuckDB database.
//
// One *Store implements both topologystore.Store and progressstore.Store on
// top of a single-connection pool. DuckDB is embedded and a single
// connection serializes writers, which is what gives Atomically and Update
// their isolation.
package duckdbstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb" // Register DuckDB driver
)

// Config holds tuning options for the database.
type Config struct {
	Threads       int           // Number of threads for DuckDB (0 = default)
	MemoryLimitGB int           // Memory limit in GB (0 = default)
	Timeout       time.Duration // Timeout for opening the database (0 = none)
}

// Option configures the store.
type Option func(*Config)

// WithThreads sets the number of DuckDB threads.
func WithThreads(n int) Option {
	return func(c *Config) {
		c.Threads = n
	}
}

// WithMemoryLimit sets the DuckDB memory limit in GB.
func WithMemoryLimit(gb int) Option {
	return func(c *Config) {
		c.MemoryLimitGB = gb
	}
}

// WithTimeout bounds the time spent opening and migrating the database.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// openDB opens and configures the connection pool.
// DSN examples:
//   - "" or ":memory:" for an in-memory database
//   - "/path/to/learngrid.db" for a file-based database
func openDB(ctx context.Context, dsn string, cfg Config) (*sql.DB, error) {
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	// A single connection keeps an in-memory database alive for the life of
	// the pool and serializes every transaction.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if cfg.Threads > 0 {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA threads=%d", cfg.Threads)); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("setting threads: %w", err)
		}
	}
	if cfg.MemoryLimitGB > 0 {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA memory_limit='%dGB'", cfg.MemoryLimitGB)); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("setting memory limit: %w", err)
		}
	}

	return db, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
