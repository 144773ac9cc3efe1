// Package repository is the transactional CRUD layer described in
// component B: every write is a single transaction, and reads that need
// a coherent graph (ticket detail) eager-load every edge before
// returning, with one query per edge rather than a single round-trip or
// a shared transaction. The numbered-migration bootstrap (a schema_migrations
// tracking table, migrations applied in order at Open time) follows the
// teacher's internal/storage/sqlite migration layout, with
// pgx/pgxpool standing in for database/sql+the teacher's sqlite driver.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool and owns schema migration.
type DB struct {
	Pool *pgxpool.Pool
}

// Open connects to Postgres/PostGIS and applies pending migrations.
func Open(ctx context.Context, dsn string, maxConns int32) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database pool: %w", err)
	}

	db := &DB{Pool: pool}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}

// Close releases the connection pool.
func (d *DB) Close() { d.Pool.Close() }

// WithTx runs fn inside a transaction, committing on success and rolling
// back on any error or panic. Every ticket-service, escalation-service,
// and follow/unfollow write path goes through this helper so that all
// rows touched by one user action land in a single transaction.
func (d *DB) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// migrate applies pending numbered migrations, tracked in a
// schema_migrations table — the same bootstrap shape as the teacher's
// sqlite migration runner, generalized from SQLite PRAGMAs to
// Postgres/PostGIS setup.
func (d *DB) migrate(ctx context.Context) error {
	if _, err := d.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var version int
	if err := d.Pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if _, err := d.Pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		if _, err := d.Pool.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.version); err != nil {
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
	}
	return nil
}
