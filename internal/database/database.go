package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/buoywatch/backend/internal/config"
)

// Connect opens a pooled connection to Postgres via the pgx stdlib driver.
// Pool sizing mirrors the configured base pool plus overflow; connections
// are recycled hourly so long-lived processes don't hold stale sockets.
func Connect(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("database connect: %w", err)
	}

	db.SetMaxOpenConns(cfg.DatabasePoolSize + cfg.DatabaseOverflow)
	db.SetMaxIdleConns(cfg.DatabasePoolSize)
	db.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// WithinTx runs fn inside a single transaction: commit on clean return,
// rollback and re-raise on any error. This is the unit of work used by both
// request handlers and background jobs.
func WithinTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("rollback failed")
		}
		log.Error().Err(err).Msg("database session error")
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Ping probes connectivity with a trivial query.
func Ping(ctx context.Context, db *sqlx.DB) error {
	var one int
	if err := db.GetContext(ctx, &one, `SELECT 1`); err != nil {
		log.Error().Err(err).Msg("database health check failed")
		return err
	}
	return nil
}

// PoolStats is a snapshot of the connection pool for diagnostics.
type PoolStats struct {
	MaxOpen   int   `json:"max_open"`
	Open      int   `json:"open"`
	InUse     int   `json:"in_use"`
	Idle      int   `json:"idle"`
	WaitCount int64 `json:"wait_count"`
}

func Stats(db *sqlx.DB) PoolStats {
	s := db.Stats()
	return PoolStats{
		MaxOpen:   s.MaxOpenConnections,
		Open:      s.OpenConnections,
		InUse:     s.InUse,
		Idle:      s.Idle,
		WaitCount: s.WaitCount,
	}
}

// ActiveConnections asks Postgres itself how many sessions are active.
// Best effort: failures are logged and reported as -1, never propagated.
func ActiveConnections(ctx context.Context, db *sqlx.DB) int {
	var count int
	err := db.GetContext(ctx, &count,
		`SELECT count(*) FROM pg_stat_activity WHERE state = 'active'`)
	if err != nil {
		log.Error().Err(err).Msg("failed to count active connections")
		return -1
	}
	return count
}
