// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

// Package database is the DuckDB-backed store for events, interactions,
// interest tags, favorites and taste profile snapshots. It implements
// recommend.DataProvider.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/pifoux64/pulse-montreal-events-sub002/internal/config"
)

// queryTimeout bounds individual read and write queries.
const queryTimeout = 30 * time.Second

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn   *sql.DB
	cfg    *config.DatabaseConfig
	logger zerolog.Logger
}

// New opens the database, tunes the connection and creates the schema.
func New(cfg *config.DatabaseConfig, logger zerolog.Logger) (*DB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	if cfg.Path != ":memory:" {
		dir := filepath.Dir(cfg.Path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory %s: %w", dir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, threads, cfg.MaxMemory)
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// DuckDB is embedded, a small pool is enough and avoids write contention.
	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(0)

	db := &DB{
		conn:   conn,
		cfg:    cfg,
		logger: logger.With().Str("component", "database").Logger(),
	}

	if err := db.createTables(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	if cfg.SeedMockData {
		if err := db.SeedMockData(context.Background()); err != nil {
			closeQuietly(conn)
			return nil, fmt.Errorf("seed mock data: %w", err)
		}
		db.logger.Info().Msg("mock data seeded")
	}

	db.logger.Info().Str("path", cfg.Path).Int("threads", threads).Msg("database ready")
	return db, nil
}

// Conn exposes the underlying pool for callers that need raw SQL access.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close shuts the connection pool down.
func (db *DB) Close() error {
	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// queryCtx derives a context bounded by the per-query timeout.
func queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

func closeQuietly(conn *sql.DB) {
	_ = conn.Close()
}
