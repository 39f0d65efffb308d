// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

// Package main is the entry point for the Pulse recommendation server.
//
// Pulse serves personalized event recommendations for Montreal: taste
// profiles built from user interactions, music profiles fused from
// Spotify, Apple Music, and manual tags, and explainable scored
// recommendations with a popularity fallback for cold-start users.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered Koanf v2 sources (defaults, YAML file, env)
//  2. Database: DuckDB with the events/interactions/tags schema
//  3. Cache: in-memory TTL recommendation cache
//  4. Recommendation engine: taste profiles, fusion, scoring
//  5. HTTP API: chi router under /api/v1
//  6. Supervisor tree: data layer (cache sweep, profile refresh) and
//     API layer (HTTP server) under suture supervision
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (HTTP_PORT, DUCKDB_PATH, LOG_LEVEL, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Stops background workers and closes the database
//
// # Example Usage
//
// Development with an in-memory database and mock data:
//
//	export DUCKDB_PATH=:memory:
//	export SEED_MOCK_DATA=true
//	export LOG_LEVEL=debug
//	./pulse
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pifoux64/pulse-montreal-events-sub002/internal/api"
	"github.com/pifoux64/pulse-montreal-events-sub002/internal/cache"
	"github.com/pifoux64/pulse-montreal-events-sub002/internal/config"
	"github.com/pifoux64/pulse-montreal-events-sub002/internal/database"
	"github.com/pifoux64/pulse-montreal-events-sub002/internal/logging"
	"github.com/pifoux64/pulse-montreal-events-sub002/internal/recommend"
	"github.com/pifoux64/pulse-montreal-events-sub002/internal/supervisor"
	"github.com/pifoux64/pulse-montreal-events-sub002/internal/supervisor/services"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// Config is not available yet, so this uses the default logger.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("timezone", cfg.Recommend.Timezone).
		Int("port", cfg.Server.Port).
		Msg("Starting Pulse recommendation server")

	db, err := database.New(&cfg.Database, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	recCache := cache.New(cfg.Cache.TTL, logging.Logger())

	engine, err := recommend.NewService(db, recCache, cfg.Recommend, logging.Logger())
	if err != nil {
		closeQuietly(db)
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	handler := api.NewHandler(engine, db, recCache, cfg, logging.Logger())
	router := api.NewRouter(handler, api.NewMiddleware(cfg.API))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// sutureslog needs slog, so bridge the zerolog global through the
	// adapter.
	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		closeQuietly(db)
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(services.NewCacheSweepService(recCache, cfg.Cache.SweepInterval, logging.Logger()))
	if cfg.ProfileRefresh.Enabled {
		tree.AddDataService(services.NewProfileRefreshService(engine, db, services.ProfileRefreshServiceConfig{
			RefreshOnStartup: cfg.ProfileRefresh.OnStartup,
			Interval:         cfg.ProfileRefresh.Interval,
			Window:           cfg.Recommend.Taste.Window,
		}, logging.Logger()))
	} else {
		logging.Info().Msg("Profile refresh disabled (PROFILE_REFRESH_ENABLED=false)")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// closeQuietly closes the database ahead of a fatal exit, since Fatal
// bypasses deferred calls.
func closeQuietly(db *database.DB) {
	if err := db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}
