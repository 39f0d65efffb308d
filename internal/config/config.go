// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

// Package config loads and validates the Pulse configuration from layered
// sources: built-in defaults, an optional YAML file, then environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/pifoux64/pulse-montreal-events-sub002/internal/recommend"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file, or ":memory:" for an in-memory store.
	Path         string `koanf:"path"`
	MaxMemory    string `koanf:"max_memory"`
	Threads      int    `koanf:"threads"`
	SeedMockData bool   `koanf:"seed_mock_data"`
}

// APIConfig holds request shaping and middleware settings.
type APIConfig struct {
	DefaultPageSize   int           `koanf:"default_page_size"`
	MaxPageSize       int           `koanf:"max_page_size"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// CacheConfig holds recommendation cache settings.
type CacheConfig struct {
	TTL           time.Duration `koanf:"ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// ProfileRefreshConfig holds the background taste snapshot rebuild settings.
type ProfileRefreshConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Interval  time.Duration `koanf:"interval"`
	OnStartup bool          `koanf:"on_startup"`
}

// Config is the root configuration.
type Config struct {
	Server         ServerConfig         `koanf:"server"`
	Database       DatabaseConfig       `koanf:"database"`
	API            APIConfig            `koanf:"api"`
	Logging        LoggingConfig        `koanf:"logging"`
	Cache          CacheConfig          `koanf:"cache"`
	ProfileRefresh ProfileRefreshConfig `koanf:"profile_refresh"`
	Recommend      recommend.Config     `koanf:"recommend"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8480,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:         "/data/pulse.duckdb",
			MaxMemory:    "1GB",
			Threads:      0, // 0 means runtime.NumCPU()
			SeedMockData: false,
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Cache: CacheConfig{
			TTL:           time.Hour,
			SweepInterval: time.Hour,
		},
		ProfileRefresh: ProfileRefreshConfig{
			Enabled:   true,
			Interval:  6 * time.Hour,
			OnStartup: false,
		},
		Recommend: recommend.DefaultConfig(),
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1,65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.API.DefaultPageSize <= 0 {
		return fmt.Errorf("api.default_page_size must be positive, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size %d below default_page_size %d", c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Cache.SweepInterval <= 0 {
		return fmt.Errorf("cache.sweep_interval must be positive, got %s", c.Cache.SweepInterval)
	}
	if c.ProfileRefresh.Enabled && c.ProfileRefresh.Interval <= 0 {
		return fmt.Errorf("profile_refresh.interval must be positive, got %s", c.ProfileRefresh.Interval)
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}
