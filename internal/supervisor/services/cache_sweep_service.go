// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

// Package services provides suture service wrappers for the application
// components that need a supervised lifecycle.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper removes expired entries and reports how many were dropped.
// Satisfied by *cache.Cache.
type Sweeper interface {
	Cleanup() int
}

// CacheSweepService periodically evicts expired recommendation cache
// entries so memory is reclaimed even for keys that are never read again.
type CacheSweepService struct {
	cache    Sweeper
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewCacheSweepService creates a sweeper that runs every interval.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheSweepService(cache Sweeper, interval time.Duration, logger zerolog.Logger) *CacheSweepService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CacheSweepService{
		cache:    cache,
		interval: interval,
		logger:   logger.With().Str("service", "cache-sweep").Logger(),
		name:     "cache-sweep",
	}
}

// Serve implements suture.Service.
func (s *CacheSweepService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("cache sweeper starting")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("cache sweeper shutting down")
			return ctx.Err()

		case <-ticker.C:
			removed := s.cache.Cleanup()
			if removed > 0 {
				s.logger.Debug().Int("removed", removed).Msg("swept expired cache entries")
			}
		}
	}
}

// String returns the service name for logging.
func (s *CacheSweepService) String() string {
	return s.name
}
