// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

// Package cache provides the process-local TTL cache for computed
// recommendation lists. Expiry is lazy on read; a supervised sweep calls
// Cleanup periodically to reclaim entries nobody reads again.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/pifoux64/pulse-montreal-events-sub002/internal/metrics"
	"github.com/pifoux64/pulse-montreal-events-sub002/internal/recommend"
)

// DefaultTTL is the entry lifetime when none is configured.
const DefaultTTL = time.Hour

type entry struct {
	recs      []recommend.Recommendation
	expiresAt time.Time
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Keys      int    `json:"keys"`
}

// Cache is a TTL map of recommendation lists. Safe for concurrent use.
// Counters are atomic so the hit path never takes the write lock.
type Cache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	ttl       time.Duration
	clock     func() time.Time
	logger    zerolog.Logger
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache with the given TTL. A non-positive TTL falls back to
// DefaultTTL.
func New(ttl time.Duration, logger zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		clock:   time.Now,
		logger:  logger.With().Str("component", "cache").Logger(),
	}
}

// Get returns the cached list for key. An expired entry is removed and
// counted as a miss.
func (c *Cache) Get(key string) ([]recommend.Recommendation, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	now := c.clock()
	if ok && now.Before(e.expiresAt) {
		c.hits.Add(1)
		metrics.CacheHitsTotal.Inc()
		return e.recs, true
	}

	if ok {
		c.mu.Lock()
		// Re-check under the write lock in case a concurrent Set refreshed it.
		if cur, still := c.entries[key]; still && !now.Before(cur.expiresAt) {
			delete(c.entries, key)
			c.evictions.Add(1)
			metrics.CacheEvictionsTotal.Inc()
		}
		c.mu.Unlock()
	}
	c.misses.Add(1)
	metrics.CacheMissesTotal.Inc()
	return nil, false
}

// Set stores recs under key with the default TTL.
func (c *Cache) Set(key string, recs []recommend.Recommendation) {
	c.SetWithTTL(key, recs, c.ttl)
}

// SetWithTTL stores recs under key with an explicit lifetime.
func (c *Cache) SetWithTTL(key string, recs []recommend.Recommendation, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	expires := c.clock().Add(ttl)
	c.mu.Lock()
	c.entries[key] = entry{recs: recs, expiresAt: expires}
	size := len(c.entries)
	c.mu.Unlock()
	metrics.CacheEntries.Set(float64(size))
}

// Delete removes a single entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	size := len(c.entries)
	c.mu.Unlock()
	metrics.CacheEntries.Set(float64(size))
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	metrics.CacheEntries.Set(0)
}

// Cleanup removes all expired entries and returns how many were dropped.
func (c *Cache) Cleanup() int {
	now := c.clock()
	c.mu.Lock()
	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	c.evictions.Add(uint64(removed))
	size := len(c.entries)
	c.mu.Unlock()

	metrics.CacheEntries.Set(float64(size))
	if removed > 0 {
		metrics.CacheEvictionsTotal.Add(float64(removed))
		c.logger.Debug().Int("removed", removed).Int("remaining", size).Msg("cache sweep completed")
	}
	return removed
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	keys := len(c.entries)
	c.mu.RUnlock()
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Keys:      keys,
	}
}

var _ recommend.Cache = (*Cache)(nil)
