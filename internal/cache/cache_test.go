// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pifoux64/pulse-montreal-events-sub002/internal/recommend"
)

func newTestCache(ttl time.Duration) (*Cache, *time.Time) {
	c := New(ttl, zerolog.Nop())
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	c.clock = func() time.Time { return now }
	return c, &now
}

func sampleRecs(id string) []recommend.Recommendation {
	return []recommend.Recommendation{
		{Event: recommend.Event{ID: id, Title: "Show"}, Score: 0.7, Reasons: []string{"You like techno"}},
	}
}

func TestCacheSetGet(t *testing.T) {
	c, _ := newTestCache(time.Hour)

	c.Set("rec:u1", sampleRecs("ev-1"))
	got, ok := c.Get("rec:u1")
	require.True(t, ok)
	assert.Equal(t, "ev-1", got[0].Event.ID)

	_, ok = c.Get("rec:u2")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c, now := newTestCache(time.Hour)
	c.Set("rec:u1", sampleRecs("ev-1"))

	*now = now.Add(59 * time.Minute)
	_, ok := c.Get("rec:u1")
	assert.True(t, ok, "entry must survive inside the TTL")

	*now = now.Add(2 * time.Minute)
	_, ok = c.Get("rec:u1")
	assert.False(t, ok, "entry must expire after the TTL")

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Evictions)
	assert.Equal(t, 0, stats.Keys)
}

func TestCacheDistinctKeys(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	c.Set("rec:u1", sampleRecs("ev-plain"))
	c.Set("rec:u1:g:techno", sampleRecs("ev-techno"))
	c.Set("rec:u1:scope:today", sampleRecs("ev-today"))

	plain, ok := c.Get("rec:u1")
	require.True(t, ok)
	genre, ok := c.Get("rec:u1:g:techno")
	require.True(t, ok)
	scoped, ok := c.Get("rec:u1:scope:today")
	require.True(t, ok)

	assert.NotEqual(t, plain[0].Event.ID, genre[0].Event.ID)
	assert.NotEqual(t, plain[0].Event.ID, scoped[0].Event.ID)
}

func TestCacheSetWithTTL(t *testing.T) {
	c, now := newTestCache(time.Hour)
	c.SetWithTTL("short", sampleRecs("ev-1"), time.Minute)

	*now = now.Add(2 * time.Minute)
	_, ok := c.Get("short")
	assert.False(t, ok)
}

func TestCacheDeleteAndClear(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	c.Set("a", sampleRecs("ev-a"))
	c.Set("b", sampleRecs("ev-b"))

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().Keys)
}

func TestCacheCleanup(t *testing.T) {
	c, now := newTestCache(time.Hour)
	c.Set("fresh", sampleRecs("ev-1"))
	c.SetWithTTL("stale-1", sampleRecs("ev-2"), time.Minute)
	c.SetWithTTL("stale-2", sampleRecs("ev-3"), time.Minute)

	*now = now.Add(30 * time.Minute)
	removed := c.Cleanup()
	assert.Equal(t, 2, removed)

	_, ok := c.Get("fresh")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Stats().Keys)
}

func TestCacheStatsCounters(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	c.Set("k", sampleRecs("ev-1"))

	c.Get("k")
	c.Get("k")
	c.Get("missing")

	stats := c.Stats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Keys)
}

func TestCacheDefaultTTL(t *testing.T) {
	c := New(0, zerolog.Nop())
	assert.Equal(t, DefaultTTL, c.ttl)
}

func TestCacheConcurrentHitsAllCounted(t *testing.T) {
	c := New(time.Hour, zerolog.Nop())
	c.Set("rec:hot", sampleRecs("ev-1"))

	const readers, reads = 8, 200
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < reads; j++ {
				_, ok := c.Get("rec:hot")
				assert.True(t, ok)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(readers*reads), c.Stats().Hits)
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New(time.Hour, zerolog.Nop())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("rec:u%d:%d", n, j%10)
				c.Set(key, sampleRecs("ev"))
				c.Get(key)
				if j%25 == 0 {
					c.Cleanup()
				}
			}
		}(i)
	}
	wg.Wait()
}
