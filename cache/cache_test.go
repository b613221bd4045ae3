package cache_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/mortgage-engine/cache"
	"github.com/warp/mortgage-engine/mortgage"
)

func config(rate float64) mortgage.Config {
	return mortgage.Config{
		Principal: 100_000,
		Months:    120,
		Periods: []mortgage.InterestPeriod{
			{StartMonth: 1, EndMonth: 120, AnnualInterestRate: rate},
		},
	}
}

func TestFingerprint(t *testing.T) {
	a, err := cache.Fingerprint(config(3), nil)
	require.NoError(t, err)
	b, err := cache.Fingerprint(config(3), nil)
	require.NoError(t, err)
	c, err := cache.Fingerprint(config(3.01), nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, cache.KeyPrefix))
	assert.Len(t, a, len(cache.KeyPrefix)+16)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestFingerprint_PathsMatter(t *testing.T) {
	cfg := config(3)
	p1 := mortgage.EuriborPaths{0: {2, 2.1}, 1: {3}}
	p2 := mortgage.EuriborPaths{1: {3}, 0: {2, 2.1}}
	p3 := mortgage.EuriborPaths{0: {2, 2.2}, 1: {3}}

	k1, err := cache.Fingerprint(cfg, p1)
	require.NoError(t, err)
	k2, err := cache.Fingerprint(cfg, p2)
	require.NoError(t, err)
	k3, err := cache.Fingerprint(cfg, p3)
	require.NoError(t, err)

	assert.Equal(t, k1, k2, "map order does not matter")
	assert.NotEqual(t, k1, k3)
}

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte("rows")
	require.NoError(t, c.Set(ctx, "k", value, 0))
	value[0] = 'X'

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "rows", string(got), "stored value is a copy")
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := cache.NewMemory().WithClock(func() time.Time { return now })

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	now = now.Add(59 * time.Second)
	_, ok, _ := c.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemory_SetSweepsExpiredEntriesWhenFull(t *testing.T) {
	// GIVEN: a full cache whose entries have all expired
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := cache.NewMemory().WithClock(func() time.Time { return now }).WithMaxEntries(3)
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, []byte(k), time.Minute))
	}
	now = now.Add(2 * time.Minute)

	// WHEN: a new key is stored without reading the old ones again
	require.NoError(t, c.Set(ctx, "d", []byte("d"), time.Minute))

	// THEN: the expired keys are gone
	assert.Equal(t, 1, c.Len())
	_, ok, _ := c.Get(ctx, "d")
	assert.True(t, ok)
}

func TestMemory_EvictsOldestWhenFull(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := cache.NewMemory().WithClock(func() time.Time { return now }).WithMaxEntries(2)

	require.NoError(t, c.Set(ctx, "a", []byte("a"), 0))
	now = now.Add(time.Second)
	require.NoError(t, c.Set(ctx, "b", []byte("b"), 0))
	now = now.Add(time.Second)
	require.NoError(t, c.Set(ctx, "c", []byte("c"), 0))

	assert.Equal(t, 2, c.Len())
	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok, "oldest entry evicted")
	for _, k := range []string{"b", "c"} {
		_, ok, _ := c.Get(ctx, k)
		assert.True(t, ok, k)
	}

	// Overwriting an existing key never evicts.
	require.NoError(t, c.Set(ctx, "b", []byte("b2"), 0))
	assert.Equal(t, 2, c.Len())
}

func TestMemory_ExpiredReadKeepsFreshReplacement(t *testing.T) {
	// GIVEN: an expired entry that is refreshed between the read and the delete
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var c *cache.Memory
	refreshed := false
	c = cache.NewMemory().WithClock(func() time.Time {
		if !refreshed && now.After(time.Date(2025, 1, 1, 0, 1, 0, 0, time.UTC)) {
			refreshed = true
			now = now.Add(time.Second)
			c.Set(ctx, "k", []byte("fresh"), time.Hour)
		}
		return now
	})
	require.NoError(t, c.Set(ctx, "k", []byte("stale"), time.Minute))
	now = now.Add(2 * time.Minute)

	// WHEN: the stale value is read
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// THEN: the refreshed value survives
	got, ok, _ := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "fresh", string(got))
}

func TestRedis_UnreachableServerReportsError(t *testing.T) {
	r := cache.NewRedisWithOptions(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer r.Close()

	ctx := context.Background()
	_, ok, err := r.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, r.Set(ctx, "k", []byte("v"), time.Second))
	assert.Error(t, r.Ping(ctx))
}
