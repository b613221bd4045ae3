/*
cache.go - Computed schedule cache

PURPOSE:
  The stateless schedule endpoint recomputes from scratch on every call.
  Identical requests (same config, same Euribor paths) are served from a
  cache keyed by a fingerprint of the inputs.

  The engine itself knows nothing about caching.

IMPLEMENTATIONS:
  - Redis:  shared cache backed by go-redis
  - Memory: process-local map with expiry, used when no Redis is configured

SEE ALSO:
  - api/handlers.go: handleSchedule
*/
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/warp/mortgage-engine/mortgage"
)

// Cache stores opaque values under string keys.
type Cache interface {
	// Get returns ok=false on a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value for ttl; ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// KeyPrefix namespaces schedule entries.
const KeyPrefix = "schedule:"

// Fingerprint derives the cache key of a schedule computation.
// encoding/json sorts map keys, so equal inputs give equal keys.
func Fingerprint(cfg mortgage.Config, paths mortgage.EuriborPaths) (string, error) {
	payload := struct {
		Config mortgage.Config       `json:"config"`
		Paths  mortgage.EuriborPaths `json:"paths,omitempty"`
	}{cfg, paths}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return fmt.Sprintf("%s%016x", KeyPrefix, xxhash.Sum64(b)), nil
}

// =============================================================================
// MEMORY CACHE
// =============================================================================

type entry struct {
	value     []byte
	storedAt  time.Time
	expiresAt time.Time // zero = never
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// DefaultMaxEntries bounds a Memory cache built by NewMemory.
const DefaultMaxEntries = 1024

// Memory is an in-process Cache. When full, Set drops expired entries and
// then, if still full, the oldest one.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]entry
	maxEntries int
	now        func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries:    make(map[string]entry),
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
	}
}

// WithClock overrides time.Now, for tests.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

// WithMaxEntries sets the capacity. Values below 1 are ignored.
func (m *Memory) WithMaxEntries(n int) *Memory {
	if n > 0 {
		m.maxEntries = n
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if e.expired(m.now()) {
		m.mu.Lock()
		// A concurrent Set may have replaced it since the read lock was released.
		if cur, ok := m.entries[key]; ok && cur.expired(m.now()) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := m.now()
	e := entry{value: append([]byte(nil), value...), storedAt: now}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxEntries {
		m.sweepLocked(now)
		if len(m.entries) >= m.maxEntries {
			m.evictOldestLocked()
		}
	}
	m.entries[key] = e
	return nil
}

func (m *Memory) sweepLocked(now time.Time) {
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
		}
	}
}

func (m *Memory) evictOldestLocked() {
	var (
		oldest string
		first  = true
		at     time.Time
	)
	for k, e := range m.entries {
		if first || e.storedAt.Before(at) || (e.storedAt.Equal(at) && k < oldest) {
			oldest, at, first = k, e.storedAt, false
		}
	}
	if !first {
		delete(m.entries, oldest)
	}
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
