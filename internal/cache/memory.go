package cache

import (
	"context"
	"encoding/json"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/Akshatb2006/Linkedin-Insights/internal/insights"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// Memory implements insights.Cache with an in-process map. It is the
// fallback when Redis is unreachable and the default in tests. Values
// round-trip through JSON so both backends behave identically.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	clock   insights.Clock
	hits    int64
	misses  int64
}

// NewMemory creates an empty in-process cache.
func NewMemory(clock insights.Clock) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		clock:   clock,
	}
}

// Get loads a key into dest and reports whether it was present and
// unexpired. Expired entries are dropped on access.
func (m *Memory) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok || m.clock.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		m.misses++
		return false, nil
	}
	if err := json.Unmarshal(entry.payload, dest); err != nil {
		delete(m.entries, key)
		m.misses++
		return false, nil
	}
	m.hits++
	return true, nil
}

// Set stores value under key for ttl.
func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{payload: payload, expiresAt: m.clock.Now().Add(ttl)}
	return nil
}

// Delete removes a single key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// DeletePattern removes all keys matching the glob pattern.
func (m *Memory) DeletePattern(_ context.Context, pattern string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for key := range m.entries {
		if matchPattern(pattern, key) {
			delete(m.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

// Stats reports backend identity, live entry count, and hit counters.
func (m *Memory) Stats(_ context.Context) (insights.CacheStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	entries := 0
	for _, entry := range m.entries {
		if now.Before(entry.expiresAt) {
			entries++
		}
	}
	return insights.CacheStats{
		Backend: "memory",
		Enabled: true,
		Entries: entries,
		Hits:    m.hits,
		Misses:  m.misses,
	}, nil
}

// Close drops all entries.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
	return nil
}

// matchPattern approximates Redis glob matching well enough for the
// "prefix:*" patterns this service uses.
func matchPattern(pattern, key string) bool {
	if strings.HasSuffix(pattern, "*") && !strings.ContainsAny(strings.TrimSuffix(pattern, "*"), "*?[") {
		return strings.HasPrefix(key, strings.TrimSuffix(pattern, "*"))
	}
	ok, err := path.Match(pattern, key)
	return err == nil && ok
}
