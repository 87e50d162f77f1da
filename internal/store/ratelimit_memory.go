package store

import (
	"context"
	"sync"
	"time"

	"github.com/agentsystems/notary-arweave-bundler/internal/ratelimit"
)

// CounterMemoryStore is an in-memory implementation of ratelimit.CounterStore.
type CounterMemoryStore struct {
	mu       sync.Mutex
	counters map[string]ratelimit.Counter // table + "|" + key -> counter
	now      func() time.Time
}

// NewCounterMemoryStore creates a new in-memory counter store.
func NewCounterMemoryStore() *CounterMemoryStore {
	return &CounterMemoryStore{
		counters: make(map[string]ratelimit.Counter),
		now:      time.Now,
	}
}

// NewCounterMemoryStoreWithClock creates a counter store that judges expiry with the given clock.
func NewCounterMemoryStoreWithClock(now func() time.Time) *CounterMemoryStore {
	s := NewCounterMemoryStore()
	s.now = now

	return s
}

func (s *CounterMemoryStore) Increment(
	_ context.Context, table, key string, expiresAt time.Time,
) (ratelimit.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := table + "|" + key

	counter, ok := s.counters[id]
	if !ok || counter.Expired(s.now()) {
		counter = ratelimit.Counter{Key: key, ExpiresAt: time.Unix(expiresAt.Unix(), 0)}
	}

	counter.Count++
	s.counters[id] = counter

	return counter, nil
}

// Get returns the stored record without touching it, including expired ones.
func (s *CounterMemoryStore) Get(_ context.Context, table, key string) (ratelimit.Counter, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counter, ok := s.counters[table+"|"+key]

	return counter, ok
}

// Compile-time check.
var _ ratelimit.CounterStore = (*CounterMemoryStore)(nil)
