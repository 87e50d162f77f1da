package ratelimit

import (
	"context"
	"time"
)

// Counter is the persisted state of one hourly bucket.
type Counter struct {
	Key       string
	Count     int64
	ExpiresAt time.Time
}

// Expired reports whether the counter is logically absent at the given time.
func (c Counter) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// CounterStore defines the interface for the shared counter storage.
type CounterStore interface {
	// Increment atomically adds one to the counter stored under key in table and
	// returns the post-increment record. expiresAt is only applied when the record
	// is created; later increments must leave it untouched.
	Increment(ctx context.Context, table, key string, expiresAt time.Time) (Counter, error)
}
