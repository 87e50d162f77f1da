package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// Retention is how long a bucket record outlives its first write.
	Retention = 2 * time.Hour

	bucketLayout = "2006-01-02T15"
)

// ErrStoreUnavailable is returned when the counter store cannot be reached or
// replies with something unexpected.
var ErrStoreUnavailable = errors.New("rate limit store unavailable")

// Settings configures the hourly limit. A zero Limit or empty Table disables limiting.
type Settings struct {
	Limit int64
	Table string
}

// Enabled reports whether both settings are present.
func (s Settings) Enabled() bool {
	return s.Limit > 0 && s.Table != ""
}

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed bool
	Count   int64
	Limit   int64
}

// Allowed returns a decision that lets the request through.
func Allowed() Decision {
	return Decision{Allowed: true}
}

// Denied returns a decision carrying the observed count and the configured limit.
func Denied(count, limit int64) Decision {
	return Decision{Count: count, Limit: limit}
}

// BucketKey returns the hourly bucket identifier for t, e.g. "2024-05-01T13".
func BucketKey(t time.Time) string {
	return t.UTC().Format(bucketLayout)
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// Limiter enforces an hourly request ceiling shared by every instance through a CounterStore.
type Limiter struct {
	store    CounterStore
	settings Settings
	now      func() time.Time
}

// NewLimiter creates a new hourly fixed window limiter.
func NewLimiter(store CounterStore, settings Settings, opts ...Option) *Limiter {
	l := &Limiter{
		store:    store,
		settings: settings,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Settings returns the limiter configuration.
func (l *Limiter) Settings() Settings {
	return l.settings
}

// CheckRateLimit counts the current request in its hourly bucket and decides whether it
// is within quota. Every call increments the shared counter exactly once, including
// calls that end up denied.
func (l *Limiter) CheckRateLimit(ctx context.Context) (Decision, error) {
	if !l.settings.Enabled() || l.store == nil {
		return Allowed(), nil
	}

	now := l.now()
	key := BucketKey(now)

	counter, err := l.store.Increment(ctx, l.settings.Table, key, now.Add(Retention))
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if counter.Count > l.settings.Limit {
		return Denied(counter.Count, l.settings.Limit), nil
	}

	return Allowed(), nil
}
