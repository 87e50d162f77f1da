// Package secrets memoizes the API key read from the secret store.
//
// A successful lookup and a definitive "no value" are cached for the lifetime of
// the Cache. Fetch errors are returned to the caller and never cached, so the next
// call retries.
package secrets

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentsystems/notary-arweave-bundler/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// Fetcher reads a secret by reference. ok is false when the reference resolves to no
// string value, which is not an error.
type Fetcher interface {
	FetchSecret(ctx context.Context, ref string) (value string, ok bool, err error)
}

// Cache resolves the API key at most once per successful outcome.
type Cache struct {
	fetcher Fetcher
	ref     string
	group   singleflight.Group

	mu       sync.RWMutex
	resolved bool
	value    string
	ok       bool
}

type result struct {
	value string
	ok    bool
}

// NewCache creates a cache for the secret at ref. An empty ref means no API key is configured.
func NewCache(fetcher Fetcher, ref string) *Cache {
	return &Cache{fetcher: fetcher, ref: ref}
}

// APIKey returns the cached key, fetching it on first use. Concurrent first callers
// share a single fetch.
func (c *Cache) APIKey(ctx context.Context) (string, bool, error) {
	if r, done := c.cached(); done {
		metrics.RecordSecretFetch(metrics.SecretHit)

		return r.value, r.ok, nil
	}

	if c.ref == "" {
		c.store(result{})
		metrics.RecordSecretFetch(metrics.SecretAbsent)

		return "", false, nil
	}

	v, err, _ := c.group.Do(c.ref, func() (any, error) {
		if r, done := c.cached(); done {
			return r, nil
		}

		value, ok, err := c.fetcher.FetchSecret(ctx, c.ref)
		if err != nil {
			metrics.RecordSecretFetch(metrics.SecretError)

			return nil, fmt.Errorf("fetch api key %q: %w", c.ref, err)
		}

		r := result{value: value, ok: ok && value != ""}
		c.store(r)

		if r.ok {
			metrics.RecordSecretFetch(metrics.SecretFetched)
		} else {
			metrics.RecordSecretFetch(metrics.SecretAbsent)
		}

		return r, nil
	})
	if err != nil {
		return "", false, err
	}

	r, _ := v.(result)

	return r.value, r.ok, nil
}

// Resolved reports whether a terminal outcome has been cached.
func (c *Cache) Resolved() bool {
	_, done := c.cached()

	return done
}

func (c *Cache) cached() (result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return result{value: c.value, ok: c.ok}, c.resolved
}

func (c *Cache) store(r result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resolved {
		return
	}

	c.resolved = true
	c.value = r.value
	c.ok = r.ok
}
