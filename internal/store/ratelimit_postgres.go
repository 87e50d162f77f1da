package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agentsystems/notary-arweave-bundler/internal/ratelimit"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CounterPostgresStore is a PostgreSQL implementation of ratelimit.CounterStore.
// The table identifier is the rate limit table name; rows have the shape (pk, count, ttl).
type CounterPostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewCounterPostgresStore creates a new PostgreSQL-backed counter store.
func NewCounterPostgresStore(pool *pgxpool.Pool) *CounterPostgresStore {
	return &CounterPostgresStore{pool: pool, now: time.Now}
}

// EnsureTable creates the counter table when it does not exist yet.
func (p *CounterPostgresStore) EnsureTable(ctx context.Context, table string) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			pk    TEXT PRIMARY KEY,
			count BIGINT NOT NULL,
			ttl   BIGINT NOT NULL
		)
	`, quoteTable(table))

	_, err := p.pool.Exec(ctx, query)

	return err
}

// Increment upserts the bucket in a single statement. A row whose ttl has passed is
// treated as absent and restarted from one with the new ttl.
func (p *CounterPostgresStore) Increment(
	ctx context.Context, table, key string, expiresAt time.Time,
) (ratelimit.Counter, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s AS c (pk, count, ttl)
		VALUES ($1, 1, $2)
		ON CONFLICT (pk) DO UPDATE SET
			count = CASE WHEN c.ttl <= $3 THEN 1 ELSE c.count + 1 END,
			ttl   = CASE WHEN c.ttl <= $3 THEN EXCLUDED.ttl ELSE c.ttl END
		RETURNING count, ttl
	`, quoteTable(table))

	var count, ttl int64

	err := p.pool.QueryRow(ctx, query, key, expiresAt.Unix(), p.now().Unix()).Scan(&count, &ttl)
	if err != nil {
		return ratelimit.Counter{}, err
	}

	return ratelimit.Counter{Key: key, Count: count, ExpiresAt: time.Unix(ttl, 0)}, nil
}

// Get reads a bucket record. It returns false when the bucket does not exist.
func (p *CounterPostgresStore) Get(ctx context.Context, table, key string) (ratelimit.Counter, bool, error) {
	query := fmt.Sprintf(`SELECT pk, count, ttl FROM %s WHERE pk = $1`, quoteTable(table))

	var (
		counter ratelimit.Counter
		ttl     int64
	)

	err := p.pool.QueryRow(ctx, query, key).Scan(&counter.Key, &counter.Count, &ttl)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ratelimit.Counter{}, false, nil
		}

		return ratelimit.Counter{}, false, err
	}

	counter.ExpiresAt = time.Unix(ttl, 0)

	return counter, true, nil
}

// PurgeExpired deletes rows whose ttl is at or before now and returns how many were removed.
func (p *CounterPostgresStore) PurgeExpired(ctx context.Context, table string, now time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE ttl <= $1`, quoteTable(table))

	tag, err := p.pool.Exec(ctx, query, now.Unix())
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func quoteTable(table string) string {
	return pgx.Identifier{table}.Sanitize()
}

// Compile-time check.
var _ ratelimit.CounterStore = (*CounterPostgresStore)(nil)
