package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// SecretRedisStore resolves secret references as plain Redis string keys.
type SecretRedisStore struct {
	client *redis.Client
}

// NewSecretRedisStore creates a new Redis-backed secret store.
func NewSecretRedisStore(client *redis.Client) *SecretRedisStore {
	return &SecretRedisStore{client: client}
}

// FetchSecret returns the string stored under ref. A missing key or an empty value is
// reported as absent, not as an error.
func (r *SecretRedisStore) FetchSecret(ctx context.Context, ref string) (string, bool, error) {
	value, err := r.client.Get(ctx, ref).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		return "", false, err
	}

	return value, value != "", nil
}

// SecretPostgresStore resolves secret references from a (ref, value) table.
type SecretPostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewSecretPostgresStore creates a new PostgreSQL-backed secret store reading from table.
func NewSecretPostgresStore(pool *pgxpool.Pool, table string) *SecretPostgresStore {
	return &SecretPostgresStore{pool: pool, table: table}
}

// FetchSecret returns the value for ref. No row, a NULL value or an empty string are
// reported as absent.
func (p *SecretPostgresStore) FetchSecret(ctx context.Context, ref string) (string, bool, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE ref = $1`, quoteTable(p.table))

	var value *string

	err := p.pool.QueryRow(ctx, query, ref).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}

		return "", false, err
	}

	if value == nil || *value == "" {
		return "", false, nil
	}

	return *value, true, nil
}
