package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/agentsystems/notary-arweave-bundler/internal/ratelimit"
	"github.com/redis/go-redis/v9"
)

var errUnexpectedReply = errors.New("unexpected reply from counter store")

// incrementScript bumps the count and sets pk/ttl only on the first write of the bucket.
// KEYS[1] = bucket hash, ARGV[1] = expiry (epoch seconds), ARGV[2] = bucket key.
var incrementScript = redis.NewScript(`
local count = redis.call('HINCRBY', KEYS[1], 'count', 1)
if redis.call('HSETNX', KEYS[1], 'ttl', ARGV[1]) == 1 then
	redis.call('HSET', KEYS[1], 'pk', ARGV[2])
	redis.call('EXPIREAT', KEYS[1], ARGV[1])
end
return {count, tonumber(redis.call('HGET', KEYS[1], 'ttl'))}
`)

// CounterRedisStore is a Redis implementation of ratelimit.CounterStore.
// Each bucket is a hash {pk, count, ttl} stored under "<table>:<key>" and physically
// expired by Redis at ttl.
type CounterRedisStore struct {
	client *redis.Client
}

// NewCounterRedisStore creates a new Redis-backed counter store.
func NewCounterRedisStore(client *redis.Client) *CounterRedisStore {
	return &CounterRedisStore{client: client}
}

func (r *CounterRedisStore) Increment(
	ctx context.Context, table, key string, expiresAt time.Time,
) (ratelimit.Counter, error) {
	result, err := incrementScript.Run(ctx, r.client, []string{r.redisKey(table, key)},
		expiresAt.Unix(), key,
	).Int64Slice()
	if err != nil {
		return ratelimit.Counter{}, err
	}

	if len(result) != 2 {
		return ratelimit.Counter{}, fmt.Errorf("%w: %v", errUnexpectedReply, result)
	}

	return ratelimit.Counter{
		Key:       key,
		Count:     result[0],
		ExpiresAt: time.Unix(result[1], 0),
	}, nil
}

// Get reads a bucket record. It returns false when the bucket does not exist.
func (r *CounterRedisStore) Get(ctx context.Context, table, key string) (ratelimit.Counter, bool, error) {
	fields, err := r.client.HGetAll(ctx, r.redisKey(table, key)).Result()
	if err != nil {
		return ratelimit.Counter{}, false, err
	}

	if len(fields) == 0 {
		return ratelimit.Counter{}, false, nil
	}

	count, err := strconv.ParseInt(fields["count"], 10, 64)
	if err != nil {
		return ratelimit.Counter{}, false, fmt.Errorf("%w: count %q", errUnexpectedReply, fields["count"])
	}

	ttl, err := strconv.ParseInt(fields["ttl"], 10, 64)
	if err != nil {
		return ratelimit.Counter{}, false, fmt.Errorf("%w: ttl %q", errUnexpectedReply, fields["ttl"])
	}

	return ratelimit.Counter{Key: fields["pk"], Count: count, ExpiresAt: time.Unix(ttl, 0)}, true, nil
}

func (r *CounterRedisStore) redisKey(table, key string) string {
	return table + ":" + key
}

// Compile-time check.
var _ ratelimit.CounterStore = (*CounterRedisStore)(nil)
