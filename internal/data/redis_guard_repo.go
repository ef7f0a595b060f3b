package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGuardRepo is the cross-instance in-flight guard: a lease per cache
// key naming the job currently computing it. The guard is best-effort
// deduplication, not a correctness lock — a lost race means one redundant
// execution resolved by supersession rules, never corrupted data.
type RedisGuardRepo struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisGuardRepo creates a RedisGuardRepo with the given Redis client.
func NewRedisGuardRepo(client redis.UniversalClient) *RedisGuardRepo {
	return &RedisGuardRepo{client: client, prefix: "inflight:"}
}

// Acquire atomically claims the lease for a cache key on behalf of jobID.
// Returns (true, "") when claimed, or (false, holder) naming the job that
// already holds the lease.
func (r *RedisGuardRepo) Acquire(ctx context.Context, cacheKey, jobID string, ttl time.Duration) (bool, string, error) {
	if cacheKey == "" {
		return false, "", errors.New("cache key cannot be empty")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}

	key := r.prefix + cacheKey
	// SET NX with TTL is atomic; SETNX plus a separate EXPIRE is not.
	cmd := r.client.SetArgs(ctx, key, jobID, redis.SetArgs{Mode: "NX", TTL: ttl})
	if _, err := cmd.Result(); err != nil {
		// NX not met returns a nil reply: the lease is already held.
		if errors.Is(err, redis.Nil) {
			holder, getErr := r.client.Get(ctx, key).Result()
			if getErr != nil && !errors.Is(getErr, redis.Nil) {
				return false, "", fmt.Errorf("redis get lease holder: %w", getErr)
			}
			return false, holder, nil
		}
		return false, "", fmt.Errorf("redis SET NX: %w", err)
	}
	return true, "", nil
}

// Release drops the lease for a cache key. Releasing an unheld lease is not
// an error.
func (r *RedisGuardRepo) Release(ctx context.Context, cacheKey string) error {
	if cacheKey == "" {
		return errors.New("cache key cannot be empty")
	}
	if err := r.client.Del(ctx, r.prefix+cacheKey).Err(); err != nil {
		return fmt.Errorf("redis del lease: %w", err)
	}
	return nil
}

// Health checks the guard connection.
func (r *RedisGuardRepo) Health(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
