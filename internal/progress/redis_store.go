package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
	apperrors "github.com/NCRC-org/justdata-sub002/internal/errors"
)

// RedisStore is a Redis-backed SharedStore. Progress state is ephemeral, so
// every key carries a TTL; a finished job's state expires on its own.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RedisStoreOptions configures a RedisStore.
type RedisStoreOptions struct {
	Client redis.UniversalClient
	// Prefix defaults to "progress:".
	Prefix string
	// TTL defaults to 1h.
	TTL time.Duration
}

// NewRedisStore creates a Redis-backed shared progress store.
func NewRedisStore(opts RedisStoreOptions) *RedisStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "progress:"
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStore{client: opts.Client, prefix: prefix, ttl: ttl}
}

var _ SharedStore = (*RedisStore)(nil)

// Save stores one progress transition.
func (s *RedisStore) Save(ctx context.Context, state model.ProgressState) error {
	if state.JobID == "" {
		return errors.New("job ID cannot be empty")
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal progress state: %w", err)
	}
	return s.client.Set(ctx, s.prefix+state.JobID, data, s.ttl).Err()
}

// Load retrieves the last saved state for a job.
func (s *RedisStore) Load(ctx context.Context, jobID string) (model.ProgressState, error) {
	if jobID == "" {
		return model.ProgressState{}, apperrors.NotFound("job ID cannot be empty")
	}

	data, err := s.client.Get(ctx, s.prefix+jobID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.ProgressState{}, apperrors.NotFoundf("no progress for job %s", jobID)
		}
		return model.ProgressState{}, fmt.Errorf("redis get: %w", err)
	}

	var state model.ProgressState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return model.ProgressState{}, fmt.Errorf("unmarshal progress state: %w", err)
	}
	return state, nil
}
