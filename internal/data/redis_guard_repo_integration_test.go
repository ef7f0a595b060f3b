package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NCRC-org/justdata-sub002/internal/testutil"
)

func TestRedisGuardRepo_Integration_AcquireRelease(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer func() {
		_ = client.Close()
	}()

	repo := NewRedisGuardRepo(client)
	ctx := context.Background()

	acquired, holder, err := repo.Acquire(ctx, "guard-key", "job-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.Empty(t, holder)

	// Second claim on the same key loses and learns the holder.
	acquired, holder, err = repo.Acquire(ctx, "guard-key", "job-2", time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired)
	assert.Equal(t, "job-1", holder)

	require.NoError(t, repo.Release(ctx, "guard-key"))

	acquired, _, err = repo.Acquire(ctx, "guard-key", "job-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestRedisGuardRepo_Integration_LeaseExpires(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer func() {
		_ = client.Close()
	}()

	repo := NewRedisGuardRepo(client)
	ctx := context.Background()

	acquired, _, err := repo.Acquire(ctx, "guard-ttl", "job-1", 50*time.Millisecond)
	require.NoError(t, err)
	require.True(t, acquired)

	time.Sleep(100 * time.Millisecond)

	acquired, _, err = repo.Acquire(ctx, "guard-ttl", "job-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired, "lease should have expired")
}

func TestRedisGuardRepo_Integration_ReleaseUnheldIsNoop(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer func() {
		_ = client.Close()
	}()

	repo := NewRedisGuardRepo(client)
	assert.NoError(t, repo.Release(context.Background(), "never-acquired"))
}
