package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/NCRC-org/justdata-sub002/internal/core"
	"github.com/NCRC-org/justdata-sub002/internal/mocks"
)

func TestNewCacheSweeper_RequiresCacheRepo(t *testing.T) {
	t.Parallel()

	_, err := core.NewCacheSweeper(core.SweeperOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CacheIndexRepository")
}

func TestCacheSweeper_SweepsUntilCancelled(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheIndexRepository(ctrl)

	swept := make(chan struct{}, 8)
	cache.EXPECT().DeleteExpired(gomock.Any()).DoAndReturn(
		func(context.Context) (int64, error) {
			swept <- struct{}{}
			return 2, nil
		}).MinTimes(2)

	sweeper, err := core.NewCacheSweeper(core.SweeperOptions{
		Cache:    cache,
		Interval: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sweeper.Run(ctx) }()

	// Wait for the immediate sweep plus at least one ticker-driven sweep.
	for range 2 {
		select {
		case <-swept:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for sweep")
		}
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}

func TestCacheSweeper_KeepsRunningAfterSweepError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheIndexRepository(ctrl)

	swept := make(chan struct{}, 8)
	first := cache.EXPECT().DeleteExpired(gomock.Any()).
		Return(int64(0), errors.New("db down"))
	cache.EXPECT().DeleteExpired(gomock.Any()).DoAndReturn(
		func(context.Context) (int64, error) {
			swept <- struct{}{}
			return 0, nil
		}).MinTimes(1).After(first)

	sweeper, err := core.NewCacheSweeper(core.SweeperOptions{
		Cache:    cache,
		Interval: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sweeper.Run(ctx) }()

	select {
	case <-swept:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not survive a failed sweep")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}
