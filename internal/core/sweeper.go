package core

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/NCRC-org/justdata-sub002/internal/observability/statsd"
)

// SweeperOptions groups dependencies for CacheSweeper.
type SweeperOptions struct {
	Cache CacheIndexRepository // Required
	// Interval between eviction sweeps; defaults to 1h.
	Interval time.Duration
	Logger   *slog.Logger
	Metrics  statsd.Sink
}

// CacheSweeper periodically evicts cache entries past their TTL. Entries
// without an expiry are never touched; lookups already treat expired entries
// as misses, so the sweeper only reclaims rows.
type CacheSweeper struct {
	cache    CacheIndexRepository
	interval time.Duration
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewCacheSweeper constructs a CacheSweeper.
func NewCacheSweeper(opts SweeperOptions) (*CacheSweeper, error) {
	if opts.Cache == nil {
		return nil, errors.New("CacheIndexRepository is required")
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheSweeper{
		cache:    opts.Cache,
		interval: interval,
		logger:   logger.With("component", "cache_sweeper"),
		metrics:  opts.Metrics,
	}, nil
}

// Run sweeps at the configured interval until the context is cancelled.
// Returns nil on graceful shutdown.
func (s *CacheSweeper) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting cache sweeper", "interval", s.interval)

	// Jitter so multiple instances starting together don't sweep in lockstep.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "cache sweeper stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *CacheSweeper) sweep(ctx context.Context) {
	evicted, err := s.cache.DeleteExpired(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.WarnContext(ctx, "cache sweep failed", "error", err)
		return
	}
	if evicted > 0 {
		s.logger.InfoContext(ctx, "evicted expired cache entries", "count", evicted)
	}
	if s.metrics != nil {
		s.metrics.Count("cache.evicted", evicted, nil)
	}
}

func (s *CacheSweeper) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return
	}
	jitter := time.Duration(int64(binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter))) // #nosec G115 - bounded by maxJitter

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}
