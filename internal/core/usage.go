package core

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
)

// UsageLoggerOptions holds the dependencies for creating a UsageLogger.
type UsageLoggerOptions struct {
	Repo       UsageRepository // Required
	Logger     *slog.Logger    // Optional, defaults to slog.Default()
	BufferSize int             // Optional, defaults to 256
}

// UsageLogger writes usage records through a buffered channel and a single
// writer goroutine, keeping the audit trail off the request critical path.
// Log never blocks: when the buffer is full the record is dropped and
// counted. Write failures are logged and swallowed.
type UsageLogger struct {
	repo   UsageRepository
	logger *slog.Logger

	ch   chan model.UsageRecord
	done chan struct{}

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64

	writeTimeout time.Duration
}

// NewUsageLogger constructs a UsageLogger and starts its writer goroutine.
func NewUsageLogger(opts UsageLoggerOptions) (*UsageLogger, error) {
	if opts.Repo == nil {
		return nil, errors.New("usage repository is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 256
	}

	l := &UsageLogger{
		repo:         opts.Repo,
		logger:       opts.Logger,
		ch:           make(chan model.UsageRecord, opts.BufferSize),
		done:         make(chan struct{}),
		writeTimeout: 5 * time.Second,
	}
	go l.run()
	return l, nil
}

// Log enqueues a record without blocking. Records offered after Close, or
// while the buffer is full, are dropped.
func (l *UsageLogger) Log(record model.UsageRecord) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		l.dropped.Add(1)
		return
	}
	select {
	case l.ch <- record:
	default:
		total := l.dropped.Add(1)
		l.logger.Warn("usage buffer full, dropping record",
			"request_id", record.RequestID, "dropped_total", total)
	}
}

// Dropped reports how many records have been discarded so far.
func (l *UsageLogger) Dropped() int64 {
	return l.dropped.Load()
}

// Close stops accepting records, drains the buffer, and waits for the writer
// to finish.
func (l *UsageLogger) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.closed = true
	close(l.ch)
	l.mu.Unlock()
	<-l.done
}

func (l *UsageLogger) run() {
	defer close(l.done)
	for record := range l.ch {
		ctx, cancel := context.WithTimeout(context.Background(), l.writeTimeout)
		if err := l.repo.Insert(ctx, &record); err != nil {
			l.logger.Warn("usage record write failed",
				"request_id", record.RequestID, "error", err)
		}
		cancel()
	}
}

var _ UsageSink = (*UsageLogger)(nil)
