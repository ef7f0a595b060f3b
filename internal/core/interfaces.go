package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the orchestration layer and the data
// layer. Service implementations should depend on these interfaces, not concrete
// implementations. Mocks are generated in internal/mocks.

// CacheIndexRepository defines the interface for cache index entries.
// An entry maps a cache key (application + canonical parameter hash) to the
// job that produced the cached result.
type CacheIndexRepository interface {
	Get(ctx context.Context, cacheKey string) (*model.CacheEntry, error)
	Put(ctx context.Context, entry *model.CacheEntry) error
	Touch(ctx context.Context, cacheKey string) error
	Delete(ctx context.Context, cacheKey string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// JobResultRepository defines the interface for job execution records.
type JobResultRepository interface {
	Create(ctx context.Context, job *model.JobResult) error
	UpdateStatus(ctx context.Context, jobID string, status model.JobStatus, errorMessage *string) error
	SetSummaries(ctx context.Context, jobID string, resultSummary, sectionsSummary json.RawMessage) error
	Get(ctx context.Context, jobID string) (*model.JobResult, error)
	Delete(ctx context.Context, jobID string) error
}

// SectionRepository defines the interface for persisted result sections.
type SectionRepository interface {
	InsertBatch(ctx context.Context, sections []model.ResultSection) error
	ListByJobID(ctx context.Context, jobID string) ([]model.ResultSection, error)
	CountByJobID(ctx context.Context, jobID string) (int, error)
	DeleteByJobID(ctx context.Context, jobID string) error
}

// UsageRepository defines the interface for the append-only usage audit trail.
type UsageRepository interface {
	Insert(ctx context.Context, record *model.UsageRecord) error
}

// InflightGuard is a cross-instance lease keyed by cache key, naming the job
// currently computing that key. Acquire reports (acquired, holder): when the
// lease is already held, holder carries the owning job id so callers can join
// the running job instead of starting a duplicate. The guard is best-effort
// deduplication, not a lock.
type InflightGuard interface {
	Acquire(ctx context.Context, cacheKey, jobID string, ttl time.Duration) (bool, string, error)
	Release(ctx context.Context, cacheKey string) error
}

// ProgressReporter receives live job progress. Complete is terminal; updates
// after it must be ignored by implementations.
type ProgressReporter interface {
	Start(jobID, step string)
	Update(jobID, step string, percent int, message string)
	Complete(jobID string, success bool, errMsg string)
}

// UsageSink accepts usage records off the request critical path. Log must
// never block.
type UsageSink interface {
	Log(record model.UsageRecord)
}
