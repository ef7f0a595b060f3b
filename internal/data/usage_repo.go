package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
	apperrors "github.com/NCRC-org/justdata-sub002/internal/errors"
)

// UsageRepo appends to the usage audit trail. The write path is best-effort;
// the caller (UsageLogger) swallows failures off the critical path.
type UsageRepo struct {
	DB *sql.DB
}

// NewUsageRepo constructs a UsageRepo.
func NewUsageRepo(db *sql.DB) *UsageRepo {
	return &UsageRepo{DB: db}
}

// Insert appends one usage record.
func (r *UsageRepo) Insert(ctx context.Context, record *model.UsageRecord) error {
	if r == nil || r.DB == nil {
		return ErrRepoNotConfigured
	}
	if record == nil || record.RequestID == "" {
		return ErrRequestIDRequired
	}

	const query = `
		INSERT INTO usage_log
			(request_id, ts, application, params_json, cache_key, cache_hit,
			 job_id, response_time_ms, costs, error_message, requester_class, remote_addr)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.DB.ExecContext(ctx, query,
		record.RequestID, record.Timestamp, record.Application,
		nullableJSON(record.ParamsJSON), record.CacheKey, record.CacheHit,
		record.JobID, record.ResponseTimeMS, nullableJSON(record.Costs),
		record.ErrorMessage, record.RequesterClass, record.RemoteAddr)
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("insert usage_log: %w", err))
	}
	return nil
}
