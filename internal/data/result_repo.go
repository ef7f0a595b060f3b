package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/NCRC-org/justdata-sub002/internal/data/pgxutil"
	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
	apperrors "github.com/NCRC-org/justdata-sub002/internal/errors"
)

// ResultRepo persists job execution records (the result summary table).
type ResultRepo struct {
	DB *sql.DB
}

// NewResultRepo constructs a ResultRepo.
func NewResultRepo(db *sql.DB) *ResultRepo {
	return &ResultRepo{DB: db}
}

// Create inserts a new job record in pending state.
func (r *ResultRepo) Create(ctx context.Context, job *model.JobResult) error {
	if r == nil || r.DB == nil {
		return ErrRepoNotConfigured
	}
	if job == nil || job.JobID == "" {
		return ErrJobIDRequired
	}

	const query = `
		INSERT INTO job_results
			(job_id, application, cache_key, result_summary, sections_summary, status, created_at)
		VALUES ($1, $2, $3, COALESCE($4, '{}'::jsonb), COALESCE($5, '[]'::jsonb), $6, now())`

	status := job.Status
	if status == "" {
		status = model.JobStatusPending
	}
	_, err := r.DB.ExecContext(ctx, query,
		job.JobID, job.Application, job.CacheKey,
		nullableJSON(job.ResultSummary), nullableJSON(job.SectionsSummary), status)
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("insert job_results: %w", err))
	}
	return nil
}

// UpdateStatus transitions a job's lifecycle state. Terminal states are
// never overwritten: completed and failed rows are left untouched.
func (r *ResultRepo) UpdateStatus(ctx context.Context, jobID string, status model.JobStatus, errorMessage *string) error {
	if r == nil || r.DB == nil {
		return ErrRepoNotConfigured
	}
	if jobID == "" {
		return ErrJobIDRequired
	}

	const query = `
		UPDATE job_results
		SET status = $2, error_message = $3
		WHERE job_id = $1 AND status NOT IN ('completed', 'failed')`

	if _, err := r.DB.ExecContext(ctx, query, jobID, status, errorMessage); err != nil {
		return apperrors.MapDBError(fmt.Errorf("update job_results status: %w", err))
	}
	return nil
}

// SetSummaries writes result_summary and sections_summary in one atomic row
// update. Called once per job, before sections start landing.
func (r *ResultRepo) SetSummaries(ctx context.Context, jobID string, resultSummary, sectionsSummary json.RawMessage) error {
	if r == nil || r.DB == nil {
		return ErrRepoNotConfigured
	}
	if jobID == "" {
		return ErrJobIDRequired
	}

	const query = `
		UPDATE job_results
		SET result_summary = $2, sections_summary = $3
		WHERE job_id = $1`

	if _, err := r.DB.ExecContext(ctx, query, jobID, resultSummary, sectionsSummary); err != nil {
		return apperrors.MapDBError(fmt.Errorf("set job_results summaries: %w", err))
	}
	return nil
}

// Get retrieves a job record by id.
func (r *ResultRepo) Get(ctx context.Context, jobID string) (*model.JobResult, error) {
	if r == nil || r.DB == nil {
		return nil, ErrRepoNotConfigured
	}
	if jobID == "" {
		return nil, ErrJobIDRequired
	}

	const query = `
		SELECT job_id, application, cache_key, result_summary, sections_summary,
			status, error_message, created_at
		FROM job_results
		WHERE job_id = $1`

	var job *model.JobResult
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, jobID)
		if err != nil {
			return err
		}
		defer rows.Close()
		collected, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.JobResult])
		if err != nil {
			return err
		}
		job = &collected
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("get job_results: %w", err))
	}
	return job, nil
}

// Delete removes a job record. Last step of the supersession sequence: the
// cache entry goes first so no concurrent reader can follow it into a
// partially-deleted job, then the sections, then this row.
func (r *ResultRepo) Delete(ctx context.Context, jobID string) error {
	if r == nil || r.DB == nil {
		return ErrRepoNotConfigured
	}
	if jobID == "" {
		return ErrJobIDRequired
	}

	if _, err := r.DB.ExecContext(ctx, `DELETE FROM job_results WHERE job_id = $1`, jobID); err != nil {
		return apperrors.MapDBError(fmt.Errorf("delete job_results: %w", err))
	}
	return nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
