package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/NCRC-org/justdata-sub002/internal/data/pgxutil"
	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
	apperrors "github.com/NCRC-org/justdata-sub002/internal/errors"
)

// CacheIndexRepo persists the cache index: one row per (application,
// canonical parameters) pair, pointing at the live job for that key.
type CacheIndexRepo struct {
	DB *sql.DB
}

// NewCacheIndexRepo constructs a CacheIndexRepo.
func NewCacheIndexRepo(db *sql.DB) *CacheIndexRepo {
	return &CacheIndexRepo{DB: db}
}

// Get retrieves a cache entry by key. Returns a NotFound AppError when the
// key has never been cached.
func (r *CacheIndexRepo) Get(ctx context.Context, cacheKey string) (*model.CacheEntry, error) {
	if r == nil || r.DB == nil {
		return nil, ErrRepoNotConfigured
	}
	if cacheKey == "" {
		return nil, ErrCacheKeyRequired
	}

	const query = `
		SELECT cache_key, application, job_id, params_hash, params_json,
			created_at, last_accessed_at, access_count, expires_at
		FROM cache_index
		WHERE cache_key = $1`

	var entry *model.CacheEntry
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, cacheKey)
		if err != nil {
			return err
		}
		defer rows.Close()
		collected, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.CacheEntry])
		if err != nil {
			return err
		}
		entry = &collected
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("get cache_index: %w", err))
	}
	return entry, nil
}

// Put upserts a cache entry. The entry is written only after every section of
// its job has landed; it is the one signal readers trust.
func (r *CacheIndexRepo) Put(ctx context.Context, entry *model.CacheEntry) error {
	if r == nil || r.DB == nil {
		return ErrRepoNotConfigured
	}
	if entry == nil || entry.CacheKey == "" {
		return ErrCacheKeyRequired
	}

	const query = `
		INSERT INTO cache_index
			(cache_key, application, job_id, params_hash, params_json,
			 created_at, last_accessed_at, access_count, expires_at)
		VALUES ($1, $2, $3, $4, $5, now(), now(), 0, $6)
		ON CONFLICT (cache_key)
		DO UPDATE SET
			job_id = EXCLUDED.job_id,
			params_hash = EXCLUDED.params_hash,
			params_json = EXCLUDED.params_json,
			last_accessed_at = now(),
			expires_at = EXCLUDED.expires_at;`

	_, err := r.DB.ExecContext(ctx, query,
		entry.CacheKey, entry.Application, entry.JobID,
		entry.ParamsHash, entry.ParamsJSON, entry.ExpiresAt)
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("put cache_index: %w", err))
	}
	return nil
}

// Touch bumps access bookkeeping on a hit. Best-effort: a failed touch never
// fails the read path.
func (r *CacheIndexRepo) Touch(ctx context.Context, cacheKey string) error {
	if r == nil || r.DB == nil {
		return ErrRepoNotConfigured
	}
	if cacheKey == "" {
		return ErrCacheKeyRequired
	}

	const query = `
		UPDATE cache_index
		SET last_accessed_at = now(), access_count = access_count + 1
		WHERE cache_key = $1`

	if _, err := r.DB.ExecContext(ctx, query, cacheKey); err != nil {
		return apperrors.MapDBError(fmt.Errorf("touch cache_index: %w", err))
	}
	return nil
}

// Delete removes a cache entry. Missing keys are not an error.
func (r *CacheIndexRepo) Delete(ctx context.Context, cacheKey string) error {
	if r == nil || r.DB == nil {
		return ErrRepoNotConfigured
	}
	if cacheKey == "" {
		return ErrCacheKeyRequired
	}

	if _, err := r.DB.ExecContext(ctx, `DELETE FROM cache_index WHERE cache_key = $1`, cacheKey); err != nil {
		return apperrors.MapDBError(fmt.Errorf("delete cache_index: %w", err))
	}
	return nil
}

// DeleteExpired removes entries past their TTL and reports how many were
// evicted. Entries with NULL expires_at are never evicted.
func (r *CacheIndexRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if r == nil || r.DB == nil {
		return 0, ErrRepoNotConfigured
	}

	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM cache_index WHERE expires_at IS NOT NULL AND expires_at < now()`)
	if err != nil {
		return 0, apperrors.MapDBError(fmt.Errorf("delete expired cache_index: %w", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}
