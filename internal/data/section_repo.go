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

// SectionRepo persists result sections. Rows are immutable once written; a
// superseded job's sections are deleted and re-inserted wholesale.
type SectionRepo struct {
	DB *sql.DB
}

// NewSectionRepo constructs a SectionRepo.
func NewSectionRepo(db *sql.DB) *SectionRepo {
	return &SectionRepo{DB: db}
}

// InsertBatch writes all sections for one job in a single batched
// transaction. The batch keeps the multi-row insert atomic within this one
// table; cross-table ordering is the orchestrator's contract.
func (r *SectionRepo) InsertBatch(ctx context.Context, sections []model.ResultSection) error {
	if r == nil || r.DB == nil {
		return ErrRepoNotConfigured
	}
	if len(sections) == 0 {
		return nil
	}

	const query = `
		INSERT INTO result_sections
			(section_id, job_id, application, section_type, section_name,
			 section_category, section_data, section_metadata, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, s := range sections {
			batch.Queue(query,
				s.SectionID, s.JobID, s.Application, s.SectionType, s.SectionName,
				s.SectionCategory, []byte(s.SectionData), nullableJSON(s.SectionMetadata), s.DisplayOrder)
		}
		results := tx.SendBatch(ctx, batch)
		defer func() {
			_ = results.Close()
		}()
		for range sections {
			if _, execErr := results.Exec(); execErr != nil {
				return execErr
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("insert result_sections: %w", err))
	}
	return nil
}

// ListByJobID retrieves all sections for a job in display order.
func (r *SectionRepo) ListByJobID(ctx context.Context, jobID string) ([]model.ResultSection, error) {
	if r == nil || r.DB == nil {
		return nil, ErrRepoNotConfigured
	}
	if jobID == "" {
		return nil, ErrJobIDRequired
	}

	const query = `
		SELECT section_id, job_id, application, section_type, section_name,
			section_category, section_data, section_metadata, display_order
		FROM result_sections
		WHERE job_id = $1
		ORDER BY display_order ASC, section_name ASC`

	var sections []model.ResultSection
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, jobID)
		if err != nil {
			return err
		}
		defer rows.Close()
		collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.ResultSection])
		if err != nil {
			return err
		}
		sections = collected
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list result_sections: %w", err))
	}
	return sections, nil
}

// CountByJobID reports how many sections have landed for a job, for cheap
// completeness checks without deserializing payloads.
func (r *SectionRepo) CountByJobID(ctx context.Context, jobID string) (int, error) {
	if r == nil || r.DB == nil {
		return 0, ErrRepoNotConfigured
	}
	if jobID == "" {
		return 0, ErrJobIDRequired
	}

	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM result_sections WHERE job_id = $1`, jobID).Scan(&count)
	if err != nil {
		return 0, apperrors.MapDBError(fmt.Errorf("count result_sections: %w", err))
	}
	return count, nil
}

// DeleteByJobID removes every section belonging to a job. During supersession
// the cache entry is already gone by this point, so no reader can reach the
// sections while they disappear.
func (r *SectionRepo) DeleteByJobID(ctx context.Context, jobID string) error {
	if r == nil || r.DB == nil {
		return ErrRepoNotConfigured
	}
	if jobID == "" {
		return ErrJobIDRequired
	}

	if _, err := r.DB.ExecContext(ctx, `DELETE FROM result_sections WHERE job_id = $1`, jobID); err != nil {
		return apperrors.MapDBError(fmt.Errorf("delete result_sections: %w", err))
	}
	return nil
}
