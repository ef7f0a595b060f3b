package section

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
	apperrors "github.com/NCRC-org/justdata-sub002/internal/errors"
)

// BuildRows materializes Result Store rows for a decomposition, assigning
// section ids and owning job id. Rows are immutable once written; on
// supersession they are deleted and re-inserted wholesale.
func BuildRows(app model.Application, jobID string, d *Decomposition) ([]model.ResultSection, error) {
	rows := make([]model.ResultSection, 0, len(d.Sections))
	for _, s := range d.Sections {
		data, err := json.Marshal(s.Data)
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.ErrCodeInternal, "encode section %q", s.Name)
		}

		var metadata json.RawMessage
		if s.Metadata != nil {
			metadata, err = json.Marshal(s.Metadata)
			if err != nil {
				return nil, apperrors.Wrapf(err, apperrors.ErrCodeInternal, "encode section %q metadata", s.Name)
			}
		}

		rows = append(rows, model.ResultSection{
			SectionID:       uuid.NewString(),
			JobID:           jobID,
			Application:     app,
			SectionType:     s.Type,
			SectionName:     s.Name,
			SectionCategory: s.Category,
			SectionData:     data,
			SectionMetadata: metadata,
			DisplayOrder:    s.Order,
		})
	}
	return rows, nil
}

// EncodeSummary marshals a result summary map for the job_results row.
func EncodeSummary(summary map[string]any) (json.RawMessage, error) {
	encoded, err := json.Marshal(summary)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode result summary")
	}
	return encoded, nil
}

// EncodeManifest marshals the sections_summary manifest for the job_results
// row.
func EncodeManifest(entries []model.SectionManifestEntry) (json.RawMessage, error) {
	encoded, err := json.Marshal(entries)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode sections manifest")
	}
	return encoded, nil
}
