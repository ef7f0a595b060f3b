package model

import (
	"encoding/json"
	"strings"
)

// SectionType classifies one fragment of an analysis result.
type SectionType string

const (
	// SectionTypeDataTable holds one homogeneous tabular collection.
	SectionTypeDataTable SectionType = "data_table"
	// SectionTypeRawData holds oversized raw payloads; storage may exclude
	// these by policy and recomposition tolerates their absence.
	SectionTypeRawData SectionType = "raw_data"
	// SectionTypeMetadata holds scalar metrics and small structured values.
	SectionTypeMetadata SectionType = "metadata"
	// SectionTypeAISummary holds a model-generated executive summary.
	SectionTypeAISummary SectionType = "ai_summary"
	// SectionTypeAINarrative holds one model-generated narrative text block.
	SectionTypeAINarrative SectionType = "ai_narrative"
)

// Valid returns true if the SectionType is a known type.
func (t SectionType) Valid() bool {
	switch t {
	case SectionTypeDataTable, SectionTypeRawData, SectionTypeMetadata,
		SectionTypeAISummary, SectionTypeAINarrative:
		return true
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler for SectionType.
func (t *SectionType) UnmarshalText(text []byte) error {
	v := SectionType(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return &InvalidEnumError{Kind: "SectionType", Value: string(text)}
	}
	*t = v
	return nil
}

// ResultSection is one named, typed, independently serializable fragment of a
// result. Sections are immutable once written; supersession deletes and
// re-inserts them wholesale.
type ResultSection struct {
	SectionID   string      `db:"section_id"   json:"section_id"`
	JobID       string      `db:"job_id"       json:"job_id"`
	Application Application `db:"application"  json:"application"`
	SectionType SectionType `db:"section_type" json:"section_type"`
	// SectionName is the logical key, unique within a job.
	SectionName string `db:"section_name" json:"section_name"`
	// SectionCategory is a free-form grouping tag used only for read-side
	// re-grouping, never for identity.
	SectionCategory string          `db:"section_category" json:"section_category"`
	SectionData     json.RawMessage `db:"section_data"     json:"section_data"`
	SectionMetadata json.RawMessage `db:"section_metadata" json:"section_metadata,omitempty"`
	DisplayOrder    int             `db:"display_order"    json:"display_order"`
}
