// Package model defines the core data types shared across the JustData
// analysis cache and job orchestration system.
package model

import (
	"encoding/json"
	"strings"
	"time"
)

// JobStatus represents the lifecycle state of one analysis execution.
type JobStatus string

const (
	// JobStatusPending indicates a job has been submitted but not started.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the analysis function is executing.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the analysis finished and all sections landed.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the analysis raised or returned a failure.
	JobStatusFailed JobStatus = "failed"
)

// Valid returns true if the JobStatus is a known state.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// Terminal returns true once a job can no longer change state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// UnmarshalText implements encoding.TextUnmarshaler for JobStatus.
func (s *JobStatus) UnmarshalText(text []byte) error {
	v := JobStatus(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return &InvalidEnumError{Kind: "JobStatus", Value: string(text)}
	}
	*s = v
	return nil
}

// JobResult is one concrete execution of an analysis, identified by JobID.
// ResultSummary is the small always-present metadata blob; SectionsSummary is
// the ordered manifest of section names/types/display order, written in the
// same row insert so readers can inspect the manifest before sections land.
type JobResult struct {
	JobID           string          `db:"job_id"           json:"job_id"`
	Application     Application     `db:"application"      json:"application"`
	CacheKey        string          `db:"cache_key"        json:"cache_key"`
	ResultSummary   json.RawMessage `db:"result_summary"   json:"result_summary"`
	SectionsSummary json.RawMessage `db:"sections_summary" json:"sections_summary"`
	Status          JobStatus       `db:"status"           json:"status"`
	ErrorMessage    *string         `db:"error_message"    json:"error_message,omitempty"`
	CreatedAt       time.Time       `db:"created_at"       json:"created_at"`
}

// SectionManifestEntry is one line of the sections_summary manifest.
type SectionManifestEntry struct {
	Name         string      `json:"name"`
	Type         SectionType `json:"type"`
	Category     string      `json:"category"`
	DisplayOrder int         `json:"display_order"`
}

// InvalidEnumError reports an unparseable enum value.
type InvalidEnumError struct {
	Kind  string
	Value string
}

func (e *InvalidEnumError) Error() string {
	return "invalid " + e.Kind + ": " + e.Value
}
