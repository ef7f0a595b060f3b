package model

import (
	"encoding/json"
	"time"
)

// CacheEntry identifies one cached outcome for one application plus one
// canonical parameter set. At most one live JobID exists per CacheKey at any
// time; an older job and its sections are deleted before a replacement lands.
//
// A CacheEntry only satisfies a lookup when its referenced JobResult has
// status completed and the stored sections pass the per-application minimum
// count check.
type CacheEntry struct {
	CacheKey       string          `db:"cache_key"        json:"cache_key"`
	Application    Application     `db:"application"      json:"application"`
	JobID          string          `db:"job_id"           json:"job_id"`
	ParamsHash     string          `db:"params_hash"      json:"params_hash"`
	ParamsJSON     json.RawMessage `db:"params_json"      json:"params_json"`
	CreatedAt      time.Time       `db:"created_at"       json:"created_at"`
	LastAccessedAt time.Time       `db:"last_accessed_at" json:"last_accessed_at"`
	AccessCount    int64           `db:"access_count"     json:"access_count"`
	// ExpiresAt is optional; nil means the entry is never TTL-evicted.
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at,omitempty"`
}

// Expired reports whether the entry has passed its TTL at the given instant.
func (e *CacheEntry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}
