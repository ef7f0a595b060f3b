package model

import (
	"encoding/json"
	"time"
)

// UsageRecord is one line of the append-only request audit trail. Writes are
// fire-and-forget and never sit on the request critical path.
type UsageRecord struct {
	RequestID      string          `db:"request_id"       json:"request_id"`
	Timestamp      time.Time       `db:"ts"               json:"timestamp"`
	Application    Application     `db:"application"      json:"application"`
	ParamsJSON     json.RawMessage `db:"params_json"      json:"params_json"`
	CacheKey       string          `db:"cache_key"        json:"cache_key"`
	CacheHit       bool            `db:"cache_hit"        json:"cache_hit"`
	JobID          string          `db:"job_id"           json:"job_id"`
	ResponseTimeMS int64           `db:"response_time_ms" json:"response_time_ms"`
	Costs          json.RawMessage `db:"costs"            json:"costs,omitempty"`
	ErrorMessage   string          `db:"error_message"    json:"error_message,omitempty"`
	// RequesterClass distinguishes caller tiers (e.g. "member", "staff",
	// "anonymous") for reporting; it carries no authorization meaning here.
	RequesterClass string `db:"requester_class" json:"requester_class"`
	RemoteAddr     string `db:"remote_addr"     json:"remote_addr,omitempty"`
}
