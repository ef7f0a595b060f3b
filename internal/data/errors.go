package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	ErrRepoNotConfigured = errors.New("repository not configured")
	ErrCacheKeyRequired  = errors.New("cache_key is required")
	ErrJobIDRequired     = errors.New("job_id is required")
	ErrRequestIDRequired = errors.New("request_id is required")
)
