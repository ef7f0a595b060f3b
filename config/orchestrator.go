package config

import "time"

// OrchestratorConfig tunes background analysis execution.
type OrchestratorConfig struct {
	// JobTimeout bounds one background analysis run end to end.
	JobTimeout time.Duration `env:"ORCHESTRATOR_JOB_TIMEOUT" envDefault:"10m"`
	// InflightTTL bounds the cross-instance in-flight lease.
	InflightTTL time.Duration `env:"ORCHESTRATOR_INFLIGHT_TTL" envDefault:"5m"`
	// WriteRetries is how many times the persist sequence retries after the
	// first failure.
	WriteRetries int           `env:"ORCHESTRATOR_WRITE_RETRIES" envDefault:"2"`
	RetryBackoff time.Duration `env:"ORCHESTRATOR_RETRY_BACKOFF" envDefault:"250ms"`

	// NarrativeTimeout bounds each narrative generation call.
	NarrativeTimeout time.Duration `env:"ORCHESTRATOR_NARRATIVE_TIMEOUT" envDefault:"30s"`
	// NarrativeConcurrency caps concurrent narrative generation calls.
	NarrativeConcurrency int `env:"ORCHESTRATOR_NARRATIVE_CONCURRENCY" envDefault:"4"`
}

// Sanitize applies guardrails to orchestrator configuration values.
func (c *OrchestratorConfig) Sanitize() {
	if c.JobTimeout <= 0 {
		c.JobTimeout = 10 * time.Minute
	}
	if c.InflightTTL <= 0 {
		c.InflightTTL = 5 * time.Minute
	}
	if c.WriteRetries < 0 {
		c.WriteRetries = 0
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 250 * time.Millisecond
	}
	if c.NarrativeTimeout <= 0 {
		c.NarrativeTimeout = 30 * time.Second
	}
	if c.NarrativeConcurrency <= 0 {
		c.NarrativeConcurrency = 4
	}
}

// UsageConfig tunes the usage audit logger.
type UsageConfig struct {
	// BufferSize is the usage logger channel capacity; records beyond it
	// are dropped rather than blocking requests.
	BufferSize int `env:"USAGE_BUFFER_SIZE" envDefault:"256"`
	// Enabled turns usage logging off entirely when false.
	Enabled bool `env:"USAGE_ENABLED" envDefault:"true"`
}

// Sanitize applies guardrails to usage logger configuration values.
func (c *UsageConfig) Sanitize() {
	if c.BufferSize <= 0 {
		c.BufferSize = 256
	}
}
