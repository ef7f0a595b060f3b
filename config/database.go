package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"justdata"`
	Password string `env:"PASSWORD" envDefault:"justdata"`
	Name     string `env:"NAME"     envDefault:"justdata"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration for progress sharing and the
// in-flight guard.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
	// Enabled turns the Redis-backed features on. With Redis disabled the
	// service still works; in-flight dedup and progress become per-instance.
	Enabled bool `env:"ENABLED" envDefault:"true"`
}

// CacheConfig tunes the analysis cache index.
type CacheConfig struct {
	// EntryTTL sets expires_at on new cache entries; zero disables expiry.
	EntryTTL time.Duration `env:"CACHE_ENTRY_TTL" envDefault:"0"`
	// ProgressTTL bounds how long shared progress state lives in Redis.
	ProgressTTL time.Duration `env:"CACHE_PROGRESS_TTL" envDefault:"1h"`
	// SweepInterval is how often expired cache entries are evicted. Only
	// relevant when EntryTTL is set.
	SweepInterval time.Duration `env:"CACHE_SWEEP_INTERVAL" envDefault:"1h"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	if c.EntryTTL < 0 {
		c.EntryTTL = 0
	}
	if c.ProgressTTL <= 0 {
		c.ProgressTTL = time.Hour
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Hour
	}
}
