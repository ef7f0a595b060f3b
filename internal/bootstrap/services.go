package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/NCRC-org/justdata-sub002/config"
	"github.com/NCRC-org/justdata-sub002/internal/core"
	"github.com/NCRC-org/justdata-sub002/internal/data"
	httpx "github.com/NCRC-org/justdata-sub002/internal/http"
	"github.com/NCRC-org/justdata-sub002/internal/observability/statsd"
	"github.com/NCRC-org/justdata-sub002/internal/progress"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Orchestrator *core.Orchestrator
	Tracker      *progress.Tracker
	Usage        *core.UsageLogger
	Registry     *httpx.AnalysisRegistry
	Metrics      *statsd.Client
	// Sweeper is nil when cache entries never expire.
	Sweeper *core.CacheSweeper
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildServices constructs the orchestration stack: progress tracker (with a
// Redis mirror when available), usage logger, metrics sink, and the
// orchestrator over the Postgres repositories.
func BuildServices(deps ServiceDeps) (*ServiceContainer, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	if deps.DB == nil {
		return nil, errors.New("database connection is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: deps.Config.Observability.Metrics.IsEnabled(),
		Address: deps.Config.Observability.Metrics.StatsdAddress,
		Prefix:  deps.Config.Observability.Metrics.Prefix,
		Logger:  logger,
		GlobalTags: map[string]string{
			"service": "justdata",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create metrics sink: %w", err)
	}

	var shared progress.SharedStore
	var guard core.InflightGuard
	if deps.RedisClient != nil {
		shared = progress.NewRedisStore(progress.RedisStoreOptions{
			Client: deps.RedisClient,
			TTL:    deps.Config.Cache.ProgressTTL,
		})
		guard = data.NewRedisGuardRepo(deps.RedisClient)
	}

	tracker := progress.NewTracker(progress.TrackerOptions{
		Shared: shared,
		Logger: logger,
	})

	var usage *core.UsageLogger
	if deps.Config.Usage.Enabled {
		usage, err = core.NewUsageLogger(core.UsageLoggerOptions{
			Repo:       data.NewUsageRepo(deps.DB),
			Logger:     logger,
			BufferSize: deps.Config.Usage.BufferSize,
		})
		if err != nil {
			return nil, fmt.Errorf("create usage logger: %w", err)
		}
	}

	runtime := core.OrchestratorRuntime{
		Progress: tracker,
		Guard:    guard,
		Logger:   logger,
		Metrics:  metrics,
	}
	if usage != nil {
		runtime.Usage = usage
	}

	cacheRepo := data.NewCacheIndexRepo(deps.DB)

	var sweeper *core.CacheSweeper
	if deps.Config.Cache.EntryTTL > 0 {
		sweeper, err = core.NewCacheSweeper(core.SweeperOptions{
			Cache:    cacheRepo,
			Interval: deps.Config.Cache.SweepInterval,
			Logger:   logger,
			Metrics:  metrics,
		})
		if err != nil {
			return nil, fmt.Errorf("create cache sweeper: %w", err)
		}
	}

	orch, err := core.NewOrchestrator(core.OrchestratorOptions{
		Repos: core.OrchestratorRepos{
			CacheIndex: cacheRepo,
			Results:    data.NewResultRepo(deps.DB),
			Sections:   data.NewSectionRepo(deps.DB),
		},
		Runtime: runtime,
		Config: core.OrchestratorConfig{
			InflightTTL:  deps.Config.Orchestrator.InflightTTL,
			JobTimeout:   deps.Config.Orchestrator.JobTimeout,
			WriteRetries: deps.Config.Orchestrator.WriteRetries,
			RetryBackoff: deps.Config.Orchestrator.RetryBackoff,
			EntryTTL:     deps.Config.Cache.EntryTTL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create orchestrator: %w", err)
	}

	return &ServiceContainer{
		Orchestrator: orch,
		Tracker:      tracker,
		Usage:        usage,
		Registry:     httpx.NewAnalysisRegistry(),
		Metrics:      metrics,
		Sweeper:      sweeper,
	}, nil
}

// Close shuts the container down in dependency order: orchestrator first so
// late usage records still reach the logger.
func (c *ServiceContainer) Close(ctx context.Context) error {
	var errs []error
	if c.Orchestrator != nil {
		if err := c.Orchestrator.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Usage != nil {
		c.Usage.Close()
	}
	if c.Metrics != nil {
		if err := c.Metrics.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
