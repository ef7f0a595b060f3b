package bootstrap

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NCRC-org/justdata-sub002/config"
	httpx "github.com/NCRC-org/justdata-sub002/internal/http"
)

// HTTPServerDeps groups dependencies for the API server.
type HTTPServerDeps struct {
	Config      config.HTTPConfig
	Services    *ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewHTTPServer builds the API server with health checks for every backing
// store that was connected at startup.
func NewHTTPServer(deps HTTPServerDeps) *http.Server {
	checks := map[string]httpx.HealthChecker{
		"postgres": func(ctx context.Context) error {
			return deps.DB.PingContext(ctx)
		},
	}
	if deps.RedisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return deps.RedisClient.Ping(ctx).Err()
		}
	}

	router := httpx.NewRouter(httpx.RouterServices{
		Analyses:     deps.Services.Orchestrator,
		Registry:     deps.Services.Registry,
		Progress:     deps.Services.Tracker,
		HealthChecks: checks,
		Logger:       deps.Logger,
	})

	return &http.Server{
		Addr:    deps.Config.Addr,
		Handler: router,
		// No WriteTimeout: progress websocket streams stay open far longer
		// than any sane request deadline.
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
