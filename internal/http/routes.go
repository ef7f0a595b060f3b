package httpx

import (
	"log/slog"
	"net/http"
)

// RouterServices holds the services needed by the HTTP router.
type RouterServices struct {
	Analyses AnalysisService
	Registry *AnalysisRegistry
	Progress ProgressSource
	// HealthChecks maps dependency names to checkers; optional.
	HealthChecks map[string]HealthChecker
	Logger       *slog.Logger
}

// NewRouter creates and configures the API router with logging and panic
// recovery applied to every route.
func NewRouter(services RouterServices) http.Handler {
	if services.Logger == nil {
		services.Logger = slog.Default()
	}
	if services.Registry == nil {
		services.Registry = NewAnalysisRegistry()
	}

	mux := http.NewServeMux()

	analysisHandlers := &AnalysisHandlers{
		Svc:      services.Analyses,
		Registry: services.Registry,
		Logger:   services.Logger,
	}
	progressHandlers := &ProgressHandlers{
		Tracker: services.Progress,
		Logger:  services.Logger,
	}
	healthHandlers := &HealthHandlers{Checks: services.HealthChecks}

	mux.HandleFunc("POST /api/v1/{app}/lookup", analysisHandlers.Lookup)
	mux.HandleFunc("POST /api/v1/{app}/analyses", analysisHandlers.Submit)
	mux.HandleFunc("GET /api/v1/jobs/{id}/progress", progressHandlers.Get)
	mux.HandleFunc("GET /api/v1/jobs/{id}/progress/ws", progressHandlers.Stream)
	mux.HandleFunc("GET /health", healthHandlers.Health)
	mux.HandleFunc("HEAD /health", healthHandlers.Health)

	var handler http.Handler = mux
	handler = Logging(services.Logger)(handler)
	handler = Recover(services.Logger)(handler)
	return handler
}
