package httpx

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker reports the health of one dependency.
type HealthChecker func(ctx context.Context) error

// HealthHandlers serves liveness and dependency health.
type HealthHandlers struct {
	// Checks maps a dependency name ("postgres", "redis") to its checker.
	Checks map[string]HealthChecker
}

// Health handles GET /health. It always answers; dependency failures are
// reported in the body with a 503.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.Checks))
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	body := map[string]any{"status": "ok"}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	WriteJSON(w, status, body)
}
