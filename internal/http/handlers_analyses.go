// Package httpx provides HTTP handlers for the analysis cache and job API.
package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/NCRC-org/justdata-sub002/internal/core"
	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
)

// AnalysisService is the orchestration surface the handlers depend on.
type AnalysisService interface {
	Lookup(ctx context.Context, app model.Application, rawParams map[string]any, requesterClass string) (*core.LookupResult, error)
	Submit(ctx context.Context, app model.Application, rawParams map[string]any, fn core.AnalysisFunc, opts core.SubmitOptions) (*core.SubmitOutcome, error)
}

// AnalysisHandlers provides HTTP handlers for cache lookups and analysis
// submissions.
type AnalysisHandlers struct {
	Svc      AnalysisService
	Registry *AnalysisRegistry
	Logger   *slog.Logger
}

type lookupRequest struct {
	Params map[string]any `json:"params"`
}

type submitRequest struct {
	Params       map[string]any `json:"params"`
	ForceRefresh bool           `json:"force_refresh"`
}

// Lookup handles POST /api/v1/{app}/lookup. A miss is a successful response
// with hit=false; the caller decides whether to submit.
func (h *AnalysisHandlers) Lookup(w http.ResponseWriter, r *http.Request) {
	app, ok := pathApplication(w, r)
	if !ok {
		return
	}

	var req lookupRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Params == nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation", Err: errors.New("params object is required")})
		return
	}

	res, err := h.Svc.Lookup(r.Context(), app, req.Params, requesterClass(r))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// Submit handles POST /api/v1/{app}/analyses. It accepts the job and returns
// its id immediately; progress and the result are fetched separately.
func (h *AnalysisHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	app, ok := pathApplication(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Params == nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation", Err: errors.New("params object is required")})
		return
	}

	fn := h.Registry.ForApplication(app)
	if fn == nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: "analysis_unavailable",
			Err:     errors.New("no analysis is configured for " + string(app)),
		})
		return
	}

	out, err := h.Svc.Submit(r.Context(), app, req.Params, fn, core.SubmitOptions{
		ForceRefresh:   req.ForceRefresh,
		RequesterClass: requesterClass(r),
		RemoteAddr:     r.RemoteAddr,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, out)
}

func pathApplication(w http.ResponseWriter, r *http.Request) (model.Application, bool) {
	app := model.Application(r.PathValue("app"))
	if !app.Valid() {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "unknown_application",
			Err:     errors.New("unknown application: " + string(app)),
		})
		return "", false
	}
	return app, true
}

func requesterClass(r *http.Request) string {
	if class := r.Header.Get("X-Requester-Class"); class != "" {
		return class
	}
	return "anonymous"
}
