package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NCRC-org/justdata-sub002/internal/core"
	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
	apperrors "github.com/NCRC-org/justdata-sub002/internal/errors"
	"github.com/NCRC-org/justdata-sub002/internal/progress"
)

type fakeAnalysisService struct {
	lookupFn func(ctx context.Context, app model.Application, rawParams map[string]any, requesterClass string) (*core.LookupResult, error)
	submitFn func(ctx context.Context, app model.Application, rawParams map[string]any, fn core.AnalysisFunc, opts core.SubmitOptions) (*core.SubmitOutcome, error)
}

func (f *fakeAnalysisService) Lookup(ctx context.Context, app model.Application, rawParams map[string]any, requesterClass string) (*core.LookupResult, error) {
	return f.lookupFn(ctx, app, rawParams, requesterClass)
}

func (f *fakeAnalysisService) Submit(ctx context.Context, app model.Application, rawParams map[string]any, fn core.AnalysisFunc, opts core.SubmitOptions) (*core.SubmitOutcome, error) {
	return f.submitFn(ctx, app, rawParams, fn, opts)
}

func noopAnalysis(context.Context, core.Request) (map[string]any, error) {
	return map[string]any{}, nil
}

func newTestRouter(t *testing.T, svc AnalysisService, tracker ProgressSource) http.Handler {
	t.Helper()
	registry := NewAnalysisRegistry()
	registry.Register(model.AppLendsight, noopAnalysis)
	registry.Register(model.AppBizsight, noopAnalysis)
	return NewRouter(RouterServices{
		Analyses: svc,
		Registry: registry,
		Progress: tracker,
		Logger:   slog.Default(),
	})
}

func newTracker() *progress.Tracker {
	return progress.NewTracker(progress.TrackerOptions{})
}

func TestLookup_HitResponse(t *testing.T) {
	t.Parallel()

	svc := &fakeAnalysisService{
		lookupFn: func(_ context.Context, app model.Application, params map[string]any, requesterClass string) (*core.LookupResult, error) {
			assert.Equal(t, model.AppLendsight, app)
			assert.Equal(t, "member", requesterClass)
			assert.Equal(t, map[string]any{"counties": []any{"alameda, ca"}}, params)
			return &core.LookupResult{
				Hit:      true,
				CacheKey: "lendsight:abc",
				JobID:    "job-1",
				Result:   map[string]any{"top_lender_share": 0.31},
			}, nil
		},
	}
	router := newTestRouter(t, svc, newTracker())

	body := `{"params":{"counties":["alameda, ca"]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/lendsight/lookup", strings.NewReader(body))
	req.Header.Set("X-Requester-Class", "member")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res core.LookupResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Hit)
	assert.Equal(t, "job-1", res.JobID)
}

func TestLookup_MissIsStillOK(t *testing.T) {
	t.Parallel()

	svc := &fakeAnalysisService{
		lookupFn: func(context.Context, model.Application, map[string]any, string) (*core.LookupResult, error) {
			return &core.LookupResult{Hit: false, CacheKey: "lendsight:abc"}, nil
		},
	}
	router := newTestRouter(t, svc, newTracker())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/lendsight/lookup", strings.NewReader(`{"params":{}}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res core.LookupResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Hit)
}

func TestLookup_ValidationErrorMapsTo400(t *testing.T) {
	t.Parallel()

	svc := &fakeAnalysisService{
		lookupFn: func(context.Context, model.Application, map[string]any, string) (*core.LookupResult, error) {
			return nil, apperrors.ValidationField("years", "end_year precedes start_year")
		},
	}
	router := newTestRouter(t, svc, newTracker())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/lendsight/lookup", strings.NewReader(`{"params":{}}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation")
}

func TestLookup_UnknownApplicationIs404(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &fakeAnalysisService{}, newTracker())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wealthsight/lookup", strings.NewReader(`{"params":{}}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLookup_MissingParamsIs400(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &fakeAnalysisService{}, newTracker())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/lendsight/lookup", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmit_Accepted(t *testing.T) {
	t.Parallel()

	svc := &fakeAnalysisService{
		submitFn: func(_ context.Context, app model.Application, _ map[string]any, fn core.AnalysisFunc, opts core.SubmitOptions) (*core.SubmitOutcome, error) {
			assert.Equal(t, model.AppBizsight, app)
			assert.NotNil(t, fn)
			assert.True(t, opts.ForceRefresh)
			return &core.SubmitOutcome{JobID: "job-9", CacheKey: "bizsight:def"}, nil
		},
	}
	router := newTestRouter(t, svc, newTracker())

	body := `{"params":{"counties":["fresno, ca"],"years":[2021]},"force_refresh":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bizsight/analyses", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var out core.SubmitOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "job-9", out.JobID)
}

func TestSubmit_NoAnalysisConfiguredIs503(t *testing.T) {
	t.Parallel()

	router := NewRouter(RouterServices{
		Analyses: &fakeAnalysisService{},
		Registry: NewAnalysisRegistry(), // nothing registered
		Progress: newTracker(),
		Logger:   slog.Default(),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/lendsight/analyses", strings.NewReader(`{"params":{}}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "analysis_unavailable")
}

func TestSubmit_InvalidJSONIs400(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &fakeAnalysisService{}, newTracker())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/lendsight/analyses", strings.NewReader(`{"params":`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProgress_Poll(t *testing.T) {
	t.Parallel()

	tracker := newTracker()
	tracker.Start("job-1", progress.StepQueued)
	tracker.Update("job-1", progress.StepFetching, 25, "loading records")

	router := newTestRouter(t, &fakeAnalysisService{}, tracker)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-1/progress", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var state model.ProgressState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, progress.StepFetching, state.Step)
	assert.Equal(t, 25, state.Percent)
	assert.False(t, state.Done)
}

func TestProgress_UnknownJobIs404(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &fakeAnalysisService{}, newTracker())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/nope/progress", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProgress_WebsocketStreamsTerminalEvent(t *testing.T) {
	t.Parallel()

	tracker := newTracker()
	tracker.Start("job-ws", progress.StepQueued)

	router := newTestRouter(t, &fakeAnalysisService{}, tracker)
	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/jobs/job-ws/progress/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	// The subscriber replays the current state first.
	var first model.ProgressState
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, progress.StepQueued, first.Step)

	tracker.Update("job-ws", progress.StepPersisting, 90, "storing result")
	tracker.Complete("job-ws", true, "")

	var last model.ProgressState
	for !last.Done {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		require.NoError(t, conn.ReadJSON(&last))
	}
	assert.True(t, last.Success)
}

func TestHealth_ReportsDependencyFailure(t *testing.T) {
	t.Parallel()

	router := NewRouter(RouterServices{
		Analyses: &fakeAnalysisService{},
		Progress: newTracker(),
		HealthChecks: map[string]HealthChecker{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		},
		Logger: slog.Default(),
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestHealth_OK(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &fakeAnalysisService{}, newTracker())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
