package core_test

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/NCRC-org/justdata-sub002/internal/core"
	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
	apperrors "github.com/NCRC-org/justdata-sub002/internal/errors"
	"github.com/NCRC-org/justdata-sub002/internal/mocks"
	"github.com/NCRC-org/justdata-sub002/internal/normalize"
	"github.com/NCRC-org/justdata-sub002/internal/section"
)

func lendsightParams() map[string]any {
	return map[string]any{
		"counties": []any{"Alameda, CA"},
		"years":    []any{2020.0, 2021.0},
	}
}

// lendsightResult is a representative analysis output that decomposes into
// well more than the lendsight four-section minimum.
func lendsightResult() map[string]any {
	return map[string]any{
		"county_summary_table": []any{
			map[string]any{"county": "alameda, ca", "loans": 830.0},
		},
		"lender_rankings": []any{
			map[string]any{"lender": "first bank", "share": 0.31},
			map[string]any{"lender": "second bank", "share": 0.12},
		},
		"hhi_by_year": []any{
			map[string]any{"year": 2020.0, "hhi": 0.1899},
		},
		"top_lender_share":  0.31,
		"executive_summary": "Concentration held steady.",
		"narratives": map[string]any{
			"hhi_by_year": "Little movement year over year.",
		},
	}
}

func lendsightKey(t *testing.T) string {
	t.Helper()
	canonical, err := normalize.Normalize(model.AppLendsight, lendsightParams())
	require.NoError(t, err)
	key, err := normalize.MakeKey(model.AppLendsight, canonical)
	require.NoError(t, err)
	return key
}

// memStore is an in-memory stand-in for the three result store repositories,
// with an operation log so tests can assert write ordering.
type memStore struct {
	mu       sync.Mutex
	entries  map[string]model.CacheEntry
	jobs     map[string]model.JobResult
	sections map[string][]model.ResultSection
	ops      []string
	failing  bool
}

func newMemStore() *memStore {
	return &memStore{
		entries:  make(map[string]model.CacheEntry),
		jobs:     make(map[string]model.JobResult),
		sections: make(map[string][]model.ResultSection),
	}
}

func (s *memStore) setFailing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = v
}

func (s *memStore) record(op string) error {
	s.ops = append(s.ops, op)
	if s.failing {
		return apperrors.Persistence("store unavailable")
	}
	return nil
}

// indexOf returns the position of the first occurrence of op at or after
// from, or -1.
func indexOf(ops []string, op string, from int) int {
	for i := from; i < len(ops); i++ {
		if ops[i] == op {
			return i
		}
	}
	return -1
}

func (s *memStore) opLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ops))
	copy(out, s.ops)
	return out
}

func (s *memStore) Get(_ context.Context, cacheKey string) (*model.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("cache.get"); err != nil {
		return nil, err
	}
	entry, ok := s.entries[cacheKey]
	if !ok {
		return nil, apperrors.NotFound("cache entry not found")
	}
	return &entry, nil
}

func (s *memStore) Put(_ context.Context, entry *model.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("cache.put"); err != nil {
		return err
	}
	s.entries[entry.CacheKey] = *entry
	return nil
}

func (s *memStore) Touch(_ context.Context, cacheKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("cache.touch"); err != nil {
		return err
	}
	if entry, ok := s.entries[cacheKey]; ok {
		entry.AccessCount++
		entry.LastAccessedAt = time.Now()
		s.entries[cacheKey] = entry
	}
	return nil
}

func (s *memStore) Delete(_ context.Context, cacheKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("cache.delete"); err != nil {
		return err
	}
	delete(s.entries, cacheKey)
	return nil
}

func (s *memStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("cache.delete_expired"); err != nil {
		return 0, err
	}
	var n int64
	now := time.Now()
	for key, entry := range s.entries {
		if entry.Expired(now) {
			delete(s.entries, key)
			n++
		}
	}
	return n, nil
}

func (s *memStore) Create(_ context.Context, job *model.JobResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("job.create"); err != nil {
		return err
	}
	if _, ok := s.jobs[job.JobID]; ok {
		return apperrors.Conflict("job already exists")
	}
	stored := *job
	stored.CreatedAt = time.Now()
	s.jobs[job.JobID] = stored
	return nil
}

func (s *memStore) UpdateStatus(_ context.Context, jobID string, status model.JobStatus, errorMessage *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("job.status." + string(status)); err != nil {
		return err
	}
	job, ok := s.jobs[jobID]
	if !ok || job.Status.Terminal() {
		return nil
	}
	job.Status = status
	job.ErrorMessage = errorMessage
	s.jobs[jobID] = job
	return nil
}

func (s *memStore) SetSummaries(_ context.Context, jobID string, resultSummary, sectionsSummary json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("job.summaries"); err != nil {
		return err
	}
	if job, ok := s.jobs[jobID]; ok {
		job.ResultSummary = resultSummary
		job.SectionsSummary = sectionsSummary
		s.jobs[jobID] = job
	}
	return nil
}

func (s *memStore) GetJob(jobID string) (model.JobResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	return job, ok
}

func (s *memStore) DeleteJob(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("job.delete"); err != nil {
		return err
	}
	delete(s.jobs, jobID)
	return nil
}

func (s *memStore) InsertBatch(_ context.Context, sections []model.ResultSection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("sections.insert"); err != nil {
		return err
	}
	for _, sec := range sections {
		s.sections[sec.JobID] = append(s.sections[sec.JobID], sec)
	}
	return nil
}

func (s *memStore) ListByJobID(_ context.Context, jobID string) ([]model.ResultSection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("sections.list"); err != nil {
		return nil, err
	}
	out := make([]model.ResultSection, len(s.sections[jobID]))
	copy(out, s.sections[jobID])
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].SectionName < out[j].SectionName
	})
	return out, nil
}

func (s *memStore) CountByJobID(_ context.Context, jobID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("sections.count"); err != nil {
		return 0, err
	}
	return len(s.sections[jobID]), nil
}

func (s *memStore) DeleteByJobID(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("sections.delete"); err != nil {
		return err
	}
	delete(s.sections, jobID)
	return nil
}

// jobRepo adapts memStore to core.JobResultRepository (Get and Delete clash
// with the cache index method set on the shared struct).
type jobRepo struct{ s *memStore }

func (r jobRepo) Create(ctx context.Context, job *model.JobResult) error { return r.s.Create(ctx, job) }
func (r jobRepo) UpdateStatus(ctx context.Context, jobID string, status model.JobStatus, errorMessage *string) error {
	return r.s.UpdateStatus(ctx, jobID, status, errorMessage)
}
func (r jobRepo) SetSummaries(ctx context.Context, jobID string, resultSummary, sectionsSummary json.RawMessage) error {
	return r.s.SetSummaries(ctx, jobID, resultSummary, sectionsSummary)
}
func (r jobRepo) Get(_ context.Context, jobID string) (*model.JobResult, error) {
	job, ok := r.s.GetJob(jobID)
	r.s.mu.Lock()
	_ = r.s.record("job.get")
	r.s.mu.Unlock()
	if !ok {
		return nil, apperrors.NotFound("job not found")
	}
	return &job, nil
}
func (r jobRepo) Delete(ctx context.Context, jobID string) error { return r.s.DeleteJob(ctx, jobID) }

type completion struct {
	jobID   string
	success bool
	errMsg  string
}

// progressRecorder implements core.ProgressReporter and signals terminal
// events to the test.
type progressRecorder struct {
	mu       sync.Mutex
	started  []string
	updates  []string
	terminal chan completion
}

func newProgressRecorder() *progressRecorder {
	return &progressRecorder{terminal: make(chan completion, 16)}
}

func (p *progressRecorder) Start(jobID, step string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = append(p.started, jobID)
}

func (p *progressRecorder) Update(jobID, step string, percent int, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, jobID+":"+step)
}

func (p *progressRecorder) Complete(jobID string, success bool, errMsg string) {
	p.terminal <- completion{jobID: jobID, success: success, errMsg: errMsg}
}

func (p *progressRecorder) wait(t *testing.T) completion {
	t.Helper()
	select {
	case c := <-p.terminal:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job completion")
		return completion{}
	}
}

type usageRecorder struct {
	mu      sync.Mutex
	records []model.UsageRecord
}

func (u *usageRecorder) Log(record model.UsageRecord) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.records = append(u.records, record)
}

func (u *usageRecorder) all() []model.UsageRecord {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]model.UsageRecord, len(u.records))
	copy(out, u.records)
	return out
}

func newTestOrchestrator(t *testing.T, store *memStore) (*core.Orchestrator, *progressRecorder, *usageRecorder) {
	t.Helper()
	prog := newProgressRecorder()
	usage := &usageRecorder{}
	orch, err := core.NewOrchestrator(core.OrchestratorOptions{
		Repos: core.OrchestratorRepos{
			CacheIndex: store,
			Results:    jobRepo{s: store},
			Sections:   store,
		},
		Runtime: core.OrchestratorRuntime{
			Progress: prog,
			Usage:    usage,
		},
		Config: core.OrchestratorConfig{
			JobTimeout:   30 * time.Second,
			WriteRetries: 1,
			RetryBackoff: time.Millisecond,
		},
	})
	require.NoError(t, err)
	return orch, prog, usage
}

func TestNewOrchestrator_RequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := core.NewOrchestrator(core.OrchestratorOptions{})
	require.Error(t, err)
}

func TestSubmit_InvalidParamsWritesNothing(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	orch, prog, _ := newTestOrchestrator(t, store)

	fn := func(context.Context, core.Request) (map[string]any, error) {
		t.Error("analysis function must not run for invalid params")
		return nil, nil
	}

	_, err := orch.Submit(context.Background(), model.AppLendsight, map[string]any{
		"counties":   []any{"Alameda, CA"},
		"start_year": 2021.0,
		"end_year":   2019.0,
	}, fn, core.SubmitOptions{})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, store.opLog())
	assert.Empty(t, prog.started)
}

func TestSubmit_ComputesPersistsAndCaches(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	orch, prog, usage := newTestOrchestrator(t, store)

	fn := func(_ context.Context, req core.Request) (map[string]any, error) {
		assert.Equal(t, model.AppLendsight, req.Application)
		assert.NotEmpty(t, req.JobID)
		return lendsightResult(), nil
	}

	out, err := orch.Submit(context.Background(), model.AppLendsight, lendsightParams(), fn, core.SubmitOptions{})
	require.NoError(t, err)
	assert.False(t, out.Joined)
	assert.Equal(t, lendsightKey(t), out.CacheKey)

	done := prog.wait(t)
	assert.Equal(t, out.JobID, done.jobID)
	assert.True(t, done.success)

	entry, ok := store.entries[out.CacheKey]
	require.True(t, ok, "cache entry must exist after success")
	assert.Equal(t, out.JobID, entry.JobID)

	job, ok := store.GetJob(out.JobID)
	require.True(t, ok)
	assert.Equal(t, model.JobStatusCompleted, job.Status)
	assert.NotEmpty(t, job.ResultSummary)
	assert.NotEmpty(t, job.SectionsSummary)

	codec := section.ForApplication(model.AppLendsight)
	assert.GreaterOrEqual(t, len(store.sections[out.JobID]), codec.MinSections())

	// The cache entry is the last write of the sequence.
	ops := store.opLog()
	require.NotEmpty(t, ops)
	assert.Equal(t, "cache.put", ops[len(ops)-1])

	// The stored result round-trips through a lookup on the same key.
	res, err := orch.Lookup(context.Background(), model.AppLendsight, lendsightParams(), "member")
	require.NoError(t, err)
	assert.True(t, res.Hit)
	assert.Equal(t, out.JobID, res.JobID)
	assert.Equal(t, section.Sanitize(lendsightResult()), res.Result)

	records := usage.all()
	require.NotEmpty(t, records)
	last := records[len(records)-1]
	assert.True(t, last.CacheHit)
	assert.Equal(t, "member", last.RequesterClass)
}

func TestSubmit_ConcurrentSameParamsJoinOneJob(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	orch, prog, _ := newTestOrchestrator(t, store)

	proceed := make(chan struct{})
	fn := func(ctx context.Context, _ core.Request) (map[string]any, error) {
		select {
		case <-proceed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return lendsightResult(), nil
	}

	first, err := orch.Submit(context.Background(), model.AppLendsight, lendsightParams(), fn, core.SubmitOptions{})
	require.NoError(t, err)
	require.False(t, first.Joined)

	second, err := orch.Submit(context.Background(), model.AppLendsight, lendsightParams(), fn, core.SubmitOptions{})
	require.NoError(t, err)
	assert.True(t, second.Joined, "same-key submit must join the running job")
	assert.Equal(t, first.JobID, second.JobID)

	// A different parameter set is its own job.
	other, err := orch.Submit(context.Background(), model.AppLendsight, map[string]any{
		"counties": []any{"Fresno, CA"},
		"years":    []any{2021.0},
	}, fn, core.SubmitOptions{})
	require.NoError(t, err)
	assert.False(t, other.Joined)
	assert.NotEqual(t, first.JobID, other.JobID)

	close(proceed)
	prog.wait(t)
	prog.wait(t)

	assert.Len(t, store.entries, 2)
	assert.Len(t, store.jobs, 2, "joined submit must not create a second job")
}

func TestSubmit_AnalysisFailureLeavesNoCacheEntry(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	orch, prog, _ := newTestOrchestrator(t, store)

	fn := func(context.Context, core.Request) (map[string]any, error) {
		return nil, errors.New("upstream dataset unavailable")
	}

	out, err := orch.Submit(context.Background(), model.AppLendsight, lendsightParams(), fn, core.SubmitOptions{})
	require.NoError(t, err)

	done := prog.wait(t)
	assert.False(t, done.success)
	assert.Contains(t, done.errMsg, "upstream dataset unavailable")

	job, ok := store.GetJob(out.JobID)
	require.True(t, ok)
	assert.Equal(t, model.JobStatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Contains(t, *job.ErrorMessage, "upstream dataset unavailable")

	assert.Empty(t, store.entries, "failed jobs must not produce cache entries")

	res, err := orch.Lookup(context.Background(), model.AppLendsight, lendsightParams(), "member")
	require.NoError(t, err)
	assert.False(t, res.Hit, "lookup after failure must be a fresh miss")
}

func TestSubmit_ForceRefreshSupersedesPreviousJob(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	orch, prog, _ := newTestOrchestrator(t, store)

	fn := func(context.Context, core.Request) (map[string]any, error) {
		return lendsightResult(), nil
	}
	first, err := orch.Submit(context.Background(), model.AppLendsight, lendsightParams(), fn, core.SubmitOptions{})
	require.NoError(t, err)
	prog.wait(t)

	refreshed := lendsightResult()
	refreshed["top_lender_share"] = 0.4
	fn2 := func(context.Context, core.Request) (map[string]any, error) {
		return refreshed, nil
	}
	second, err := orch.Submit(context.Background(), model.AppLendsight, lendsightParams(), fn2, core.SubmitOptions{ForceRefresh: true})
	require.NoError(t, err)
	assert.False(t, second.Joined)
	assert.NotEqual(t, first.JobID, second.JobID)
	prog.wait(t)

	require.Len(t, store.entries, 1, "supersession must leave one entry per key")
	assert.Equal(t, second.JobID, store.entries[second.CacheKey].JobID)

	_, oldExists := store.GetJob(first.JobID)
	assert.False(t, oldExists, "superseded job record must be deleted")
	assert.Empty(t, store.sections[first.JobID], "superseded sections must be deleted")

	// Reverse of write order: the entry goes first so no reader can follow it
	// into a half-deleted job, then sections, then the job row.
	ops := store.opLog()
	entryDel := indexOf(ops, "cache.delete", 0)
	require.GreaterOrEqual(t, entryDel, 0, "supersession must delete the cache entry: %v", ops)
	sectionDel := indexOf(ops, "sections.delete", entryDel)
	jobDel := indexOf(ops, "job.delete", entryDel)
	require.Greater(t, sectionDel, entryDel, "sections must be deleted after the cache entry: %v", ops)
	require.Greater(t, jobDel, sectionDel, "job row must be deleted last: %v", ops)

	res, err := orch.Lookup(context.Background(), model.AppLendsight, lendsightParams(), "member")
	require.NoError(t, err)
	require.True(t, res.Hit)
	assert.Equal(t, second.JobID, res.JobID)
	assert.InDelta(t, 0.4, res.Result["top_lender_share"], 1e-9)
}

func TestSubmit_PersistenceOutageFallsBackInProcess(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	orch, prog, _ := newTestOrchestrator(t, store)
	store.setFailing(true)

	fn := func(context.Context, core.Request) (map[string]any, error) {
		return lendsightResult(), nil
	}

	out, err := orch.Submit(context.Background(), model.AppLendsight, lendsightParams(), fn, core.SubmitOptions{})
	require.NoError(t, err)

	done := prog.wait(t)
	assert.True(t, done.success, "requester still gets a result when the store is down")

	res, err := orch.Lookup(context.Background(), model.AppLendsight, lendsightParams(), "member")
	require.NoError(t, err)
	assert.True(t, res.Hit)
	assert.Equal(t, out.JobID, res.JobID)
	assert.Equal(t, section.Sanitize(lendsightResult()), res.Result)
}

func TestSubmit_SuccessfulPersistDropsFallbackResult(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	orch, prog, _ := newTestOrchestrator(t, store)
	store.setFailing(true)

	fn := func(context.Context, core.Request) (map[string]any, error) {
		return lendsightResult(), nil
	}
	_, err := orch.Submit(context.Background(), model.AppLendsight, lendsightParams(), fn, core.SubmitOptions{})
	require.NoError(t, err)
	prog.wait(t)

	// Store recovers; a force refresh persists a fresh result for the key.
	store.setFailing(false)
	refreshed := lendsightResult()
	refreshed["top_lender_share"] = 0.5
	fn2 := func(context.Context, core.Request) (map[string]any, error) {
		return refreshed, nil
	}
	out, err := orch.Submit(context.Background(), model.AppLendsight, lendsightParams(), fn2, core.SubmitOptions{ForceRefresh: true})
	require.NoError(t, err)
	prog.wait(t)

	res, err := orch.Lookup(context.Background(), model.AppLendsight, lendsightParams(), "member")
	require.NoError(t, err)
	require.True(t, res.Hit)
	assert.Equal(t, out.JobID, res.JobID)

	// Once the entry is gone again (expiry, eviction) the stale in-process
	// copy must not resurface.
	store.mu.Lock()
	delete(store.entries, out.CacheKey)
	store.mu.Unlock()

	res, err = orch.Lookup(context.Background(), model.AppLendsight, lendsightParams(), "member")
	require.NoError(t, err)
	assert.False(t, res.Hit, "superseded fallback result must not be served once the durable write landed")
}

func TestShutdown_WaitsForRunningJobs(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	orch, prog, _ := newTestOrchestrator(t, store)

	proceed := make(chan struct{})
	fn := func(ctx context.Context, _ core.Request) (map[string]any, error) {
		<-proceed
		return lendsightResult(), nil
	}
	_, err := orch.Submit(context.Background(), model.AppLendsight, lendsightParams(), fn, core.SubmitOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.Error(t, orch.Shutdown(ctx), "shutdown must time out while a job runs")

	close(proceed)
	prog.wait(t)
	require.NoError(t, orch.Shutdown(context.Background()))
}

func TestLookup_MissWhenNoEntry(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheIndexRepository(ctrl)
	results := mocks.NewMockJobResultRepository(ctrl)
	sections := mocks.NewMockSectionRepository(ctrl)

	key := lendsightKey(t)
	cache.EXPECT().Get(gomock.Any(), key).Return(nil, apperrors.NotFound("cache entry not found"))

	usage := &usageRecorder{}
	orch := mustOrchestrator(t, cache, results, sections, usage)

	res, err := orch.Lookup(context.Background(), model.AppLendsight, lendsightParams(), "member")
	require.NoError(t, err)
	assert.False(t, res.Hit)
	assert.Equal(t, key, res.CacheKey)

	records := usage.all()
	require.Len(t, records, 1)
	assert.False(t, records[0].CacheHit)
	assert.Equal(t, key, records[0].CacheKey)
	assert.NotEmpty(t, records[0].RequestID)
}

func TestLookup_HitVerifiesJobAndRecomposes(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheIndexRepository(ctrl)
	results := mocks.NewMockJobResultRepository(ctrl)
	sections := mocks.NewMockSectionRepository(ctrl)

	key := lendsightKey(t)
	const jobID = "job-hit-1"

	codec := section.ForApplication(model.AppLendsight)
	dec, err := codec.Decompose(lendsightResult())
	require.NoError(t, err)
	rows, err := section.BuildRows(model.AppLendsight, jobID, dec)
	require.NoError(t, err)

	cache.EXPECT().Get(gomock.Any(), key).Return(&model.CacheEntry{
		CacheKey:    key,
		Application: model.AppLendsight,
		JobID:       jobID,
	}, nil)
	results.EXPECT().Get(gomock.Any(), jobID).Return(&model.JobResult{
		JobID:  jobID,
		Status: model.JobStatusCompleted,
	}, nil)
	sections.EXPECT().ListByJobID(gomock.Any(), jobID).Return(rows, nil)
	cache.EXPECT().Touch(gomock.Any(), key).Return(nil)

	usage := &usageRecorder{}
	orch := mustOrchestrator(t, cache, results, sections, usage)

	res, err := orch.Lookup(context.Background(), model.AppLendsight, lendsightParams(), "member")
	require.NoError(t, err)
	assert.True(t, res.Hit)
	assert.Equal(t, jobID, res.JobID)
	assert.Equal(t, section.Sanitize(lendsightResult()), res.Result)

	records := usage.all()
	require.Len(t, records, 1)
	assert.True(t, records[0].CacheHit)
	assert.Equal(t, jobID, records[0].JobID)
}

func TestLookup_IncompleteSectionsTreatedAsMiss(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheIndexRepository(ctrl)
	results := mocks.NewMockJobResultRepository(ctrl)
	sections := mocks.NewMockSectionRepository(ctrl)

	key := lendsightKey(t)
	const jobID = "job-incomplete-1"

	codec := section.ForApplication(model.AppLendsight)
	dec, err := codec.Decompose(lendsightResult())
	require.NoError(t, err)
	rows, err := section.BuildRows(model.AppLendsight, jobID, dec)
	require.NoError(t, err)
	truncated := rows[:codec.MinSections()-1]

	cache.EXPECT().Get(gomock.Any(), key).Return(&model.CacheEntry{
		CacheKey: key, Application: model.AppLendsight, JobID: jobID,
	}, nil)
	results.EXPECT().Get(gomock.Any(), jobID).Return(&model.JobResult{
		JobID: jobID, Status: model.JobStatusCompleted,
	}, nil)
	sections.EXPECT().ListByJobID(gomock.Any(), jobID).Return(truncated, nil)

	usage := &usageRecorder{}
	orch := mustOrchestrator(t, cache, results, sections, usage)

	res, err := orch.Lookup(context.Background(), model.AppLendsight, lendsightParams(), "member")
	require.NoError(t, err)
	assert.False(t, res.Hit, "incomplete section sets must never be served")

	records := usage.all()
	require.Len(t, records, 1)
	assert.False(t, records[0].CacheHit)
	assert.NotEmpty(t, records[0].ErrorMessage, "incomplete hits are logged distinctly")
}

func TestLookup_NonCompletedJobIsMiss(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheIndexRepository(ctrl)
	results := mocks.NewMockJobResultRepository(ctrl)
	sections := mocks.NewMockSectionRepository(ctrl)

	key := lendsightKey(t)
	cache.EXPECT().Get(gomock.Any(), key).Return(&model.CacheEntry{
		CacheKey: key, Application: model.AppLendsight, JobID: "job-running",
	}, nil)
	results.EXPECT().Get(gomock.Any(), "job-running").Return(&model.JobResult{
		JobID: "job-running", Status: model.JobStatusRunning,
	}, nil)

	orch := mustOrchestrator(t, cache, results, sections, &usageRecorder{})

	res, err := orch.Lookup(context.Background(), model.AppLendsight, lendsightParams(), "member")
	require.NoError(t, err)
	assert.False(t, res.Hit)
}

func TestLookup_ExpiredEntryIsMiss(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheIndexRepository(ctrl)
	results := mocks.NewMockJobResultRepository(ctrl)
	sections := mocks.NewMockSectionRepository(ctrl)

	key := lendsightKey(t)
	expired := time.Now().Add(-time.Hour)
	cache.EXPECT().Get(gomock.Any(), key).Return(&model.CacheEntry{
		CacheKey: key, Application: model.AppLendsight, JobID: "job-old", ExpiresAt: &expired,
	}, nil)

	orch := mustOrchestrator(t, cache, results, sections, &usageRecorder{})

	res, err := orch.Lookup(context.Background(), model.AppLendsight, lendsightParams(), "member")
	require.NoError(t, err)
	assert.False(t, res.Hit)
}

func TestLookup_InvalidParamsSurfaceValidation(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheIndexRepository(ctrl)
	results := mocks.NewMockJobResultRepository(ctrl)
	sections := mocks.NewMockSectionRepository(ctrl)

	orch := mustOrchestrator(t, cache, results, sections, &usageRecorder{})

	_, err := orch.Lookup(context.Background(), model.AppLendsight, map[string]any{
		"counties": []any{"   "},
		"years":    []any{2020.0},
	}, "member")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func mustOrchestrator(t *testing.T, cache core.CacheIndexRepository, results core.JobResultRepository, sections core.SectionRepository, usage core.UsageSink) *core.Orchestrator {
	t.Helper()
	orch, err := core.NewOrchestrator(core.OrchestratorOptions{
		Repos:   core.OrchestratorRepos{CacheIndex: cache, Results: results, Sections: sections},
		Runtime: core.OrchestratorRuntime{Progress: newProgressRecorder(), Usage: usage},
	})
	require.NoError(t, err)
	return orch
}
