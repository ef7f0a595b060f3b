package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
	apperrors "github.com/NCRC-org/justdata-sub002/internal/errors"
	"github.com/NCRC-org/justdata-sub002/internal/normalize"
	"github.com/NCRC-org/justdata-sub002/internal/observability/metrics"
	"github.com/NCRC-org/justdata-sub002/internal/observability/statsd"
	"github.com/NCRC-org/justdata-sub002/internal/progress"
	"github.com/NCRC-org/justdata-sub002/internal/section"
)

// AnalysisFunc computes a full analysis result for one canonical request. The
// orchestrator treats the function as opaque: it only requires the returned
// map to decompose cleanly for the request's application.
type AnalysisFunc func(ctx context.Context, req Request) (map[string]any, error)

// Request carries everything an analysis function needs for one run.
type Request struct {
	JobID       string
	Application model.Application
	// Params is the canonical parameter set, already normalized.
	Params map[string]any
	// Progress, when non-nil, lets the analysis report named steps as it
	// works. Percent is derived from the application's step table.
	Progress func(step, message string)
}

// LookupResult is the outcome of a cache read.
type LookupResult struct {
	Hit      bool           `json:"hit"`
	CacheKey string         `json:"cache_key"`
	JobID    string         `json:"job_id,omitempty"`
	Result   map[string]any `json:"result,omitempty"`
}

// SubmitOptions tunes one analysis submission.
type SubmitOptions struct {
	// ForceRefresh recomputes even when a cached result exists, superseding
	// the previous job for the same key.
	ForceRefresh   bool
	RequesterClass string
	RemoteAddr     string
}

// SubmitOutcome reports the accepted job. Joined is true when the submission
// attached to an already-running job for the same cache key instead of
// starting a new one.
type SubmitOutcome struct {
	JobID    string `json:"job_id"`
	CacheKey string `json:"cache_key"`
	Joined   bool   `json:"joined,omitempty"`
}

// OrchestratorConfig holds tuning knobs for the write path.
type OrchestratorConfig struct {
	// InflightTTL bounds how long a cross-instance in-flight lease lives.
	InflightTTL time.Duration
	// JobTimeout bounds one background analysis run end to end.
	JobTimeout time.Duration
	// WriteRetries is how many times the persist sequence is retried after
	// the first failure.
	WriteRetries int
	RetryBackoff time.Duration
	// EntryTTL sets expires_at on new cache entries; zero means no expiry.
	EntryTTL time.Duration
}

func (c *OrchestratorConfig) applyDefaults() {
	if c.InflightTTL <= 0 {
		c.InflightTTL = 5 * time.Minute
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 10 * time.Minute
	}
	if c.WriteRetries < 0 {
		c.WriteRetries = 0
	}
	if c.WriteRetries == 0 {
		c.WriteRetries = 2
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 250 * time.Millisecond
	}
}

// OrchestratorRepos groups the result store repositories.
type OrchestratorRepos struct {
	CacheIndex CacheIndexRepository
	Results    JobResultRepository
	Sections   SectionRepository
}

// OrchestratorRuntime groups cross-cutting collaborators.
type OrchestratorRuntime struct {
	Progress ProgressReporter // Required
	Guard    InflightGuard    // Optional: cross-instance in-flight dedup
	Usage    UsageSink        // Optional: audit trail
	Logger   *slog.Logger     // Optional, defaults to slog.Default()
	Metrics  statsd.Sink      // Optional
}

// OrchestratorOptions holds the dependencies for creating an Orchestrator.
type OrchestratorOptions struct {
	Repos   OrchestratorRepos
	Runtime OrchestratorRuntime
	Config  OrchestratorConfig
}

type fallbackEntry struct {
	jobID  string
	result map[string]any
}

// Orchestrator owns the analysis lifecycle: cache reads on the hot path and
// exactly-once background computation on misses. Results are decomposed into
// sections and persisted in a fixed order so the cache entry, written last,
// is the only signal a reader ever trusts.
type Orchestrator struct {
	cache    CacheIndexRepository
	results  JobResultRepository
	sections SectionRepository
	guard    InflightGuard
	progress ProgressReporter
	usage    UsageSink
	cfg      OrchestratorConfig
	logger   *slog.Logger
	metrics  statsd.Sink

	mu       sync.Mutex
	inflight map[string]string // cache key -> running job id (this process)
	// fallback holds results that could not be persisted, so requesters
	// still get an answer while the result store is unavailable.
	fallback map[string]fallbackEntry

	wg sync.WaitGroup
}

// NewOrchestrator constructs an Orchestrator, validating required dependencies.
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	if opts.Repos.CacheIndex == nil {
		return nil, errors.New("cache index repository is required")
	}
	if opts.Repos.Results == nil {
		return nil, errors.New("job result repository is required")
	}
	if opts.Repos.Sections == nil {
		return nil, errors.New("section repository is required")
	}
	if opts.Runtime.Progress == nil {
		return nil, errors.New("progress reporter is required")
	}
	if opts.Runtime.Logger == nil {
		opts.Runtime.Logger = slog.Default()
	}
	opts.Config.applyDefaults()

	return &Orchestrator{
		cache:    opts.Repos.CacheIndex,
		results:  opts.Repos.Results,
		sections: opts.Repos.Sections,
		guard:    opts.Runtime.Guard,
		progress: opts.Runtime.Progress,
		usage:    opts.Runtime.Usage,
		cfg:      opts.Config,
		logger:   opts.Runtime.Logger,
		metrics:  opts.Runtime.Metrics,
		inflight: make(map[string]string),
		fallback: make(map[string]fallbackEntry),
	}, nil
}

// Lookup resolves a raw parameter set against the cache. A hit requires the
// full chain to verify: live cache entry, completed job record, and a section
// set that recomposes above the application's minimum. Anything less is a
// miss; an incomplete section set is logged and counted separately but never
// served.
func (o *Orchestrator) Lookup(ctx context.Context, app model.Application, rawParams map[string]any, requesterClass string) (*LookupResult, error) {
	started := time.Now()

	canonical, err := normalize.Normalize(app, rawParams)
	if err != nil {
		return nil, err
	}
	key, err := normalize.MakeKey(app, canonical)
	if err != nil {
		return nil, err
	}
	paramsJSON, err := json.Marshal(canonical)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode canonical params")
	}

	record := model.UsageRecord{
		Application:    app,
		ParamsJSON:     paramsJSON,
		CacheKey:       key,
		RequesterClass: requesterClass,
	}

	entry, getErr := o.cache.Get(ctx, key)
	switch {
	case getErr == nil && !entry.Expired(time.Now()):
		result, readErr := o.materialize(ctx, app, entry.JobID)
		if readErr == nil {
			if touchErr := o.cache.Touch(ctx, key); touchErr != nil {
				o.logger.WarnContext(ctx, "cache touch failed", "cache_key", key, "error", touchErr)
			}
			o.count("cache.hit", app)
			record.CacheHit = true
			record.JobID = entry.JobID
			record.ResponseTimeMS = time.Since(started).Milliseconds()
			o.logUsage(record)
			return &LookupResult{Hit: true, CacheKey: key, JobID: entry.JobID, Result: result}, nil
		}
		if apperrors.IsIncompleteCacheHit(readErr) {
			o.count("cache.incomplete", app)
			o.logger.WarnContext(ctx, "cached result incomplete, treating as miss",
				"cache_key", key, "job_id", entry.JobID, "error", readErr)
			record.ErrorMessage = readErr.Error()
		} else if !apperrors.IsNotFound(readErr) {
			o.logger.WarnContext(ctx, "cached result unreadable, treating as miss",
				"cache_key", key, "job_id", entry.JobID, "error", readErr)
		}
	case getErr != nil && !apperrors.IsNotFound(getErr):
		o.logger.WarnContext(ctx, "cache index read failed", "cache_key", key, "error", getErr)
	}

	if fb, ok := o.fallbackFor(key); ok {
		o.count("cache.fallback_hit", app)
		record.CacheHit = true
		record.JobID = fb.jobID
		record.ResponseTimeMS = time.Since(started).Milliseconds()
		o.logUsage(record)
		return &LookupResult{Hit: true, CacheKey: key, JobID: fb.jobID, Result: fb.result}, nil
	}

	o.count("cache.miss", app)
	record.ResponseTimeMS = time.Since(started).Milliseconds()
	o.logUsage(record)
	return &LookupResult{Hit: false, CacheKey: key}, nil
}

// materialize loads and recomposes the stored result behind a cache entry.
func (o *Orchestrator) materialize(ctx context.Context, app model.Application, jobID string) (map[string]any, error) {
	job, err := o.results.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusCompleted {
		return nil, apperrors.NotFoundf("job %s is %s, not completed", jobID, job.Status)
	}
	sections, err := o.sections.ListByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return section.ForApplication(app).Recompose(sections)
}

// Submit accepts an analysis for background execution and returns the job id
// immediately. Normalization runs synchronously so invalid parameters fail
// here, before anything is written. A submission for a key that is already
// being computed joins the running job unless ForceRefresh is set.
func (o *Orchestrator) Submit(ctx context.Context, app model.Application, rawParams map[string]any, fn AnalysisFunc, opts SubmitOptions) (*SubmitOutcome, error) {
	if fn == nil {
		return nil, apperrors.Validation("analysis function is required")
	}
	canonical, err := normalize.Normalize(app, rawParams)
	if err != nil {
		return nil, err
	}
	key, err := normalize.MakeKey(app, canonical)
	if err != nil {
		return nil, err
	}
	paramsJSON, err := json.Marshal(canonical)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode canonical params")
	}

	jobID := uuid.NewString()

	if opts.ForceRefresh {
		// A refresh replaces whatever is running for this key.
		o.mu.Lock()
		o.inflight[key] = jobID
		o.mu.Unlock()
	} else {
		if holder, claimed := o.claimLocal(key, jobID); !claimed {
			return &SubmitOutcome{JobID: holder, CacheKey: key, Joined: true}, nil
		}
	}

	if o.guard != nil {
		acquired, holder, guardErr := o.guard.Acquire(ctx, key, jobID, o.cfg.InflightTTL)
		switch {
		case guardErr != nil:
			// Lease failures degrade to process-local dedup only.
			o.logger.WarnContext(ctx, "in-flight lease unavailable", "cache_key", key, "error", guardErr)
		case !acquired && !opts.ForceRefresh && holder != "" && holder != jobID:
			o.releaseLocal(key, jobID)
			return &SubmitOutcome{JobID: holder, CacheKey: key, Joined: true}, nil
		}
	}

	o.progress.Start(jobID, progress.StepQueued)
	o.count("job.submitted", app)

	o.wg.Add(1)
	go o.run(runParams{
		app:        app,
		cacheKey:   key,
		jobID:      jobID,
		canonical:  canonical,
		paramsJSON: paramsJSON,
		fn:         fn,
		opts:       opts,
	})

	return &SubmitOutcome{JobID: jobID, CacheKey: key}, nil
}

// JobStatus returns the stored record for a job.
func (o *Orchestrator) JobStatus(ctx context.Context, jobID string) (*model.JobResult, error) {
	return o.results.Get(ctx, jobID)
}

// Shutdown waits for in-flight background jobs to finish or the context to
// expire.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("orchestrator shutdown: %w", ctx.Err())
	}
}

type runParams struct {
	app        model.Application
	cacheKey   string
	jobID      string
	canonical  map[string]any
	paramsJSON json.RawMessage
	fn         AnalysisFunc
	opts       SubmitOptions
}

// run executes one analysis in the background. It is detached from the
// submitting request's context: a caller disconnecting must not cancel work
// other requesters may be waiting on.
func (o *Orchestrator) run(p runParams) {
	defer o.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.JobTimeout)
	defer cancel()
	defer o.releaseLocal(p.cacheKey, p.jobID)
	defer o.releaseLease(p.cacheKey, p.jobID)

	started := time.Now()

	if err := o.results.Create(ctx, &model.JobResult{
		JobID:       p.jobID,
		Application: p.app,
		CacheKey:    p.cacheKey,
		Status:      model.JobStatusPending,
	}); err != nil {
		// Keep computing: the persist sequence re-creates the row, and the
		// fallback store covers a result store that stays down.
		o.logger.WarnContext(ctx, "job record create failed", "job_id", p.jobID, "error", err)
	}

	if err := o.results.UpdateStatus(ctx, p.jobID, model.JobStatusRunning, nil); err != nil {
		o.logger.WarnContext(ctx, "job status update failed", "job_id", p.jobID, "error", err)
	}
	o.progress.Update(p.jobID, progress.StepFetching, progress.PercentFor(p.app, progress.StepFetching), "analysis running")

	result, err := p.fn(ctx, Request{
		JobID:       p.jobID,
		Application: p.app,
		Params:      p.canonical,
		Progress: func(step, message string) {
			o.progress.Update(p.jobID, step, progress.PercentFor(p.app, step), message)
		},
	})
	if err != nil {
		o.fail(ctx, p, started, apperrors.Wrap(err, apperrors.ErrCodeAnalysisFailure, "analysis execution"))
		return
	}

	codec := section.ForApplication(p.app)
	dec, err := codec.Decompose(result)
	if err != nil {
		o.fail(ctx, p, started, err)
		return
	}
	rows, err := section.BuildRows(p.app, p.jobID, dec)
	if err != nil {
		o.fail(ctx, p, started, err)
		return
	}
	summary, err := section.EncodeSummary(dec.Summary)
	if err != nil {
		o.fail(ctx, p, started, err)
		return
	}
	manifest, err := section.EncodeManifest(dec.Manifest())
	if err != nil {
		o.fail(ctx, p, started, err)
		return
	}

	o.progress.Update(p.jobID, progress.StepPersisting, progress.PercentFor(p.app, progress.StepPersisting), "storing result")

	if p.opts.ForceRefresh {
		o.supersede(ctx, p.cacheKey, p.jobID)
	}

	if err := o.persist(ctx, p, summary, manifest, rows); err != nil {
		o.mu.Lock()
		o.fallback[p.cacheKey] = fallbackEntry{jobID: p.jobID, result: result}
		o.mu.Unlock()
		o.logger.ErrorContext(ctx, "result store unavailable, serving from process-local fallback",
			"job_id", p.jobID, "cache_key", p.cacheKey, "error", err)
		o.emitJob(p.app, metrics.ResultFallback, time.Since(started), err)
		o.progress.Complete(p.jobID, true, "")
		o.finishUsage(p, started, err.Error())
		return
	}

	o.clearFallback(p.cacheKey)
	o.progress.Complete(p.jobID, true, "")
	o.emitJob(p.app, metrics.ResultCompleted, time.Since(started), nil)
	o.finishUsage(p, started, "")
}

// persist writes the result in the fixed order: job row, summaries, sections,
// completed status, cache entry last. Each attempt is idempotent so a retry
// after a partial write converges instead of conflicting.
func (o *Orchestrator) persist(ctx context.Context, p runParams, summary, manifest json.RawMessage, rows []model.ResultSection) error {
	var err error
	for attempt := 0; attempt <= o.cfg.WriteRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(o.cfg.RetryBackoff):
			case <-ctx.Done():
				return fmt.Errorf("persist aborted: %w", ctx.Err())
			}
			o.logger.WarnContext(ctx, "retrying result write", "job_id", p.jobID, "attempt", attempt, "error", err)
		}
		if err = o.persistOnce(ctx, p, summary, manifest, rows); err == nil {
			return nil
		}
	}
	return err
}

func (o *Orchestrator) persistOnce(ctx context.Context, p runParams, summary, manifest json.RawMessage, rows []model.ResultSection) error {
	createErr := o.results.Create(ctx, &model.JobResult{
		JobID:       p.jobID,
		Application: p.app,
		CacheKey:    p.cacheKey,
		Status:      model.JobStatusRunning,
	})
	if createErr != nil && !apperrors.IsConflict(createErr) {
		return fmt.Errorf("ensure job row: %w", createErr)
	}
	if err := o.results.SetSummaries(ctx, p.jobID, summary, manifest); err != nil {
		return fmt.Errorf("write summaries: %w", err)
	}
	// Clearing first makes re-inserting after a partial failure safe.
	if err := o.sections.DeleteByJobID(ctx, p.jobID); err != nil {
		return fmt.Errorf("clear sections: %w", err)
	}
	if err := o.sections.InsertBatch(ctx, rows); err != nil {
		return fmt.Errorf("write sections: %w", err)
	}
	if err := o.results.UpdateStatus(ctx, p.jobID, model.JobStatusCompleted, nil); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}

	now := time.Now().UTC()
	entry := &model.CacheEntry{
		CacheKey:       p.cacheKey,
		Application:    p.app,
		JobID:          p.jobID,
		ParamsJSON:     p.paramsJSON,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	if hash, hashErr := normalize.ParamsHash(p.canonical); hashErr == nil {
		entry.ParamsHash = hash
	}
	if o.cfg.EntryTTL > 0 {
		expires := now.Add(o.cfg.EntryTTL)
		entry.ExpiresAt = &expires
	}
	if err := o.cache.Put(ctx, entry); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// supersede removes the previous result for a key in the reverse of write
// order, so no reader ever follows a cache entry into a half-deleted job.
// Last writer wins when two refreshes race; the losing result is orphaned,
// never served.
func (o *Orchestrator) supersede(ctx context.Context, cacheKey, newJobID string) {
	entry, err := o.cache.Get(ctx, cacheKey)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			o.logger.WarnContext(ctx, "supersede read failed", "cache_key", cacheKey, "error", err)
		}
		return
	}
	if entry.JobID == newJobID {
		return
	}
	if err := o.cache.Delete(ctx, cacheKey); err != nil {
		o.logger.WarnContext(ctx, "supersede cache delete failed", "cache_key", cacheKey, "error", err)
		return
	}
	if err := o.sections.DeleteByJobID(ctx, entry.JobID); err != nil {
		o.logger.WarnContext(ctx, "supersede section delete failed", "job_id", entry.JobID, "error", err)
	}
	if err := o.results.Delete(ctx, entry.JobID); err != nil {
		o.logger.WarnContext(ctx, "supersede job delete failed", "job_id", entry.JobID, "error", err)
	}
}

func (o *Orchestrator) fail(ctx context.Context, p runParams, started time.Time, cause error) {
	msg := cause.Error()
	if err := o.results.UpdateStatus(ctx, p.jobID, model.JobStatusFailed, &msg); err != nil {
		o.logger.WarnContext(ctx, "job failure record failed", "job_id", p.jobID, "error", err)
	}
	o.progress.Complete(p.jobID, false, msg)
	o.emitJob(p.app, metrics.ResultFailed, time.Since(started), cause)
	o.logger.ErrorContext(ctx, "analysis job failed", "job_id", p.jobID, "cache_key", p.cacheKey, "error", cause)
	o.finishUsage(p, started, msg)
}

func (o *Orchestrator) finishUsage(p runParams, started time.Time, errMsg string) {
	o.logUsage(model.UsageRecord{
		Application:    p.app,
		ParamsJSON:     p.paramsJSON,
		CacheKey:       p.cacheKey,
		JobID:          p.jobID,
		ResponseTimeMS: time.Since(started).Milliseconds(),
		ErrorMessage:   errMsg,
		RequesterClass: p.opts.RequesterClass,
		RemoteAddr:     p.opts.RemoteAddr,
	})
}

// claimLocal registers jobID as the in-process owner for a key. When another
// job already owns the key its id is returned with claimed=false.
func (o *Orchestrator) claimLocal(cacheKey, jobID string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if holder, ok := o.inflight[cacheKey]; ok {
		return holder, false
	}
	o.inflight[cacheKey] = jobID
	return jobID, true
}

// releaseLocal clears the in-process claim, but only if jobID still owns it;
// a force refresh may have taken the key over.
func (o *Orchestrator) releaseLocal(cacheKey, jobID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight[cacheKey] == jobID {
		delete(o.inflight, cacheKey)
	}
}

func (o *Orchestrator) releaseLease(cacheKey, jobID string) {
	if o.guard == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.guard.Release(ctx, cacheKey); err != nil {
		o.logger.Warn("in-flight lease release failed", "cache_key", cacheKey, "job_id", jobID, "error", err)
	}
}

func (o *Orchestrator) fallbackFor(cacheKey string) (fallbackEntry, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fb, ok := o.fallback[cacheKey]
	return fb, ok
}

// clearFallback drops the ephemeral result for a key once a durable write
// lands; the persisted result is the source of truth from here on.
func (o *Orchestrator) clearFallback(cacheKey string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.fallback, cacheKey)
}

func (o *Orchestrator) logUsage(record model.UsageRecord) {
	if o.usage == nil {
		return
	}
	if record.RequestID == "" {
		record.RequestID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	o.usage.Log(record)
}

func (o *Orchestrator) count(name string, app model.Application) {
	if o.metrics == nil {
		return
	}
	o.metrics.Count(name, 1, map[string]string{"application": string(app)})
}

func (o *Orchestrator) emitJob(app model.Application, result string, d time.Duration, cause error) {
	if o.metrics == nil {
		return
	}
	metrics.EmitAnalysisJob(o.metrics, metrics.AnalysisJob{
		Application: string(app),
		Result:      result,
		Duration:    d,
		Err:         cause,
	})
}
