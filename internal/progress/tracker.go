// Package progress holds live job progress state and notifies subscribers.
//
// The tracker is transport-agnostic: it keeps state and pushes events, and
// leaves polling intervals and wire formats to the HTTP layer. State is
// process-local by default; wiring a SharedStore mirrors every transition
// into a shared tier so multiple orchestrator instances observe the same
// progress.
package progress

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
	apperrors "github.com/NCRC-org/justdata-sub002/internal/errors"
)

// subscriberBuffer is sized so a slow consumer drops intermediate updates
// rather than blocking the worker; the terminal event is always delivered.
const subscriberBuffer = 16

// SharedStore mirrors progress state into a shared tier for multi-instance
// deployments.
type SharedStore interface {
	Save(ctx context.Context, state model.ProgressState) error
	Load(ctx context.Context, jobID string) (model.ProgressState, error)
}

// TrackerOptions configures a Tracker.
type TrackerOptions struct {
	// Shared, when set, receives a best-effort write-through copy of every
	// transition and serves Get misses for jobs owned by other instances.
	Shared SharedStore
	Logger *slog.Logger
	// SaveTimeout bounds each shared-store write; defaults to 2s.
	SaveTimeout time.Duration
}

// Tracker is the in-process keyed store of job progress.
type Tracker struct {
	shared      SharedStore
	logger      *slog.Logger
	saveTimeout time.Duration

	mu     sync.Mutex
	states map[string]model.ProgressState
	subs   map[string]map[chan model.ProgressState]struct{}
}

// NewTracker constructs a Tracker.
func NewTracker(opts TrackerOptions) *Tracker {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	saveTimeout := opts.SaveTimeout
	if saveTimeout <= 0 {
		saveTimeout = 2 * time.Second
	}
	return &Tracker{
		shared:      opts.Shared,
		logger:      logger,
		saveTimeout: saveTimeout,
		states:      make(map[string]model.ProgressState),
		subs:        make(map[string]map[chan model.ProgressState]struct{}),
	}
}

// Start registers a job at zero percent in the given step.
func (t *Tracker) Start(jobID, step string) {
	t.Update(jobID, step, 0, "")
}

// Update records a progress transition. Updates after the terminal state are
// ignored: done never reverts. Percent is capped at 100; a negative percent
// marks a step with no conventional percent and keeps the last reported value
// instead of regressing to zero.
func (t *Tracker) Update(jobID, step string, percent int, message string) {
	if percent > 100 {
		percent = 100
	}

	t.mu.Lock()
	current, ok := t.states[jobID]
	if ok && current.Done {
		t.mu.Unlock()
		return
	}
	if percent < 0 {
		percent = current.Percent
	}
	state := model.ProgressState{
		JobID:   jobID,
		Percent: percent,
		Step:    step,
		Message: message,
	}
	t.states[jobID] = state
	t.broadcastLocked(jobID, state)
	t.mu.Unlock()

	t.mirror(state)
}

// Complete transitions a job to its terminal state. The first call wins;
// later calls are ignored. Every subscriber is guaranteed to receive at
// least one event with Done set.
func (t *Tracker) Complete(jobID string, success bool, errMsg string) {
	t.mu.Lock()
	current, ok := t.states[jobID]
	if ok && current.Done {
		t.mu.Unlock()
		return
	}

	state := model.ProgressState{
		JobID:   jobID,
		Percent: 100,
		Step:    "done",
		Done:    true,
		Success: success,
		Error:   errMsg,
	}
	if !success && current.Step != "" {
		// Keep the step the job failed in for diagnosability.
		state.Step = current.Step
		state.Percent = current.Percent
	}
	t.states[jobID] = state
	t.broadcastTerminalLocked(jobID, state)
	t.mu.Unlock()

	t.mirror(state)
}

// Get returns the current progress for a job. Jobs unknown to this instance
// are looked up in the shared store when one is configured.
func (t *Tracker) Get(ctx context.Context, jobID string) (model.ProgressState, error) {
	t.mu.Lock()
	state, ok := t.states[jobID]
	t.mu.Unlock()
	if ok {
		return state, nil
	}

	if t.shared != nil {
		shared, err := t.shared.Load(ctx, jobID)
		if err == nil {
			return shared, nil
		}
		if !apperrors.IsNotFound(err) {
			return model.ProgressState{}, err
		}
	}
	return model.ProgressState{}, apperrors.NotFoundf("no progress for job %s", jobID)
}

// Subscribe registers a push channel for one job. The returned cancel
// function must be called when the consumer is finished. Subscribing to a
// job that already reached its terminal state immediately delivers that
// state.
func (t *Tracker) Subscribe(jobID string) (<-chan model.ProgressState, func()) {
	ch := make(chan model.ProgressState, subscriberBuffer)

	t.mu.Lock()
	if t.subs[jobID] == nil {
		t.subs[jobID] = make(map[chan model.ProgressState]struct{})
	}
	t.subs[jobID][ch] = struct{}{}
	if state, ok := t.states[jobID]; ok {
		ch <- state
	}
	t.mu.Unlock()

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		subscribers := t.subs[jobID]
		if subscribers == nil {
			return
		}
		if _, ok := subscribers[ch]; !ok {
			return
		}
		delete(subscribers, ch)
		close(ch)
		if len(subscribers) == 0 {
			delete(t.subs, jobID)
		}
	}
	return ch, cancel
}

// Forget drops local state for a finished job. Subscribers are untouched;
// callers should only forget terminal jobs after a retention window.
func (t *Tracker) Forget(jobID string) {
	t.mu.Lock()
	delete(t.states, jobID)
	t.mu.Unlock()
}

func (t *Tracker) broadcastLocked(jobID string, state model.ProgressState) {
	for ch := range t.subs[jobID] {
		select {
		case ch <- state:
		default:
			// Slow consumer: intermediate updates are droppable.
		}
	}
}

// broadcastTerminalLocked guarantees the terminal event lands even on a full
// channel by evicting the oldest buffered update first.
func (t *Tracker) broadcastTerminalLocked(jobID string, state model.ProgressState) {
	for ch := range t.subs[jobID] {
		select {
		case ch <- state:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- state:
		default:
		}
	}
}

func (t *Tracker) mirror(state model.ProgressState) {
	if t.shared == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), t.saveTimeout)
	defer cancel()
	if err := t.shared.Save(ctx, state); err != nil {
		t.logger.Warn("progress mirror failed", "job_id", state.JobID, "error", err)
	}
}
