// Package metrics emits standardized analysis-job lifecycle metrics.
package metrics

import (
	"time"

	obserrors "github.com/NCRC-org/justdata-sub002/internal/observability/errors"
	"github.com/NCRC-org/justdata-sub002/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultCompleted = "completed"
	ResultFailed    = "failed"
	// ResultFallback marks a job whose result was computed but could not be
	// persisted and is served from the process-local fallback store.
	ResultFallback = "fallback"
)

// AnalysisJob captures one finished background analysis for metric emission.
type AnalysisJob struct {
	Application string
	Result      string
	Duration    time.Duration
	Err         error
}

// EmitAnalysisJob emits the per-job counter and, when a duration is known,
// the duration timing. Both carry application and result tags; failures add
// an error_class tag.
func EmitAnalysisJob(sink statsd.Sink, in AnalysisJob) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"application": in.Application,
		"result":      in.Result,
	}
	if in.Err != nil {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("job."+in.Result, 1, tags)

	if in.Duration > 0 {
		sink.Timing("job.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
