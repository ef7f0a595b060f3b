package core

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// NarrativeCall is one named narrative generation task, typically a call out
// to a text-generation backend.
type NarrativeCall struct {
	Name     string
	Generate func(ctx context.Context) (string, error)
}

// NarrativeOptions tunes RunNarratives.
type NarrativeOptions struct {
	// Timeout bounds each individual call.
	Timeout time.Duration
	// Concurrency caps how many calls run at once.
	Concurrency int
	Logger      *slog.Logger
}

func (o *NarrativeOptions) applyDefaults() {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// RunNarratives fans out narrative generation calls concurrently and collects
// their texts by name. Narratives are decorative relative to the numeric
// result, so a call that times out or errors degrades to an empty string for
// its name rather than failing the analysis.
func RunNarratives(ctx context.Context, calls []NarrativeCall, opts NarrativeOptions) map[string]string {
	opts.applyDefaults()

	out := make([]string, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, call := range calls {
		if call.Generate == nil {
			continue
		}
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, opts.Timeout)
			defer cancel()

			text, err := call.Generate(callCtx)
			if err != nil {
				opts.Logger.WarnContext(callCtx, "narrative generation degraded",
					"narrative", call.Name, "error", err)
				return nil
			}
			out[i] = text
			return nil
		})
	}
	// Individual failures are swallowed above, so Wait only observes context
	// cancellation of the whole group.
	_ = g.Wait()

	narratives := make(map[string]string, len(calls))
	for i, call := range calls {
		narratives[call.Name] = out[i]
	}
	return narratives
}
