package progress

import (
	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
)

// Step is one named stage of an analysis with its conventional percent.
// Progress is monotonic by convention, not enforced: a cache hit
// short-circuits straight to 100.
type Step struct {
	Name    string
	Percent int
}

// Well-known step names shared by the orchestrator and the HTTP layer.
const (
	StepQueued      = "queued"
	StepFetching    = "fetching_data"
	StepAggregating = "aggregating"
	StepNarratives  = "generating_narratives"
	StepPersisting  = "persisting"
	StepDone        = "done"
)

var defaultSteps = []Step{
	{StepQueued, 0},
	{StepFetching, 25},
	{StepAggregating, 55},
	{StepNarratives, 80},
	{StepPersisting, 95},
	{StepDone, 100},
}

var stepsByApp = map[model.Application][]Step{
	model.AppLendsight: {
		{StepQueued, 0},
		{StepFetching, 20},
		{StepAggregating, 50},
		{StepNarratives, 85},
		{StepPersisting, 95},
		{StepDone, 100},
	},
	model.AppBizsight: defaultSteps,
}

// StepsFor returns the step→percent convention for an application.
func StepsFor(app model.Application) []Step {
	if steps, ok := stepsByApp[app]; ok {
		return steps
	}
	return defaultSteps
}

// PercentFor maps a step name to its conventional percent for an
// application; unknown steps report -1 so callers can pass percents through
// explicitly.
func PercentFor(app model.Application, step string) int {
	for _, s := range StepsFor(app) {
		if s.Name == step {
			return s.Percent
		}
	}
	return -1
}
