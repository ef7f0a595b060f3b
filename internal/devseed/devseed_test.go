package devseed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NCRC-org/justdata-sub002/internal/core"
	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
	httpx "github.com/NCRC-org/justdata-sub002/internal/http"
	"github.com/NCRC-org/justdata-sub002/internal/section"
)

// Sample analyses must produce results that pass each application's
// fail-closed decomposition threshold, or the dev path would cache nothing.
func TestSampleAnalyses_DecomposeCleanly(t *testing.T) {
	t.Parallel()

	registry := httpx.NewAnalysisRegistry()
	RegisterSampleAnalyses(registry, core.NarrativeOptions{})

	params := map[string]any{
		"counties": []string{"Alameda, CA", "Cook, IL"},
		"years":    []int{2020, 2021},
	}

	for _, app := range []model.Application{model.AppLendsight, model.AppBizsight} {
		t.Run(string(app), func(t *testing.T) {
			t.Parallel()

			fn := registry.ForApplication(app)
			require.NotNil(t, fn)

			var steps []string
			result, err := fn(context.Background(), core.Request{
				JobID:       "job-sample",
				Application: app,
				Params:      params,
				Progress:    func(step, _ string) { steps = append(steps, step) },
			})
			require.NoError(t, err)
			assert.NotEmpty(t, steps)

			codec := section.ForApplication(app)
			dec, err := codec.Decompose(result)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(dec.Sections), codec.MinSections())
			assert.Equal(t, string(app), dec.Summary["application"])
		})
	}
}
