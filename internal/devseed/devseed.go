// Package devseed registers synthetic analysis functions for local
// development. Production deployments register real analyses at bootstrap;
// the samples here exercise the full submit/progress/cache path without any
// upstream data dependencies.
package devseed

import (
	"context"
	"fmt"

	"github.com/NCRC-org/justdata-sub002/internal/core"
	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
	httpx "github.com/NCRC-org/justdata-sub002/internal/http"
	"github.com/NCRC-org/justdata-sub002/internal/progress"
)

// RegisterSampleAnalyses installs deterministic sample analyses for every
// known application. The narrative options are the same ones real analyses
// receive at bootstrap.
func RegisterSampleAnalyses(registry *httpx.AnalysisRegistry, narr core.NarrativeOptions) {
	registry.Register(model.AppLendsight, sampleLendsight(narr))
	registry.Register(model.AppBizsight, sampleBizsight(narr))
	if narr.Logger != nil {
		narr.Logger.Info("registered sample analyses",
			"applications", []string{string(model.AppLendsight), string(model.AppBizsight)})
	}
}

func sampleLendsight(narr core.NarrativeOptions) core.AnalysisFunc {
	return func(ctx context.Context, req core.Request) (map[string]any, error) {
		counties := stringList(req.Params["counties"])
		years := yearList(req.Params["years"])

		req.Progress(progress.StepAggregating, "aggregating sample loan records")

		countyTable := make([]any, 0, len(counties))
		for _, county := range counties {
			countyTable = append(countyTable, map[string]any{
				"county":      county,
				"loan_count":  1200.0,
				"median_loan": 285000.0,
			})
		}
		hhiTable := make([]any, 0, len(years))
		for _, year := range years {
			hhiTable = append(hhiTable, map[string]any{"year": year, "hhi": 1850.0})
		}

		req.Progress(progress.StepNarratives, "generating sample narratives")
		narratives := sampleNarratives(ctx, narr, map[string]string{
			"hhi_by_year":     "Lender concentration held steady across the selected years.",
			"lender_rankings": "The top five lenders originated a majority of loans in every county.",
		})

		return map[string]any{
			"county_summary_table": countyTable,
			"lender_rankings": []any{
				map[string]any{"lender": "Sample Bank", "rank": 1.0, "share": 0.21},
				map[string]any{"lender": "Example Credit Union", "rank": 2.0, "share": 0.14},
			},
			"hhi_by_year":       hhiTable,
			"top_lender_share":  0.21,
			"executive_summary": fmt.Sprintf("Sample mortgage-lending report covering %d counties.", len(counties)),
			"narratives":        narratives,
			"summary": map[string]any{
				"counties":     req.Params["counties"],
				"years":        req.Params["years"],
				"record_count": float64(len(counties) * 1200),
			},
		}, nil
	}
}

func sampleBizsight(narr core.NarrativeOptions) core.AnalysisFunc {
	return func(ctx context.Context, req core.Request) (map[string]any, error) {
		counties := stringList(req.Params["counties"])
		years := yearList(req.Params["years"])

		req.Progress(progress.StepAggregating, "aggregating sample CRA records")

		countyTable := make([]any, 0, len(counties))
		rawRecords := make([]any, 0, len(counties))
		for _, county := range counties {
			countyTable = append(countyTable, map[string]any{
				"county":         county,
				"business_loans": 430.0,
				"total_amount":   18500000.0,
			})
			rawRecords = append(rawRecords, map[string]any{
				"county": county,
				"amount": 125000.0,
			})
		}
		hhiTable := make([]any, 0, len(years))
		for _, year := range years {
			hhiTable = append(hhiTable, map[string]any{"year": year, "hhi": 2100.0})
		}

		req.Progress(progress.StepNarratives, "generating sample narratives")
		narratives := sampleNarratives(ctx, narr, map[string]string{
			"hhi_by_year": "Small-business lending concentration rose modestly over the period.",
		})

		return map[string]any{
			"county_summary_table": countyTable,
			"hhi_by_year":          hhiTable,
			"raw_records":          rawRecords,
			"executive_summary":    fmt.Sprintf("Sample small-business lending report covering %d counties.", len(counties)),
			"narratives":           narratives,
			"summary": map[string]any{
				"counties":     req.Params["counties"],
				"years":        req.Params["years"],
				"record_count": float64(len(counties) * 430),
			},
		}, nil
	}
}

// sampleNarratives routes canned text through the narrative fan-out so the
// dev path exercises the same concurrency helper real analyses use.
func sampleNarratives(ctx context.Context, narr core.NarrativeOptions, texts map[string]string) map[string]any {
	calls := make([]core.NarrativeCall, 0, len(texts))
	for name, text := range texts {
		calls = append(calls, core.NarrativeCall{
			Name: name,
			Generate: func(context.Context) (string, error) {
				return text, nil
			},
		})
	}
	generated := core.RunNarratives(ctx, calls, narr)
	narratives := make(map[string]any, len(generated))
	for name, text := range generated {
		narratives[name] = text
	}
	return narratives
}

// stringList tolerates both canonical ([]string) and JSON-decoded ([]any)
// parameter shapes.
func stringList(value any) []string {
	switch items := value.(type) {
	case []string:
		return items
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func yearList(value any) []int {
	switch items := value.(type) {
	case []int:
		return items
	case []any:
		out := make([]int, 0, len(items))
		for _, item := range items {
			if f, ok := item.(float64); ok {
				out = append(out, int(f))
			}
		}
		return out
	default:
		return nil
	}
}
