package section

import (
	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
)

// newLendsightCodec configures decomposition for mortgage-lending reports.
//
// A complete lendsight result carries at least the lender table, the HHI
// trend table, the metrics block, and the executive summary; anything
// shorter is an incomplete write. Raw loan records are too large to be worth
// caching and are excluded from storage by policy.
func newLendsightCodec() Codec {
	return &appCodec{config: codecConfig{
		app:         model.AppLendsight,
		minSections: 4,
		storeRaw:    false,
		rawSections: map[string]struct{}{
			"raw_loan_records": {},
		},
		orderHint: map[string]int{
			"county_summary_table": 0,
			"lender_rankings":      1,
			"hhi_by_year":          2,
			metricsSection:         3,
			"executive_summary":    4,
		},
		summaryExprs: map[string]string{
			"counties":     "summary.counties",
			"years":        "summary.years",
			"record_count": "summary.record_count",
			"lender_count": "length(lender_rankings)",
		},
	}}
}
