package section

import (
	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
)

// newBizsightCodec configures decomposition for small-business lending
// reports. Bizsight keeps its raw transaction extract cacheable because the
// CRA datasets are county-scoped and small.
func newBizsightCodec() Codec {
	return &appCodec{config: codecConfig{
		app:         model.AppBizsight,
		minSections: 3,
		storeRaw:    true,
		rawSections: map[string]struct{}{
			"raw_records": {},
		},
		orderHint: map[string]int{
			"county_summary_table": 0,
			"hhi_by_year":          1,
			metricsSection:         2,
			"executive_summary":    3,
		},
		summaryExprs: map[string]string{
			"counties":     "summary.counties",
			"years":        "summary.years",
			"record_count": "summary.record_count",
		},
	}}
}
