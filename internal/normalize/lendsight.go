package normalize

import (
	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
)

// lendsightRules canonicalizes mortgage-lending analysis parameters.
//
// Fields that matter for cache identity: counties, years, loan_purpose,
// metric. Everything else is dropped so presentation-only knobs never split
// the cache.
type lendsightRules struct{}

func (lendsightRules) Application() model.Application { return model.AppLendsight }

func (lendsightRules) Normalize(raw map[string]any) (map[string]any, error) {
	canonical := make(map[string]any, 4)

	counties, err := countyList(raw)
	if err != nil {
		return nil, err
	}
	if counties != nil {
		canonical["counties"] = counties
	}

	years, err := yearList(raw)
	if err != nil {
		return nil, err
	}
	if years != nil {
		canonical["years"] = years
	}

	loanPurpose, err := optionalChoice(raw, "loan_purpose", "all", "")
	if err != nil {
		return nil, err
	}
	canonical["loan_purpose"] = loanPurpose

	// "auto" picks the concentration metric the report would choose anyway,
	// so it must hash identically to an explicit "hhi".
	metric, err := optionalChoice(raw, "metric", "hhi", "hhi")
	if err != nil {
		return nil, err
	}
	canonical["metric"] = metric

	return canonical, nil
}
