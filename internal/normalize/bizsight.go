package normalize

import (
	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
)

// bizsightRules canonicalizes small-business lending analysis parameters.
//
// Fields that matter for cache identity: counties, years, loan_type.
type bizsightRules struct{}

func (bizsightRules) Application() model.Application { return model.AppBizsight }

func (bizsightRules) Normalize(raw map[string]any) (map[string]any, error) {
	canonical := make(map[string]any, 3)

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

	loanType, err := optionalChoice(raw, "loan_type", "all", "all")
	if err != nil {
		return nil, err
	}
	canonical["loan_type"] = loanType

	return canonical, nil
}
