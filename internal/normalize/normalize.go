// Package normalize maps raw, user-supplied analysis parameters into the
// canonical order-independent representation used for cache keying.
//
// Rule sets are registered per application. Normalization is pure: it never
// performs I/O and never silently substitutes a default that changes
// correctness-relevant meaning (an invalid year range is an error, not
// "auto").
package normalize

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
	apperrors "github.com/NCRC-org/justdata-sub002/internal/errors"
)

// Rules canonicalizes raw parameters for one application.
type Rules interface {
	// Application reports which application the rule set belongs to.
	Application() model.Application

	// Normalize maps a raw parameter bag into its canonical form. The result
	// is order-independent: semantically identical inputs normalize to deeply
	// equal maps. Returns a validation AppError for malformed input.
	Normalize(raw map[string]any) (map[string]any, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[model.Application]Rules)
)

// Register installs a rule set for its application, replacing any previous
// registration. Called from init or bootstrap; adding an application is a
// registration, not a new branch.
func Register(rules Rules) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[rules.Application()] = rules
}

// ForApplication returns the registered rule set, or the permissive default
// rules for unknown applications.
func ForApplication(app model.Application) Rules {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if rules, ok := registry[app]; ok {
		return rules
	}
	return defaultRules{app: app}
}

// Normalize is the package-level entry point: it selects the rule set for the
// application and canonicalizes the raw parameters.
func Normalize(app model.Application, raw map[string]any) (map[string]any, error) {
	return ForApplication(app).Normalize(raw)
}

func init() {
	Register(lendsightRules{})
	Register(bizsightRules{})
}

// defaultRules is the fallback for unregistered applications: trim and
// lowercase top-level strings and sort string slices. Deliberately minimal.
type defaultRules struct {
	app model.Application
}

func (d defaultRules) Application() model.Application { return d.app }

func (d defaultRules) Normalize(raw map[string]any) (map[string]any, error) {
	canonical := make(map[string]any, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			canonical[key] = canonicalString(v)
		case []any:
			canonical[key] = canonicalAnySlice(v)
		case []string:
			canonical[key] = canonicalStringSlice(v)
		default:
			canonical[key] = value
		}
	}
	return canonical, nil
}

// canonicalString trims and lowercases a string value.
func canonicalString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// canonicalStringSlice trims, lowercases, dedupes and sorts.
func canonicalStringSlice(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		c := canonicalString(s)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// canonicalAnySlice canonicalizes a decoded-JSON slice. All-string slices are
// treated as order-irrelevant sets; mixed slices are left in caller order.
func canonicalAnySlice(in []any) any {
	strs := make([]string, 0, len(in))
	for _, v := range in {
		s, ok := v.(string)
		if !ok {
			return in
		}
		strs = append(strs, s)
	}
	return canonicalStringSlice(strs)
}

// stringList coerces a raw value into a []string, accepting a bare string,
// []string, or []any of strings.
func stringList(field string, value any) ([]string, error) {
	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, apperrors.ValidationField(field, fmt.Sprintf("expected strings, got %T", item))
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, apperrors.ValidationField(field, fmt.Sprintf("expected string or list of strings, got %T", value))
	}
}

// parseYear coerces a raw year value (JSON number, int, or digit string) into
// an int and range-checks it.
func parseYear(field string, value any) (int, error) {
	var year int
	switch v := value.(type) {
	case int:
		year = v
	case int64:
		year = int(v)
	case float64:
		year = int(v)
		if float64(year) != v {
			return 0, apperrors.ValidationField(field, fmt.Sprintf("year must be a whole number, got %v", v))
		}
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, apperrors.ValidationField(field, fmt.Sprintf("year is not parseable: %q", v))
		}
		year = parsed
	default:
		return 0, apperrors.ValidationField(field, fmt.Sprintf("unsupported year type %T", value))
	}

	if year < 1990 || year > 2100 {
		return 0, apperrors.ValidationField(field, fmt.Sprintf("year %d out of range [1990, 2100]", year))
	}
	return year, nil
}

// yearList normalizes either an explicit years list or a start_year/end_year
// pair into a sorted, deduplicated slice of covered years. Ranges provided as
// separate start/end fields become the explicit list of covered units.
func yearList(raw map[string]any) ([]int, error) {
	if value, ok := raw["years"]; ok {
		items, ok := value.([]any)
		if !ok {
			if ints, isInts := value.([]int); isInts {
				items = make([]any, len(ints))
				for i, y := range ints {
					items[i] = y
				}
			} else {
				return nil, apperrors.ValidationField("years", fmt.Sprintf("expected list of years, got %T", value))
			}
		}
		years := make([]int, 0, len(items))
		for _, item := range items {
			year, err := parseYear("years", item)
			if err != nil {
				return nil, err
			}
			years = append(years, year)
		}
		return dedupeYears(years), nil
	}

	startRaw, hasStart := raw["start_year"]
	endRaw, hasEnd := raw["end_year"]
	if !hasStart && !hasEnd {
		return nil, nil
	}
	if !hasStart || !hasEnd {
		return nil, apperrors.Validation("start_year and end_year must be provided together")
	}

	start, err := parseYear("start_year", startRaw)
	if err != nil {
		return nil, err
	}
	end, err := parseYear("end_year", endRaw)
	if err != nil {
		return nil, err
	}
	if end < start {
		return nil, apperrors.Validationf("end_year %d precedes start_year %d", end, start)
	}

	years := make([]int, 0, end-start+1)
	for y := start; y <= end; y++ {
		years = append(years, y)
	}
	return years, nil
}

func dedupeYears(in []int) []int {
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, y := range in {
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// countyList normalizes a "county" string or "counties" list into a sorted
// set. County order is semantically irrelevant for every JustData analysis.
func countyList(raw map[string]any) ([]string, error) {
	value, ok := raw["counties"]
	field := "counties"
	if !ok {
		value, ok = raw["county"]
		field = "county"
	}
	if !ok {
		return nil, nil
	}

	list, err := stringList(field, value)
	if err != nil {
		return nil, err
	}
	canonical := canonicalStringSlice(list)
	if len(canonical) == 0 {
		return nil, apperrors.ValidationField(field, "at least one county is required when the field is present")
	}
	return canonical, nil
}

// optionalChoice canonicalizes an optional enum-ish field, applying the
// deterministic default when absent or "auto" resolves to the same value an
// explicit caller would send.
func optionalChoice(raw map[string]any, field, defaultValue string, autoResolves string) (string, error) {
	value, ok := raw[field]
	if !ok {
		return defaultValue, nil
	}
	s, isString := value.(string)
	if !isString {
		return "", apperrors.ValidationField(field, fmt.Sprintf("expected string, got %T", value))
	}
	c := canonicalString(s)
	if c == "" {
		return defaultValue, nil
	}
	if c == "auto" && autoResolves != "" {
		return autoResolves, nil
	}
	return c, nil
}
