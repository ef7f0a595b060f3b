// Package section decomposes heterogeneous analysis results into named,
// typed, independently serializable sections and reassembles them losslessly
// on read.
//
// Decomposition rules are registered per application. All rule sets share the
// same invariants: floats are sanitized before storage, tabular collections
// become one data_table section each, narrative maps are flattened into
// prefixed sections, and recomposition fails closed when fewer than the
// per-application minimum section count is present.
package section

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/NCRC-org/justdata-sub002/internal/domain/model"
	apperrors "github.com/NCRC-org/justdata-sub002/internal/errors"
)

// narrativePrefix names flattened narrative sections; a "narratives" map
// entry keyed "hhi_by_year" is stored as section "narrative_hhi_by_year" and
// reassembled on read by reversing the convention.
const narrativePrefix = "narrative_"

// narrativesKey is the top-level result key holding narratives-by-section.
const narrativesKey = "narratives"

// metricsSection gathers scalar metrics and small structured values that do
// not warrant a section of their own.
const metricsSection = "metrics"

const (
	categoryTables     = "tables"
	categoryMetrics    = "metrics"
	categoryAIInsights = "ai_insights"
	categoryRaw        = "raw"
)

// Section is one decomposed fragment before persistence identifiers are
// assigned. Data is already sanitized and JSON-marshalable.
type Section struct {
	Name     string
	Type     model.SectionType
	Category string
	Data     any
	Metadata map[string]any
	Order    int
}

// Decomposition is the full output of decomposing one analysis result.
type Decomposition struct {
	// Summary is the small always-present result_summary blob.
	Summary map[string]any
	// Sections are ordered by display order.
	Sections []Section
}

// Manifest derives the sections_summary manifest from the decomposition.
func (d *Decomposition) Manifest() []model.SectionManifestEntry {
	entries := make([]model.SectionManifestEntry, len(d.Sections))
	for i, s := range d.Sections {
		entries[i] = model.SectionManifestEntry{
			Name:         s.Name,
			Type:         s.Type,
			Category:     s.Category,
			DisplayOrder: s.Order,
		}
	}
	return entries
}

// Codec decomposes and recomposes analysis results for one application.
type Codec interface {
	// Application reports which application the codec belongs to.
	Application() model.Application

	// Decompose splits a JSON-like result tree into sanitized sections plus
	// the result summary. The input is not mutated.
	Decompose(result map[string]any) (*Decomposition, error)

	// Recompose reassembles the original (sanitized) result from stored
	// sections. Returns an incomplete-cache-hit AppError when fewer than
	// MinSections sections are present.
	Recompose(sections []model.ResultSection) (map[string]any, error)

	// MinSections is the fail-closed threshold: a stored job with fewer
	// sections is treated as an incomplete write, never a hit.
	MinSections() int
}

var (
	registryMu sync.RWMutex
	registry   = make(map[model.Application]Codec)
)

// Register installs a codec for its application, replacing any previous
// registration.
func Register(codec Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[codec.Application()] = codec
}

// ForApplication returns the registered codec, or a permissive generic codec
// for unknown applications.
func ForApplication(app model.Application) Codec {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if codec, ok := registry[app]; ok {
		return codec
	}
	return &appCodec{config: codecConfig{app: app, minSections: 1, storeRaw: true}}
}

func init() {
	Register(newLendsightCodec())
	Register(newBizsightCodec())
}

// codecConfig parameterizes the shared decomposition rules per application.
type codecConfig struct {
	app model.Application

	// minSections is the fail-closed recomposition threshold.
	minSections int

	// orderHint assigns display positions to known section names; unknown
	// names sort after all hinted ones, alphabetically.
	orderHint map[string]int

	// rawSections names top-level keys stored as raw_data.
	rawSections map[string]struct{}

	// storeRaw controls whether raw_data sections are persisted at all.
	// Oversized raw payloads are excluded by policy for some applications;
	// recomposition tolerates their absence.
	storeRaw bool

	// summaryExprs are JMESPath expressions evaluated against the sanitized
	// result to build result_summary.
	summaryExprs map[string]string
}

// appCodec implements Codec over a codecConfig.
type appCodec struct {
	config codecConfig
}

func (c *appCodec) Application() model.Application { return c.config.app }

func (c *appCodec) MinSections() int { return c.config.minSections }

func (c *appCodec) Decompose(result map[string]any) (*Decomposition, error) {
	sanitized, ok := Sanitize(result).(map[string]any)
	if !ok {
		return nil, apperrors.Internal("sanitized result is not an object")
	}

	var sections []Section
	metrics := make(map[string]any)

	for key, value := range sanitized {
		switch {
		case key == narrativesKey:
			narrativeSections, err := c.flattenNarratives(value)
			if err != nil {
				return nil, err
			}
			if len(narrativeSections) == 0 {
				// An empty narratives object yields no sections to reverse
				// the flattening from; carry it in metrics so the key still
				// survives the round trip.
				metrics[key] = value
				continue
			}
			sections = append(sections, narrativeSections...)

		case c.isRawSection(key):
			if !c.config.storeRaw {
				continue
			}
			sections = append(sections, Section{
				Name:     key,
				Type:     model.SectionTypeRawData,
				Category: categoryRaw,
				Data:     value,
			})

		case isNarrativeText(key, value):
			text, _ := value.(string)
			sections = append(sections, Section{
				Name:     key,
				Type:     model.SectionTypeAISummary,
				Category: categoryAIInsights,
				Data:     map[string]any{"text": text},
			})

		case isTable(value):
			rows, _ := value.([]any)
			sections = append(sections, Section{
				Name:     key,
				Type:     model.SectionTypeDataTable,
				Category: categoryTables,
				Data:     value,
				Metadata: tableMetadata(rows),
			})

		default:
			metrics[key] = value
		}
	}

	if len(metrics) > 0 {
		sections = append(sections, Section{
			Name:     metricsSection,
			Type:     model.SectionTypeMetadata,
			Category: categoryMetrics,
			Data:     metrics,
		})
	}

	c.orderSections(sections)

	summary, err := c.buildSummary(sanitized, len(sections))
	if err != nil {
		return nil, err
	}

	return &Decomposition{Summary: summary, Sections: sections}, nil
}

func (c *appCodec) Recompose(sections []model.ResultSection) (map[string]any, error) {
	if len(sections) < c.config.minSections {
		return nil, apperrors.IncompleteCacheHitf(
			"application %s requires at least %d sections, found %d",
			c.config.app, c.config.minSections, len(sections))
	}

	ordered := make([]model.ResultSection, len(sections))
	copy(ordered, sections)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DisplayOrder < ordered[j].DisplayOrder
	})

	result := make(map[string]any)
	for _, s := range ordered {
		var data any
		if len(s.SectionData) > 0 {
			if err := json.Unmarshal(s.SectionData, &data); err != nil {
				return nil, apperrors.Wrapf(err, apperrors.ErrCodeInternal,
					"decode section %q for job %s", s.SectionName, s.JobID)
			}
		}

		switch s.SectionType {
		case model.SectionTypeAINarrative:
			if !strings.HasPrefix(s.SectionName, narrativePrefix) {
				return nil, apperrors.Internalf("narrative section %q missing %q prefix", s.SectionName, narrativePrefix)
			}
			narratives, ok := result[narrativesKey].(map[string]any)
			if !ok {
				narratives = make(map[string]any)
				result[narrativesKey] = narratives
			}
			narratives[strings.TrimPrefix(s.SectionName, narrativePrefix)] = narrativeText(data)

		case model.SectionTypeAISummary:
			result[s.SectionName] = narrativeText(data)

		case model.SectionTypeMetadata:
			if s.SectionName == metricsSection {
				merged, ok := data.(map[string]any)
				if !ok {
					return nil, apperrors.Internalf("metrics section for job %s is not an object", s.JobID)
				}
				for key, value := range merged {
					result[key] = value
				}
				continue
			}
			result[s.SectionName] = data

		default:
			result[s.SectionName] = data
		}
	}
	return result, nil
}

func (c *appCodec) isRawSection(name string) bool {
	_, ok := c.config.rawSections[name]
	return ok
}

func (c *appCodec) flattenNarratives(value any) ([]Section, error) {
	byKey, ok := value.(map[string]any)
	if !ok {
		return nil, apperrors.Internalf("%s must be an object of text blocks, got %T", narrativesKey, value)
	}

	sections := make([]Section, 0, len(byKey))
	for key, item := range byKey {
		text, ok := item.(string)
		if !ok {
			return nil, apperrors.Internalf("narrative %q must be a string, got %T", key, item)
		}
		sections = append(sections, Section{
			Name:     narrativePrefix + key,
			Type:     model.SectionTypeAINarrative,
			Category: categoryAIInsights,
			Data:     map[string]any{"text": text},
		})
	}
	return sections, nil
}

// orderSections assigns display order: hinted names first in hint order, then
// the rest alphabetically.
func (c *appCodec) orderSections(sections []Section) {
	sort.SliceStable(sections, func(i, j int) bool {
		hi, iHinted := c.config.orderHint[sections[i].Name]
		hj, jHinted := c.config.orderHint[sections[j].Name]
		switch {
		case iHinted && jHinted:
			return hi < hj
		case iHinted:
			return true
		case jHinted:
			return false
		default:
			return sections[i].Name < sections[j].Name
		}
	})
	for i := range sections {
		sections[i].Order = i
	}
}

func (c *appCodec) buildSummary(sanitized map[string]any, sectionCount int) (map[string]any, error) {
	summary := map[string]any{
		"application":   string(c.config.app),
		"section_count": sectionCount,
	}
	for field, expr := range c.config.summaryExprs {
		value, err := jmespath.Search(expr, sanitized)
		if err != nil {
			return nil, fmt.Errorf("evaluate summary expression %q: %w", field, err)
		}
		if value != nil {
			summary[field] = value
		}
	}
	return summary, nil
}

// isTable reports whether a value is a homogeneous tabular collection: a
// slice whose elements, if any, are objects.
func isTable(value any) bool {
	rows, ok := value.([]any)
	if !ok {
		return false
	}
	for _, row := range rows {
		if _, isObject := row.(map[string]any); !isObject {
			return false
		}
	}
	return true
}

// isNarrativeText reports whether a top-level string field is narrative prose
// rather than a scalar metric. Only known narrative field names qualify.
func isNarrativeText(key string, value any) bool {
	if _, ok := value.(string); !ok {
		return false
	}
	return key == "executive_summary"
}

// tableMetadata records row count and column manifest so tables can be
// inspected without deserializing section_data.
func tableMetadata(rows []any) map[string]any {
	meta := map[string]any{"row_count": len(rows)}
	if len(rows) > 0 {
		if first, ok := rows[0].(map[string]any); ok {
			columns := make([]string, 0, len(first))
			for column := range first {
				columns = append(columns, column)
			}
			sort.Strings(columns)
			meta["columns"] = columns
		}
	}
	return meta
}

// narrativeText unwraps a stored {text: string} section payload.
func narrativeText(data any) any {
	if wrapper, ok := data.(map[string]any); ok {
		if text, ok := wrapper["text"]; ok {
			return text
		}
	}
	return data
}
