package section

import (
	"encoding/json"
	"math"
)

// floatPrecision is the number of decimal places kept for finite floats.
// The backing store's JSON parser cannot round-trip certain decimal
// expansions, so values are lossy beyond this precision. This is a
// persistence-format constraint, not a numerical-accuracy one.
const floatPrecision = 4

var floatScale = math.Pow(10, floatPrecision)

// Sanitize walks a JSON-like tree and returns a copy safe for the Result
// Store: NaN and ±Infinity become nil (never silently dropped keys), finite
// floats are rounded to floatPrecision decimal places, and negative zero is
// normalized to zero. Maps and slices are copied; all other values pass
// through unchanged.
func Sanitize(value any) any {
	switch v := value.(type) {
	case float64:
		return sanitizeFloat(v)
	case float32:
		return sanitizeFloat(float64(v))
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return sanitizeFloat(f)
		}
		return v.String()
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = Sanitize(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Sanitize(item)
		}
		return out
	default:
		return value
	}
}

func sanitizeFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	rounded := math.Round(f*floatScale) / floatScale
	if rounded == 0 {
		// Collapse -0.0 so equivalent results hash and compare identically.
		return 0.0
	}
	return rounded
}
