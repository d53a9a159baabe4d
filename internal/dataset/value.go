package dataset

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Float coerces a cell value to a finite number. nil, blank strings,
// unparsable strings, NaN and ±Inf all report ok=false.
func Float(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		v = s
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// String renders a cell value for display and grouping. Numbers use their
// shortest round-trip form, so 5.0 becomes "5".
func String(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

// normalizeValue folds decoded JSON scalars into the Row.Fields value set.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case nil, string, float64, bool:
		return t
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case int:
		return float64(t)
	case int64:
		return float64(t)
	default:
		return String(t)
	}
}
