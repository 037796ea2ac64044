package snapshot

import (
	"math"
	"snapshotd/internal/models"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// toNumber coerces v to a channel value. Anything that is not a finite
// number, overflow included, becomes NaN: infinities have no JSON form and
// would read back as NaN anyway.
func toNumber(v any) models.Number {
	f, ok := parseNumber(v)
	if !ok || math.IsInf(f, 0) {
		return models.NaN()
	}
	return models.Number(f)
}

func parseNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case nil, []any, map[string]any:
		return 0, false
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	f, err := cast.ToFloat64E(v)
	return f, err == nil
}

func toText(v any) string {
	switch x := v.(type) {
	case float64:
		return formatNumber(x)
	case []any, map[string]any:
		return compactJSON(x)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return compactJSON(v)
	}
	return s
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if f == 0 {
		return "0"
	}
	// Plain notation inside [1e-6, 1e21), exponent form outside it.
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		out := strconv.FormatFloat(f, 'e', -1, 64)
		out = strings.Replace(out, "e+0", "e+", 1)
		return strings.Replace(out, "e-0", "e-", 1)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
