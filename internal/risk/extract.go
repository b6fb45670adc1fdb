package risk

import (
	"math"
	"sort"
	"strings"
)

// Raster no-data sentinels vary by publisher; anything at or beyond these
// bounds is treated as missing rather than measured.
const (
	noDataFloor   = -9990.0
	noDataCeiling = 1e30
)

// IsNoData reports whether v is a no-data sentinel rather than a measurement.
func IsNoData(v float64) bool {
	return v <= noDataFloor || v >= noDataCeiling
}

// sortedKeys gives a stable visit order over decoded GeoJSON properties.
func sortedKeys(props Properties) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// asNumber unwraps the numeric shapes a decoded GeoJSON property can take.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// extractorIgnoreKeys filters out identifier-like fields that carry numbers
// but no signal.
var extractorIgnoreKeys = []string{"id", "code", "shape", "fid"}

// ExtractNumeric scans props for the first plausible numeric signal, skipping
// identifier-like keys and no-data sentinels. Keys are visited in sorted
// order so the result does not depend on map iteration. Returns the value,
// the key it came from, and whether anything was found.
func ExtractNumeric(props Properties) (float64, string, bool) {
	for _, key := range sortedKeys(props) {
		value, ok := asNumber(props[key])
		if !ok {
			continue
		}
		keyLower := strings.ToLower(key)
		ignored := false
		for _, pattern := range extractorIgnoreKeys {
			if strings.Contains(keyLower, pattern) {
				ignored = true
				break
			}
		}
		if ignored {
			continue
		}
		if IsNoData(value) {
			continue
		}
		return value, key, true
	}
	return 0, "", false
}

// textBlob joins all string property values lowercased, for qualitative
// vocabulary matching.
func textBlob(props Properties) string {
	var parts []string
	for _, key := range sortedKeys(props) {
		if s, ok := props[key].(string); ok {
			parts = append(parts, strings.ToLower(s))
		}
	}
	return strings.Join(parts, " ")
}

// round1, round2, round3 round to fixed decimal places for presentation.
func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
