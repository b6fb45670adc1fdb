package risk

import "strings"

// Noise and air thresholds (inclusive upper bounds), aligned with WHO 2021
// guidance for Lden road noise, PM2.5 and NO2 annual means.
const (
	NoiseLowMaxDB    = 53.0
	NoiseMediumMaxDB = 63.0

	PM25LowMax    = 5.0
	PM25MediumMax = 10.0

	NO2LowMax    = 10.0
	NO2MediumMax = 20.0
)

// Classification is the outcome of one classifier rule: the level, the
// numeric value when one backs the decision, a human-auditable signal, and
// the name of the rule that fired (for calibration logging).
type Classification struct {
	Level  Level
	Value  *float64
	Signal string
	Rule   string
}

func classified(level Level, value float64, signal, rule string) Classification {
	return Classification{Level: level, Value: &value, Signal: signal, Rule: rule}
}

func labeled(level Level, signal, rule string) Classification {
	return Classification{Level: level, Signal: signal, Rule: rule}
}

var unclassified = Classification{Level: LevelUnavailable, Rule: "none"}

// ClassifyHeat maps one sampled heat layer's properties to a risk level.
// Rules run in fixed priority order: the national heat index raster, then
// qualitative Dutch vocabulary, then numeric heuristics keyed on the field
// name and value range.
func ClassifyHeat(props Properties, layer string) Classification {
	if len(props) == 0 {
		return unclassified
	}

	if strings.Contains(strings.ToLower(layer), "hittestress_warme_nachten_huidig") {
		if raw, ok := asNumber(props["GRAY_INDEX"]); ok {
			if IsNoData(raw) {
				return unclassified
			}
			return classified(Classify(raw, 0.65, 0.8), round3(raw), "heat index", "heat-index-raster")
		}
	}

	text := textBlob(props)
	switch {
	case strings.Contains(text, "zeer hoog") || strings.Contains(text, "hoge urgentie"):
		return labeled(LevelHigh, "very high", "heat-text")
	case strings.Contains(text, "hoog"):
		return labeled(LevelHigh, "high", "heat-text")
	case strings.Contains(text, "matig") || strings.Contains(text, "middel"):
		return labeled(LevelMedium, "moderate", "heat-text")
	case strings.Contains(text, "laag"):
		return labeled(LevelLow, "low", "heat-text")
	}

	value, key, ok := ExtractNumeric(props)
	if !ok {
		return unclassified
	}

	keyLower := strings.ToLower(key)
	if strings.Contains(keyLower, "score") || strings.Contains(keyLower, "broos") || strings.Contains(keyLower, "ouder") {
		return classified(Classify(value, 15.0, 25.0), round2(value), key, "heat-score")
	}
	if value >= 0.0 && value <= 1.0 {
		return classified(Classify(value, 0.65, 0.8), round3(value), key, "heat-unit-interval")
	}
	return classified(Classify(value, 10.0, 20.0), round2(value), key, "heat-generic")
}

// waterClassFields and waterFloodFields are checked in this exact order; the
// upstream schemas publish several variants side by side.
var (
	waterClassFields = []string{"klasse_20", "klasse_50", "klasse_200", "klasse_0"}
	waterFloodFields = []string{"overstromi", "overstro_1", "overstro_2", "overstro_3"}
)

// ClassifyWater maps one sampled water layer's properties to a risk level.
// The rule ladder: road passability text, ordinal class fields, flood
// probability fields, damage-impact labels, GRIDCODE, ror, then a generic
// numeric fallback with depth-aware thresholds.
func ClassifyWater(props Properties) Classification {
	if len(props) == 0 {
		return unclassified
	}

	for _, key := range sortedKeys(props) {
		if !strings.Contains(strings.ToLower(key), "begaan") {
			continue
		}
		raw, ok := props[key].(string)
		if !ok {
			continue
		}
		text := strings.ToLower(raw)
		switch {
		case strings.Contains(text, "onbegaan"):
			return labeled(LevelHigh, raw, "water-passability")
		case strings.Contains(text, "beperkt") || strings.Contains(text, "kwetsbaar"):
			return labeled(LevelMedium, raw, "water-passability")
		case strings.Contains(text, "begaanbaar"):
			return labeled(LevelLow, raw, "water-passability")
		}
	}

	for _, key := range waterClassFields {
		klasse, ok := asNumber(props[key])
		if !ok {
			continue
		}
		switch {
		case klasse <= 1:
			return classified(LevelLow, klasse, key, "water-class")
		case klasse <= 2:
			return classified(LevelMedium, klasse, key, "water-class")
		default:
			return classified(LevelHigh, klasse, key, "water-class")
		}
	}

	for _, key := range waterFloodFields {
		numeric, ok := asNumber(props[key])
		if !ok {
			continue
		}
		switch {
		case numeric <= 0:
			return classified(LevelLow, numeric, key, "water-flood")
		case numeric <= 1:
			return classified(LevelMedium, numeric, key, "water-flood")
		default:
			return classified(LevelHigh, numeric, key, "water-flood")
		}
	}

	labels := textBlob(props)
	switch {
	case strings.Contains(labels, "<") && strings.Contains(labels, "100 duizend"):
		return labeled(LevelLow, "low impact label", "water-impact-label")
	case strings.Contains(labels, "1 miljoen") || strings.Contains(labels, "zeer hoog"):
		return labeled(LevelHigh, "high impact label", "water-impact-label")
	case strings.Contains(labels, "100 duizend") || strings.Contains(labels, "hoog"):
		return labeled(LevelMedium, "medium impact label", "water-impact-label")
	}

	if grid, ok := asNumber(props["GRIDCODE"]); ok {
		switch {
		case grid <= 1:
			return classified(LevelLow, grid, "GRIDCODE", "water-gridcode")
		case grid == 2:
			return classified(LevelMedium, grid, "GRIDCODE", "water-gridcode")
		default:
			return classified(LevelHigh, grid, "GRIDCODE", "water-gridcode")
		}
	}

	if ror, ok := asNumber(props["ror"]); ok {
		switch {
		case ror <= 2:
			return classified(LevelLow, ror, "ror", "water-ror")
		case ror <= 4:
			return classified(LevelMedium, ror, "ror", "water-ror")
		default:
			return classified(LevelHigh, ror, "ror", "water-ror")
		}
	}

	value, key, ok := ExtractNumeric(props)
	if !ok {
		return unclassified
	}
	if strings.Contains(strings.ToLower(key), "diepte") {
		return classified(Classify(value, 0.1, 0.3), round3(value), key, "water-depth")
	}
	return classified(Classify(value, 1.0, 2.0), round2(value), key, "water-generic")
}
