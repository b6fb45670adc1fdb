package risk

import (
	"regexp"
	"sort"
	"strings"
)

// Upstream layer naming drifts between dataset releases, so selection is
// policy-driven: latest by embedded date under the strict naming convention,
// else latest among loose substring matches, else latest lexicographically.

var (
	noiseLayerPattern = regexp.MustCompile(`^rivm_(\d{8})_[Gg]eluid_lden_wegverkeer_\d{4}$`)
	layerFullDate     = regexp.MustCompile(`(\d{8})`)
	layerYear         = regexp.MustCompile(`(20\d{2})`)
)

// SelectNoiseLayer picks the most current Lden road-traffic noise layer.
// Strict matches are ranked by (embedded date, name); the fallback accepts
// any name containing "geluid_lden_wegverkeer" (case-insensitive), preferring
// dated names. Returns "" when no candidate exists.
func SelectNoiseLayer(names []string) string {
	type match struct{ date, name string }
	var matches []match
	for _, n := range names {
		if m := noiseLayerPattern.FindStringSubmatch(n); m != nil {
			matches = append(matches, match{date: m[1], name: n})
		}
	}
	if len(matches) > 0 {
		sort.Slice(matches, func(i, j int) bool {
			if matches[i].date != matches[j].date {
				return matches[i].date < matches[j].date
			}
			return matches[i].name < matches[j].name
		})
		return matches[len(matches)-1].name
	}

	var fallback []string
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), "geluid_lden_wegverkeer") {
			fallback = append(fallback, n)
		}
	}
	var dated []string
	for _, n := range fallback {
		if layerFullDate.MatchString(n) {
			dated = append(dated, n)
		}
	}
	if len(dated) > 0 {
		sort.Strings(dated)
		return dated[len(dated)-1]
	}
	if len(fallback) > 0 {
		sort.Strings(fallback)
		return fallback[len(fallback)-1]
	}
	return ""
}

// SelectAirLayer picks the most current GCN concentration layer for a
// pollutant (e.g. "PM25", "NO2"). Strict matches follow
// conc_<POLLUTANT>_<year>; the fallback accepts any name containing
// conc_<pollutant> lowercased. Returns "" when no candidate exists.
func SelectAirLayer(names []string, pollutant string) string {
	pattern := regexp.MustCompile(`^conc_` + regexp.QuoteMeta(strings.ToUpper(pollutant)) + `_(20\d{2})$`)

	type match struct{ year, name string }
	var matches []match
	for _, n := range names {
		if m := pattern.FindStringSubmatch(n); m != nil {
			matches = append(matches, match{year: m[1], name: n})
		}
	}
	if len(matches) > 0 {
		sort.Slice(matches, func(i, j int) bool {
			if matches[i].year != matches[j].year {
				return matches[i].year < matches[j].year
			}
			return matches[i].name < matches[j].name
		})
		return matches[len(matches)-1].name
	}

	needle := "conc_" + strings.ToLower(pollutant)
	var fallback []string
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), needle) {
			fallback = append(fallback, n)
		}
	}
	if len(fallback) > 0 {
		sort.Strings(fallback)
		return fallback[len(fallback)-1]
	}
	return ""
}

// ExtractLayerDate parses an embedded date out of a layer name: an 8-digit
// run becomes an ISO date, else a standalone 20xx year is returned verbatim.
// Returns "" when the name encodes neither.
func ExtractLayerDate(name string) string {
	if name == "" {
		return ""
	}
	if m := layerFullDate.FindStringSubmatch(name); m != nil {
		raw := m[1]
		return raw[0:4] + "-" + raw[4:6] + "-" + raw[6:8]
	}
	for _, m := range layerYear.FindAllStringSubmatchIndex(name, -1) {
		start, end := m[2], m[3]
		// Skip year digits that are part of a longer digit run.
		if start > 0 && name[start-1] >= '0' && name[start-1] <= '9' {
			continue
		}
		if end < len(name) && name[end] >= '0' && name[end] <= '9' {
			continue
		}
		return name[start:end]
	}
	return ""
}

// LayerKind distinguishes how a curated climate layer is sampled.
type LayerKind string

const (
	// KindRaster layers are sampled with WMS GetFeatureInfo.
	KindRaster LayerKind = "raster"
	// KindVector layers are sampled with WFS GetFeature.
	KindVector LayerKind = "vector"
)

// CandidateLayer is one entry of a curated climate layer list.
type CandidateLayer struct {
	Name string
	Kind LayerKind
}

// The Klimaateffectatlas catalog is too noisy and regional to select from
// automatically, so heat and water each get a fixed, hand-curated priority
// list. Order matters: earlier entries win ties during worst-case-wins
// aggregation.
var (
	// ClimateHeatLayers holds the curated heat stress candidates, national
	// raster coverage first, then regional enrichments.
	ClimateHeatLayers = []CandidateLayer{
		{Name: "wpn:s0149_hittestress_warme_nachten_huidig", Kind: KindRaster},
		{Name: "zh:1821_pzh_ouderenenhitte", Kind: KindVector},
		{Name: "twn_klimaatatlas:1830_twn_hitte_percentage_ouderen", Kind: KindVector},
		{Name: "maastricht_klimaatatlas:1811_maastricht_hitte_urgentiekaart", Kind: KindVector},
		{Name: "haarlemmermeer_klimaatatlas:1815_haarlemmermeer_risico_hitte", Kind: KindVector},
	}

	// ClimateWaterLayers holds the curated water stress candidates, broad
	// coverage first, then regional enrichments.
	ClimateWaterLayers = []CandidateLayer{
		{Name: "mra_klimaatatlas:1826_mra_overstromingskans_20cm", Kind: KindVector},
		{Name: "wpn:s0149_wateroverlast_wpn", Kind: KindVector},
		{Name: "etten:gr1_t100", Kind: KindVector},
		{Name: "mra_klimaatatlas:1826_mra_begaanbaarheid_wegen_70mm", Kind: KindVector},
		{Name: "rotterdam_klimaatatlas:1842_rotterdam_begaanbaarheid_wegen", Kind: KindVector},
	}
)
