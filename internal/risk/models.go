package risk

import "errors"

// Data source labels reported on each card.
const (
	SourceNoise   = "RIVM / Atlas Leefomgeving WMS"
	SourceAir     = "RIVM GCN WMS"
	SourceClimate = "Klimaateffectatlas WMS/WFS"
)

// Card messages. The *_LOOKUP_FAILED and NOISE_LAYER_UNAVAILABLE values are
// hard-failure sentinels: they indicate transient upstream trouble rather
// than a genuine "no data at this point", and responses carrying them must
// not be cached.
const (
	MsgNoiseLayerUnavailable = "NOISE_LAYER_UNAVAILABLE"
	MsgNoiseNoValue          = "NOISE_NO_VALUE"
	MsgNoiseLookupFailed     = "NOISE_LOOKUP_FAILED"
	MsgAirNoValue            = "AIR_NO_VALUE"
	MsgAirPartial            = "AIR_PARTIAL"
	MsgAirLookupFailed       = "AIR_LOOKUP_FAILED"
	MsgClimateNoData         = "CLIMATE_NO_DATA"
	MsgClimatePartial        = "CLIMATE_PARTIAL"
	MsgClimateLookupFailed   = "CLIMATE_LOOKUP_FAILED"
)

// Pipeline errors. Inner stages return these (wrapped with context) so the
// card builders can distinguish a data-availability gap from upstream failure
// when degrading to an unavailable card.
var (
	// ErrLayerUnavailable means the catalog was fetched but no layer matched
	// the selection pattern.
	ErrLayerUnavailable = errors.New("no matching layer in catalog")

	// ErrNoValue means a layer was selected and sampled but the feature or
	// pixel carried no usable reading (absent, sentinel, or non-numeric).
	ErrNoValue = errors.New("no usable value at point")
)

// Properties is the raw attribute set of one sampled feature. Attribute names
// vary per upstream layer; classifiers pattern-match them rather than relying
// on a fixed schema.
type Properties map[string]any

// NoiseCard is the road-traffic noise risk card.
type NoiseCard struct {
	Level      Level    `json:"level"`
	LdenDB     *float64 `json:"lden_db,omitempty"`
	Source     string   `json:"source"`
	SourceDate string   `json:"source_date,omitempty"`
	SampledAt  string   `json:"sampled_at"`
	Layer      string   `json:"layer,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// AirCard is the air quality risk card. Level is always the worst of the
// PM2.5 and NO2 sub-levels.
type AirCard struct {
	Level      Level    `json:"level"`
	PM25UgM3   *float64 `json:"pm25_ug_m3,omitempty"`
	NO2UgM3    *float64 `json:"no2_ug_m3,omitempty"`
	PM25Level  Level    `json:"pm25_level"`
	NO2Level   Level    `json:"no2_level"`
	Source     string   `json:"source"`
	SourceDate string   `json:"source_date,omitempty"`
	SampledAt  string   `json:"sampled_at"`
	PM25Layer  string   `json:"pm25_layer,omitempty"`
	NO2Layer   string   `json:"no2_layer,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// ClimateCard is the climate stress risk card. Level is always the worst of
// the heat and water sub-levels.
type ClimateCard struct {
	Level       Level    `json:"level"`
	HeatValue   *float64 `json:"heat_value,omitempty"`
	HeatLevel   Level    `json:"heat_level"`
	WaterValue  *float64 `json:"water_value,omitempty"`
	WaterLevel  Level    `json:"water_level"`
	Source      string   `json:"source"`
	SourceDate  string   `json:"source_date,omitempty"`
	SampledAt   string   `json:"sampled_at"`
	HeatLayer   string   `json:"heat_layer,omitempty"`
	WaterLayer  string   `json:"water_layer,omitempty"`
	HeatSignal  string   `json:"heat_signal,omitempty"`
	WaterSignal string   `json:"water_signal,omitempty"`
	Message     string   `json:"message,omitempty"`
}

// CardsResponse aggregates the three risk cards for a resolved address.
type CardsResponse struct {
	AddressID     string      `json:"address_id"`
	Noise         NoiseCard   `json:"noise"`
	AirQuality    AirCard     `json:"air_quality"`
	ClimateStress ClimateCard `json:"climate_stress"`
}

// hardFailureMessages are messages that indicate transient infrastructure
// failure. Caching a response that carries one would poison the cache with a
// false negative.
var hardFailureMessages = map[string]struct{}{
	MsgNoiseLayerUnavailable: {},
	MsgNoiseLookupFailed:     {},
	MsgAirLookupFailed:       {},
	MsgClimateLookupFailed:   {},
}

// Cacheable reports whether the response may be persisted: at least one card
// must carry real (non-unavailable) data, and no card may carry a
// hard-failure sentinel message.
func (r *CardsResponse) Cacheable() bool {
	for _, msg := range []string{r.Noise.Message, r.AirQuality.Message, r.ClimateStress.Message} {
		if _, hard := hardFailureMessages[msg]; hard {
			return false
		}
	}
	return r.Noise.Level != LevelUnavailable ||
		r.AirQuality.Level != LevelUnavailable ||
		r.ClimateStress.Level != LevelUnavailable
}
