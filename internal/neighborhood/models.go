// Package neighborhood serves CBS (Statistics Netherlands) wijken & buurten
// statistics for a resolved address: demographics, housing, amenity
// distances and urbanization, looked up by buurt code with a coordinate
// fallback.
package neighborhood

// Urbanization is the CBS five-step address-density classification.
type Urbanization string

const (
	VeryUrban           Urbanization = "very_urban"
	Urban               Urbanization = "urban"
	ModeratelyUrban     Urbanization = "moderate"
	Rural               Urbanization = "rural"
	VeryRural           Urbanization = "very_rural"
	UrbanizationUnknown Urbanization = "unknown"
)

// Indicator is one statistic with its unit. Available is false when CBS
// reports the value as confidential or missing.
type Indicator struct {
	Value     *float64 `json:"value,omitempty"`
	Unit      string   `json:"unit,omitempty"`
	Available bool     `json:"available"`
}

// AgeProfile aggregates the CBS age bands into three groups.
type AgeProfile struct {
	Age0To24  *float64 `json:"age_0_24,omitempty"`
	Age25To64 *float64 `json:"age_25_64,omitempty"`
	Age65Plus *float64 `json:"age_65_plus,omitempty"`
}

// Stats holds the statistics of one buurt.
type Stats struct {
	BuurtCode               string       `json:"buurt_code"`
	BuurtName               string       `json:"buurt_name,omitempty"`
	GemeenteName            string       `json:"gemeente_name,omitempty"`
	PopulationDensity       Indicator    `json:"population_density"`
	AvgHouseholdSize        Indicator    `json:"avg_household_size"`
	SinglePersonPct         Indicator    `json:"single_person_pct"`
	AgeProfile              AgeProfile   `json:"age_profile"`
	OwnerOccupiedPct        Indicator    `json:"owner_occupied_pct"`
	AvgPropertyValue        Indicator    `json:"avg_property_value"`
	DistanceToTrainKm       Indicator    `json:"distance_to_train_km"`
	DistanceToSupermarketKm Indicator    `json:"distance_to_supermarket_km"`
	Urbanization            Urbanization `json:"urbanization"`
}

// Source label and vintage of the CBS dataset in use.
const (
	Source     = "CBS Wijken & Buurten 2024"
	SourceYear = 2024
)

// Response messages for degraded lookups.
const (
	MsgLookupFailed = "CBS_LOOKUP_FAILED"
	MsgNoBuurtFound = "CBS_NO_BUURT_FOUND"
	MsgParseFailed  = "CBS_PARSE_FAILED"
)

// StatsResponse is the per-address neighborhood statistics envelope.
type StatsResponse struct {
	AddressID  string `json:"address_id"`
	Stats      *Stats `json:"stats,omitempty"`
	Source     string `json:"source"`
	SourceYear int    `json:"source_year"`
	Message    string `json:"message,omitempty"`
}
