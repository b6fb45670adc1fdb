package neighborhood

import "github.com/buurtcheck/buurtcheck/internal/risk"

// CBS publishes confidential or missing statistics as large negative
// sentinels.
const sentinelFloor = -99990.0

func isSentinel(v float64) bool {
	return v <= sentinelFloor
}

// safeFloat reads a numeric property, filtering sentinels.
func safeFloat(props risk.Properties, key string) *float64 {
	raw, ok := props[key]
	if !ok {
		return nil
	}
	v, ok := toNumber(raw)
	if !ok || isSentinel(v) {
		return nil
	}
	return &v
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func indicator(props risk.Properties, key, unit string) Indicator {
	value := safeFloat(props, key)
	if value == nil {
		return Indicator{Available: false}
	}
	return Indicator{Value: value, Unit: unit, Available: true}
}

func parseUrbanization(props risk.Properties) Urbanization {
	value := safeFloat(props, "stedelijkheid_adressen_per_km2")
	if value == nil {
		return UrbanizationUnknown
	}
	switch int(*value) {
	case 1:
		return VeryUrban
	case 2:
		return Urban
	case 3:
		return ModeratelyUrban
	case 4:
		return Rural
	case 5:
		return VeryRural
	default:
		return UrbanizationUnknown
	}
}

// parseAgeProfile folds the five CBS age bands into three groups. A group is
// reported when at least one of its bands is present; missing bands count
// as zero within a reported group.
func parseAgeProfile(props risk.Properties) AgeProfile {
	age0to14 := safeFloat(props, "percentage_personen_0_tot_15_jaar")
	age15to24 := safeFloat(props, "percentage_personen_15_tot_25_jaar")
	age25to44 := safeFloat(props, "percentage_personen_25_tot_45_jaar")
	age45to64 := safeFloat(props, "percentage_personen_45_tot_65_jaar")

	profile := AgeProfile{
		Age65Plus: safeFloat(props, "percentage_personen_65_jaar_en_ouder"),
	}
	if age0to14 != nil || age15to24 != nil {
		sum := deref(age0to14) + deref(age15to24)
		profile.Age0To24 = &sum
	}
	if age25to44 != nil || age45to64 != nil {
		sum := deref(age25to44) + deref(age45to64)
		profile.Age25To64 = &sum
	}
	return profile
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// parseStats builds Stats out of one buurt feature's properties. Nil when
// the feature lacks a buurt code.
func parseStats(props risk.Properties) *Stats {
	buurtCode, _ := props["buurtcode"].(string)
	if buurtCode == "" {
		return nil
	}
	buurtName, _ := props["buurtnaam"].(string)
	gemeenteName, _ := props["gemeentenaam"].(string)

	return &Stats{
		BuurtCode:               buurtCode,
		BuurtName:               buurtName,
		GemeenteName:            gemeenteName,
		PopulationDensity:       indicator(props, "bevolkingsdichtheid_inwoners_per_km2", "per km²"),
		AvgHouseholdSize:        indicator(props, "gemiddelde_huishoudsgrootte", ""),
		SinglePersonPct:         indicator(props, "percentage_eenpersoonshuishoudens", "%"),
		AgeProfile:              parseAgeProfile(props),
		OwnerOccupiedPct:        indicator(props, "percentage_koopwoningen", "%"),
		AvgPropertyValue:        indicator(props, "gemiddelde_woningwaarde", "€"),
		DistanceToTrainKm:       indicator(props, "treinstation_gemiddelde_afstand_in_km", "km"),
		DistanceToSupermarketKm: indicator(props, "grote_supermarkt_gemiddelde_afstand_in_km", "km"),
		Urbanization:            parseUrbanization(props),
	}
}
