package neighborhood_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buurtcheck/buurtcheck/internal/neighborhood"
	"github.com/buurtcheck/buurtcheck/internal/risk"
)

type mockProvider struct {
	byCode     risk.Properties
	byPoint    risk.Properties
	codeErr    error
	pointErr   error
	codeCalls  int
	pointCalls int
}

func (m *mockProvider) BuurtByCode(_ context.Context, _ string) (risk.Properties, error) {
	m.codeCalls++
	return m.byCode, m.codeErr
}

func (m *mockProvider) BuurtByPoint(_ context.Context, _, _ float64) (risk.Properties, error) {
	m.pointCalls++
	return m.byPoint, m.pointErr
}

func newService(p *mockProvider) *neighborhood.Service {
	return neighborhood.NewService(neighborhood.ServiceConfig{
		Provider: p,
		Logger:   zerolog.New(io.Discard),
	})
}

func fullProps() risk.Properties {
	return risk.Properties{
		"buurtcode":                            "BU03630000",
		"buurtnaam":                            "Burgwallen-Oude Zijde",
		"gemeentenaam":                         "Amsterdam",
		"bevolkingsdichtheid_inwoners_per_km2": float64(12500),
		"gemiddelde_huishoudsgrootte":          1.6,
		"percentage_eenpersoonshuishoudens":    float64(68),
		"percentage_personen_0_tot_15_jaar":    float64(7),
		"percentage_personen_15_tot_25_jaar":   float64(12),
		"percentage_personen_25_tot_45_jaar":   float64(41),
		"percentage_personen_45_tot_65_jaar":   float64(26),
		"percentage_personen_65_jaar_en_ouder": float64(14),
		"percentage_koopwoningen":              float64(22),
		"gemiddelde_woningwaarde":              float64(523000),
		"treinstation_gemiddelde_afstand_in_km": 0.6,
		"grote_supermarkt_gemiddelde_afstand_in_km": 0.3,
		"stedelijkheid_adressen_per_km2":            float64(1),
	}
}

func TestGetStatsByCode(t *testing.T) {
	provider := &mockProvider{byCode: fullProps()}
	svc := newService(provider)

	resp := svc.GetStats(context.Background(), "vbo-1", 52.37, 4.89, "BU03630000")
	require.NotNil(t, resp.Stats)
	assert.Empty(t, resp.Message)
	assert.Equal(t, 0, provider.pointCalls, "bbox fallback not needed")

	stats := resp.Stats
	assert.Equal(t, "BU03630000", stats.BuurtCode)
	assert.Equal(t, "Amsterdam", stats.GemeenteName)
	assert.Equal(t, neighborhood.VeryUrban, stats.Urbanization)
	require.True(t, stats.PopulationDensity.Available)
	assert.Equal(t, 12500.0, *stats.PopulationDensity.Value)
	assert.Equal(t, "per km²", stats.PopulationDensity.Unit)

	require.NotNil(t, stats.AgeProfile.Age0To24)
	assert.Equal(t, 19.0, *stats.AgeProfile.Age0To24)
	assert.Equal(t, 67.0, *stats.AgeProfile.Age25To64)
	assert.Equal(t, 14.0, *stats.AgeProfile.Age65Plus)
}

func TestGetStatsCodeFailureFallsBackToPoint(t *testing.T) {
	provider := &mockProvider{
		codeErr: errors.New("timeout"),
		byPoint: fullProps(),
	}
	svc := newService(provider)

	resp := svc.GetStats(context.Background(), "vbo-1", 52.37, 4.89, "BU03630000")
	require.NotNil(t, resp.Stats)
	assert.Equal(t, 1, provider.pointCalls)
}

func TestGetStatsNoBuurtCodeGoesStraightToPoint(t *testing.T) {
	provider := &mockProvider{byPoint: fullProps()}
	svc := newService(provider)

	resp := svc.GetStats(context.Background(), "vbo-1", 52.37, 4.89, "")
	require.NotNil(t, resp.Stats)
	assert.Equal(t, 0, provider.codeCalls)
}

func TestGetStatsLookupFailed(t *testing.T) {
	provider := &mockProvider{pointErr: errors.New("boom")}
	svc := newService(provider)

	resp := svc.GetStats(context.Background(), "vbo-1", 52.37, 4.89, "")
	assert.Nil(t, resp.Stats)
	assert.Equal(t, neighborhood.MsgLookupFailed, resp.Message)
	assert.Equal(t, "vbo-1", resp.AddressID)
}

func TestGetStatsNoBuurtFound(t *testing.T) {
	provider := &mockProvider{}
	svc := newService(provider)

	resp := svc.GetStats(context.Background(), "vbo-1", 52.37, 4.89, "")
	assert.Equal(t, neighborhood.MsgNoBuurtFound, resp.Message)
}

func TestGetStatsParseFailed(t *testing.T) {
	provider := &mockProvider{byPoint: risk.Properties{"iets": "anders"}}
	svc := newService(provider)

	resp := svc.GetStats(context.Background(), "vbo-1", 52.37, 4.89, "")
	assert.Equal(t, neighborhood.MsgParseFailed, resp.Message)
}

func TestSentinelIndicatorsUnavailable(t *testing.T) {
	props := risk.Properties{
		"buurtcode":                            "BU00010001",
		"gemiddelde_woningwaarde":              float64(-99997),
		"bevolkingsdichtheid_inwoners_per_km2": float64(-100000),
		"stedelijkheid_adressen_per_km2":       float64(-99999),
		"percentage_personen_0_tot_15_jaar":    float64(-99995),
		"percentage_personen_15_tot_25_jaar":   float64(-99995),
	}
	provider := &mockProvider{byCode: props}
	svc := newService(provider)

	resp := svc.GetStats(context.Background(), "vbo-1", 52.37, 4.89, "BU00010001")
	require.NotNil(t, resp.Stats)

	assert.False(t, resp.Stats.AvgPropertyValue.Available)
	assert.False(t, resp.Stats.PopulationDensity.Available)
	assert.Equal(t, neighborhood.UrbanizationUnknown, resp.Stats.Urbanization)
	assert.Nil(t, resp.Stats.AgeProfile.Age0To24, "all-sentinel bands stay absent")
}
