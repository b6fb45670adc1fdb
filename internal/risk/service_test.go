package risk_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buurtcheck/buurtcheck/internal/risk"
)

// fakeRaster maps layer name to a canned property set or error.
type fakeRaster struct {
	props map[string]risk.Properties
	errs  map[string]error
}

func (f *fakeRaster) FeatureInfo(_ context.Context, layer string, _, _ float64) (risk.Properties, error) {
	if err, ok := f.errs[layer]; ok {
		return nil, err
	}
	return f.props[layer], nil
}

type fakeVector struct {
	props map[string]risk.Properties
	errs  map[string]error
}

func (f *fakeVector) Feature(_ context.Context, layer string, _, _ float64) (risk.Properties, error) {
	if err, ok := f.errs[layer]; ok {
		return nil, err
	}
	return f.props[layer], nil
}

func staticCatalog(names ...string) *risk.Catalog {
	return risk.NewCatalog(func(_ context.Context) ([]string, error) {
		return names, nil
	}, 0, nil)
}

func failingCatalog(err error) *risk.Catalog {
	return risk.NewCatalog(func(_ context.Context) ([]string, error) {
		return nil, err
	}, 0, nil)
}

func fixedNow() time.Time {
	return time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC)
}

const (
	noiseLayer = "rivm_20230601_Geluid_lden_wegverkeer_2022"
	pm25Layer  = "conc_PM25_2023"
	no2Layer   = "conc_NO2_2023"
)

func newTestService(cfg risk.ServiceConfig) *risk.Service {
	cfg.Logger = zerolog.New(io.Discard)
	cfg.Now = fixedNow
	if cfg.NoiseCatalog == nil {
		cfg.NoiseCatalog = staticCatalog()
	}
	if cfg.AirCatalog == nil {
		cfg.AirCatalog = staticCatalog()
	}
	if cfg.ClimateCatalog == nil {
		cfg.ClimateCatalog = staticCatalog()
	}
	if cfg.NoiseWMS == nil {
		cfg.NoiseWMS = &fakeRaster{}
	}
	if cfg.AirWMS == nil {
		cfg.AirWMS = &fakeRaster{}
	}
	if cfg.ClimateWMS == nil {
		cfg.ClimateWMS = &fakeRaster{}
	}
	if cfg.ClimateWFS == nil {
		cfg.ClimateWFS = &fakeVector{}
	}
	return risk.NewService(cfg)
}

func TestNoiseCardHappyPath(t *testing.T) {
	svc := newTestService(risk.ServiceConfig{
		NoiseCatalog: staticCatalog(noiseLayer, "unrelated"),
		NoiseWMS: &fakeRaster{props: map[string]risk.Properties{
			noiseLayer: {"GRAY_INDEX": 57.34},
		}},
	})

	resp := svc.GetRiskCards(context.Background(), "0363010000000001", 121000, 487000, 52.373, 4.889)
	card := resp.Noise

	assert.Equal(t, risk.LevelMedium, card.Level)
	require.NotNil(t, card.LdenDB)
	assert.Equal(t, 57.3, *card.LdenDB)
	assert.Equal(t, noiseLayer, card.Layer)
	assert.Equal(t, "2023-06-01", card.SourceDate)
	assert.Equal(t, "2026-09-01", card.SampledAt)
	assert.Empty(t, card.Message)
}

func TestNoiseCardNoMatchingLayer(t *testing.T) {
	svc := newTestService(risk.ServiceConfig{
		NoiseCatalog: staticCatalog("unrelated_layer"),
	})

	card := svc.GetRiskCards(context.Background(), "x", 0, 0, 0, 0).Noise
	assert.Equal(t, risk.LevelUnavailable, card.Level)
	assert.Equal(t, risk.MsgNoiseLayerUnavailable, card.Message)
	assert.Empty(t, card.Layer)
}

func TestNoiseCardSentinelValue(t *testing.T) {
	svc := newTestService(risk.ServiceConfig{
		NoiseCatalog: staticCatalog(noiseLayer),
		NoiseWMS: &fakeRaster{props: map[string]risk.Properties{
			noiseLayer: {"GRAY_INDEX": float64(-9999)},
		}},
	})

	card := svc.GetRiskCards(context.Background(), "x", 0, 0, 0, 0).Noise
	assert.Equal(t, risk.LevelUnavailable, card.Level)
	assert.Equal(t, risk.MsgNoiseNoValue, card.Message)
	assert.Equal(t, noiseLayer, card.Layer)
	assert.Equal(t, "2023-06-01", card.SourceDate, "degraded card still names its source vintage")
	assert.Nil(t, card.LdenDB)
}

func TestNoiseCardUpstreamFailure(t *testing.T) {
	svc := newTestService(risk.ServiceConfig{
		NoiseCatalog: staticCatalog(noiseLayer),
		NoiseWMS: &fakeRaster{errs: map[string]error{
			noiseLayer: errors.New("connection refused"),
		}},
	})

	card := svc.GetRiskCards(context.Background(), "x", 0, 0, 0, 0).Noise
	assert.Equal(t, risk.LevelUnavailable, card.Level)
	assert.Equal(t, risk.MsgNoiseLookupFailed, card.Message)
}

func TestNoiseCardCatalogFailure(t *testing.T) {
	svc := newTestService(risk.ServiceConfig{
		NoiseCatalog: failingCatalog(errors.New("capabilities timeout")),
	})

	card := svc.GetRiskCards(context.Background(), "x", 0, 0, 0, 0).Noise
	assert.Equal(t, risk.MsgNoiseLookupFailed, card.Message)
}

func TestAirCardBothPollutants(t *testing.T) {
	svc := newTestService(risk.ServiceConfig{
		AirCatalog: staticCatalog(pm25Layer, no2Layer),
		AirWMS: &fakeRaster{props: map[string]risk.Properties{
			pm25Layer: {pm25Layer: 8.237},
			no2Layer:  {no2Layer: 22.5},
		}},
	})

	card := svc.GetRiskCards(context.Background(), "x", 0, 0, 0, 0).AirQuality
	require.NotNil(t, card.PM25UgM3)
	require.NotNil(t, card.NO2UgM3)
	assert.Equal(t, 8.24, *card.PM25UgM3)
	assert.Equal(t, 22.5, *card.NO2UgM3)
	assert.Equal(t, risk.LevelMedium, card.PM25Level)
	assert.Equal(t, risk.LevelHigh, card.NO2Level)
	assert.Equal(t, risk.LevelHigh, card.Level, "card level is the worst sub-level")
	assert.Equal(t, "2023", card.SourceDate)
	assert.Empty(t, card.Message)
}

func TestAirCardFallbackExtraction(t *testing.T) {
	// The reading is not keyed by the layer name, so the generic extractor
	// takes over.
	svc := newTestService(risk.ServiceConfig{
		AirCatalog: staticCatalog(pm25Layer, no2Layer),
		AirWMS: &fakeRaster{props: map[string]risk.Properties{
			pm25Layer: {"value": 4.1},
			no2Layer:  {"value": 9.0},
		}},
	})

	card := svc.GetRiskCards(context.Background(), "x", 0, 0, 0, 0).AirQuality
	require.NotNil(t, card.PM25UgM3)
	assert.Equal(t, 4.1, *card.PM25UgM3)
	assert.Equal(t, risk.LevelLow, card.Level)
}

func TestAirCardPartial(t *testing.T) {
	svc := newTestService(risk.ServiceConfig{
		AirCatalog: staticCatalog(pm25Layer),
		AirWMS: &fakeRaster{props: map[string]risk.Properties{
			pm25Layer: {pm25Layer: 3.0},
		}},
	})

	card := svc.GetRiskCards(context.Background(), "x", 0, 0, 0, 0).AirQuality
	assert.Equal(t, risk.LevelLow, card.Level)
	assert.Equal(t, risk.LevelUnavailable, card.NO2Level)
	assert.Equal(t, risk.MsgAirPartial, card.Message)
}

func TestAirCardNoValue(t *testing.T) {
	svc := newTestService(risk.ServiceConfig{
		AirCatalog: staticCatalog("unrelated"),
	})

	card := svc.GetRiskCards(context.Background(), "x", 0, 0, 0, 0).AirQuality
	assert.Equal(t, risk.LevelUnavailable, card.Level)
	assert.Equal(t, risk.MsgAirNoValue, card.Message)
}

func TestAirCardCatalogFailure(t *testing.T) {
	svc := newTestService(risk.ServiceConfig{
		AirCatalog: failingCatalog(errors.New("boom")),
	})

	card := svc.GetRiskCards(context.Background(), "x", 0, 0, 0, 0).AirQuality
	assert.Equal(t, risk.MsgAirLookupFailed, card.Message)
}

func TestClimateCardWorstCaseWins(t *testing.T) {
	// First heat candidate classifies low, a later one high: the high layer
	// must be recorded regardless of discovery order.
	first := "wpn:s0149_hittestress_warme_nachten_huidig"
	later := "zh:1821_pzh_ouderenenhitte"

	svc := newTestService(risk.ServiceConfig{
		ClimateCatalog: staticCatalog(first, later),
		ClimateWMS: &fakeRaster{props: map[string]risk.Properties{
			first: {"GRAY_INDEX": 0.3},
		}},
		ClimateWFS: &fakeVector{props: map[string]risk.Properties{
			later: {"urgentie": "zeer hoog"},
		}},
	})

	card := svc.GetRiskCards(context.Background(), "x", 0, 0, 0, 0).ClimateStress
	assert.Equal(t, risk.LevelHigh, card.HeatLevel)
	assert.Equal(t, later, card.HeatLayer)
	assert.Equal(t, "very high", card.HeatSignal)
}

func TestClimateCardTieKeepsFirstLayer(t *testing.T) {
	first := "wpn:s0149_hittestress_warme_nachten_huidig"
	later := "zh:1821_pzh_ouderenenhitte"

	svc := newTestService(risk.ServiceConfig{
		ClimateCatalog: staticCatalog(first, later),
		ClimateWMS: &fakeRaster{props: map[string]risk.Properties{
			first: {"GRAY_INDEX": 0.9},
		}},
		ClimateWFS: &fakeVector{props: map[string]risk.Properties{
			later: {"urgentie": "zeer hoog"},
		}},
	})

	card := svc.GetRiskCards(context.Background(), "x", 0, 0, 0, 0).ClimateStress
	assert.Equal(t, risk.LevelHigh, card.HeatLevel)
	assert.Equal(t, first, card.HeatLayer, "equal rank must not displace the earlier layer")
}

func TestClimateCardSkipsUnlistedAndFailingLayers(t *testing.T) {
	flood := "wpn:s0149_wateroverlast_wpn"
	roads := "mra_klimaatatlas:1826_mra_begaanbaarheid_wegen_70mm"

	svc := newTestService(risk.ServiceConfig{
		// The first water candidate is absent from the live catalog, the
		// second errors out, the fourth carries data.
		ClimateCatalog: staticCatalog(flood, roads),
		ClimateWFS: &fakeVector{
			props: map[string]risk.Properties{
				roads: {"begaanbaarheid": "beperkt begaanbaar"},
			},
			errs: map[string]error{
				flood: errors.New("503"),
			},
		},
	})

	card := svc.GetRiskCards(context.Background(), "x", 0, 0, 0, 0).ClimateStress
	assert.Equal(t, risk.LevelMedium, card.WaterLevel)
	assert.Equal(t, roads, card.WaterLayer)
	assert.Equal(t, risk.MsgClimatePartial, card.Message, "heat side is unavailable")
}

func TestClimateCardNoData(t *testing.T) {
	svc := newTestService(risk.ServiceConfig{
		ClimateCatalog: staticCatalog("unrelated"),
	})

	card := svc.GetRiskCards(context.Background(), "x", 0, 0, 0, 0).ClimateStress
	assert.Equal(t, risk.LevelUnavailable, card.Level)
	assert.Equal(t, risk.MsgClimateNoData, card.Message)
}

func TestClimateCardNoSourceDateFallback(t *testing.T) {
	// Curated climate layer names carry no embedded date: source_date must
	// stay empty rather than borrowing the sampling timestamp.
	layer := "wpn:s0149_wateroverlast_wpn"
	svc := newTestService(risk.ServiceConfig{
		ClimateCatalog: staticCatalog(layer),
		ClimateWFS: &fakeVector{props: map[string]risk.Properties{
			layer: {"klasse_20": float64(2)},
		}},
	})

	card := svc.GetRiskCards(context.Background(), "x", 0, 0, 0, 0).ClimateStress
	assert.Equal(t, risk.LevelMedium, card.WaterLevel)
	assert.Empty(t, card.SourceDate)
	assert.Equal(t, "2026-09-01", card.SampledAt)
}

func TestClimateCardCatalogFailure(t *testing.T) {
	svc := newTestService(risk.ServiceConfig{
		ClimateCatalog: failingCatalog(errors.New("boom")),
	})

	card := svc.GetRiskCards(context.Background(), "x", 0, 0, 0, 0).ClimateStress
	assert.Equal(t, risk.MsgClimateLookupFailed, card.Message)
}

func TestCardsResponseCacheable(t *testing.T) {
	base := func() *risk.CardsResponse {
		return &risk.CardsResponse{
			Noise:         risk.NoiseCard{Level: risk.LevelLow},
			AirQuality:    risk.AirCard{Level: risk.LevelUnavailable},
			ClimateStress: risk.ClimateCard{Level: risk.LevelUnavailable},
		}
	}

	t.Run("one real card is enough", func(t *testing.T) {
		assert.True(t, base().Cacheable())
	})

	t.Run("all unavailable is not cacheable", func(t *testing.T) {
		resp := base()
		resp.Noise.Level = risk.LevelUnavailable
		assert.False(t, resp.Cacheable())
	})

	t.Run("hard failure poisons the whole response", func(t *testing.T) {
		resp := base()
		resp.ClimateStress.Message = risk.MsgClimateLookupFailed
		assert.False(t, resp.Cacheable())

		resp = base()
		resp.Noise.Message = risk.MsgNoiseLookupFailed
		assert.False(t, resp.Cacheable())

		resp = base()
		resp.AirQuality.Message = risk.MsgAirLookupFailed
		assert.False(t, resp.Cacheable())
	})

	t.Run("soft messages stay cacheable", func(t *testing.T) {
		resp := base()
		resp.AirQuality.Message = risk.MsgAirPartial
		resp.ClimateStress.Message = risk.MsgClimateNoData
		assert.True(t, resp.Cacheable())
	})
}

func TestGetRiskCardsAssemblesAllThree(t *testing.T) {
	svc := newTestService(risk.ServiceConfig{
		NoiseCatalog: staticCatalog(noiseLayer),
		NoiseWMS: &fakeRaster{props: map[string]risk.Properties{
			noiseLayer: {"GRAY_INDEX": 48.0},
		}},
		AirCatalog: staticCatalog(pm25Layer, no2Layer),
		AirWMS: &fakeRaster{props: map[string]risk.Properties{
			pm25Layer: {pm25Layer: 4.0},
			no2Layer:  {no2Layer: 12.0},
		}},
		ClimateCatalog: staticCatalog("wpn:s0149_hittestress_warme_nachten_huidig"),
		ClimateWMS: &fakeRaster{props: map[string]risk.Properties{
			"wpn:s0149_hittestress_warme_nachten_huidig": {"GRAY_INDEX": 0.5},
		}},
	})

	resp := svc.GetRiskCards(context.Background(), "0363010000000001", 121000, 487000, 52.373, 4.889)
	assert.Equal(t, "0363010000000001", resp.AddressID)
	assert.Equal(t, risk.LevelLow, resp.Noise.Level)
	assert.Equal(t, risk.LevelMedium, resp.AirQuality.Level)
	assert.Equal(t, risk.LevelLow, resp.ClimateStress.HeatLevel)
	assert.True(t, resp.Cacheable())
}
