package risk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RasterSampler samples a raster layer at an RD (EPSG:28992) coordinate and
// returns the attribute set of the pixel's feature-info response.
type RasterSampler interface {
	FeatureInfo(ctx context.Context, layer string, x, y float64) (Properties, error)
}

// VectorSampler samples a vector layer at an RD coordinate and returns the
// attribute set of the containing or nearest feature.
type VectorSampler interface {
	Feature(ctx context.Context, layer string, x, y float64) (Properties, error)
}

// ServiceConfig holds the upstream wiring for the risk card service. Each
// upstream gets its own catalog and sampler so outages stay isolated per
// pipeline.
type ServiceConfig struct {
	// NoiseCatalog lists the Atlas Leefomgeving WMS layers.
	NoiseCatalog *Catalog
	// NoiseWMS samples the Atlas Leefomgeving WMS.
	NoiseWMS RasterSampler

	// AirCatalog lists the GCN concentration WMS layers.
	AirCatalog *Catalog
	// AirWMS samples the GCN WMS.
	AirWMS RasterSampler

	// ClimateCatalog lists the Klimaateffectatlas layers.
	ClimateCatalog *Catalog
	// ClimateWMS samples Klimaateffectatlas raster layers.
	ClimateWMS RasterSampler
	// ClimateWFS samples Klimaateffectatlas vector layers.
	ClimateWFS VectorSampler

	// Logger for pipeline diagnostics.
	Logger zerolog.Logger

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Service builds per-address risk cards by sampling the national noise, air
// quality and climate stress geodata services.
type Service struct {
	noiseCatalog   *Catalog
	noiseWMS       RasterSampler
	airCatalog     *Catalog
	airWMS         RasterSampler
	climateCatalog *Catalog
	climateWMS     RasterSampler
	climateWFS     VectorSampler

	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a risk card service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		noiseCatalog:   cfg.NoiseCatalog,
		noiseWMS:       cfg.NoiseWMS,
		airCatalog:     cfg.AirCatalog,
		airWMS:         cfg.AirWMS,
		climateCatalog: cfg.ClimateCatalog,
		climateWMS:     cfg.ClimateWMS,
		climateWFS:     cfg.ClimateWFS,
		logger:         cfg.Logger,
		now:            now,
	}
}

// GetRiskCards samples the three pipelines concurrently and assembles the
// aggregate response. Individual pipeline failures degrade to unavailable
// cards; the call itself never fails. The WGS84 coordinate is reserved for
// climate layer selection by geographic extent; sampling uses RD only.
func (s *Service) GetRiskCards(ctx context.Context, addressID string, rdX, rdY, lat, lng float64) *CardsResponse {
	_, _ = lat, lng
	sampledAt := s.now().UTC().Format("2006-01-02")

	resp := &CardsResponse{AddressID: addressID}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		resp.Noise = s.buildNoiseCard(ctx, rdX, rdY, sampledAt)
	}()
	go func() {
		defer wg.Done()
		resp.AirQuality = s.buildAirCard(ctx, rdX, rdY, sampledAt)
	}()
	go func() {
		defer wg.Done()
		resp.ClimateStress = s.buildClimateCard(ctx, rdX, rdY, sampledAt)
	}()
	wg.Wait()

	return resp
}

// sampleNoise runs the noise pipeline up to the raw Lden reading. It returns
// the selected layer alongside any error so the degraded card can still name
// its source layer.
func (s *Service) sampleNoise(ctx context.Context, rdX, rdY float64) (float64, string, error) {
	names, err := s.noiseCatalog.Names(ctx)
	if err != nil {
		return 0, "", fmt.Errorf("noise catalog: %w", err)
	}
	layer := SelectNoiseLayer(names)
	if layer == "" {
		return 0, "", ErrLayerUnavailable
	}

	props, err := s.noiseWMS.FeatureInfo(ctx, layer, rdX, rdY)
	if err != nil {
		return 0, layer, fmt.Errorf("sample %s: %w", layer, err)
	}
	raw, ok := asNumber(props["GRAY_INDEX"])
	if !ok || IsNoData(raw) {
		return 0, layer, ErrNoValue
	}
	return raw, layer, nil
}

func (s *Service) buildNoiseCard(ctx context.Context, rdX, rdY float64, sampledAt string) NoiseCard {
	card := NoiseCard{
		Level:     LevelUnavailable,
		Source:    SourceNoise,
		SampledAt: sampledAt,
	}

	value, layer, err := s.sampleNoise(ctx, rdX, rdY)
	switch {
	case errors.Is(err, ErrLayerUnavailable):
		s.logger.Warn().Err(err).Msg("noise layer unavailable")
		card.Message = MsgNoiseLayerUnavailable
		return card
	case errors.Is(err, ErrNoValue):
		card.Layer = layer
		card.SourceDate = ExtractLayerDate(layer)
		card.Message = MsgNoiseNoValue
		return card
	case err != nil:
		s.logger.Error().Err(err).Msg("noise lookup failed")
		card.Message = MsgNoiseLookupFailed
		return card
	}

	lden := round1(value)
	card.Level = Classify(value, NoiseLowMaxDB, NoiseMediumMaxDB)
	card.LdenDB = &lden
	card.Layer = layer
	card.SourceDate = ExtractLayerDate(layer)
	return card
}

// samplePollutant resolves and samples one GCN concentration layer. The
// reading is taken from the property named after the layer itself when
// present, else from the first plausible numeric field.
func (s *Service) samplePollutant(ctx context.Context, names []string, pollutant string, rdX, rdY float64) (float64, string, error) {
	layer := SelectAirLayer(names, pollutant)
	if layer == "" {
		return 0, "", ErrLayerUnavailable
	}

	props, err := s.airWMS.FeatureInfo(ctx, layer, rdX, rdY)
	if err != nil {
		return 0, layer, fmt.Errorf("sample %s: %w", layer, err)
	}
	if raw, ok := asNumber(props[layer]); ok && !IsNoData(raw) {
		return raw, layer, nil
	}
	if raw, _, ok := ExtractNumeric(props); ok {
		return raw, layer, nil
	}
	return 0, layer, ErrNoValue
}

func (s *Service) buildAirCard(ctx context.Context, rdX, rdY float64, sampledAt string) AirCard {
	card := AirCard{
		Level:     LevelUnavailable,
		PM25Level: LevelUnavailable,
		NO2Level:  LevelUnavailable,
		Source:    SourceAir,
		SampledAt: sampledAt,
	}

	names, err := s.airCatalog.Names(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("air catalog refresh failed")
		card.Message = MsgAirLookupFailed
		return card
	}

	pm25, pm25Layer, pm25Err := s.samplePollutant(ctx, names, "PM25", rdX, rdY)
	no2, no2Layer, no2Err := s.samplePollutant(ctx, names, "NO2", rdX, rdY)
	for _, e := range []error{pm25Err, no2Err} {
		if e != nil && !errors.Is(e, ErrLayerUnavailable) && !errors.Is(e, ErrNoValue) {
			s.logger.Error().Err(e).Msg("air lookup failed")
			card.Message = MsgAirLookupFailed
			return card
		}
	}

	card.PM25Layer = pm25Layer
	card.NO2Layer = no2Layer
	if pm25Err == nil {
		v := round2(pm25)
		card.PM25UgM3 = &v
		card.PM25Level = Classify(pm25, PM25LowMax, PM25MediumMax)
	}
	if no2Err == nil {
		v := round2(no2)
		card.NO2UgM3 = &v
		card.NO2Level = Classify(no2, NO2LowMax, NO2MediumMax)
	}

	card.Level = MaxLevel(card.PM25Level, card.NO2Level)
	switch {
	case card.PM25Level == LevelUnavailable && card.NO2Level == LevelUnavailable:
		card.Message = MsgAirNoValue
	case card.PM25Level == LevelUnavailable || card.NO2Level == LevelUnavailable:
		card.Message = MsgAirPartial
	}

	if card.SourceDate = ExtractLayerDate(pm25Layer); card.SourceDate == "" {
		card.SourceDate = ExtractLayerDate(no2Layer)
	}
	return card
}

// aggregateClimate walks one curated candidate list in declared order and
// keeps the worst classification. A later layer only replaces the current
// best on a strictly higher rank, so ties resolve to the first layer seen.
// Per-layer sampling errors skip the layer rather than failing the domain.
func (s *Service) aggregateClimate(
	ctx context.Context,
	available map[string]struct{},
	candidates []CandidateLayer,
	classify func(Properties, string) Classification,
	rdX, rdY float64,
) (Classification, string) {
	best := unclassified
	bestLayer := ""

	for _, candidate := range candidates {
		if _, ok := available[candidate.Name]; !ok {
			continue
		}

		var (
			props Properties
			err   error
		)
		if candidate.Kind == KindRaster {
			props, err = s.climateWMS.FeatureInfo(ctx, candidate.Name, rdX, rdY)
		} else {
			props, err = s.climateWFS.Feature(ctx, candidate.Name, rdX, rdY)
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("layer", candidate.Name).Msg("climate layer sample failed, skipping")
			continue
		}

		result := classify(props, candidate.Name)
		if result.Level == LevelUnavailable {
			continue
		}
		s.logger.Debug().
			Str("layer", candidate.Name).
			Str("rule", result.Rule).
			Str("level", string(result.Level)).
			Msg("climate classifier rule fired")
		if result.Level.Outranks(best.Level) {
			best = result
			bestLayer = candidate.Name
		}
	}
	return best, bestLayer
}

func (s *Service) buildClimateCard(ctx context.Context, rdX, rdY float64, sampledAt string) ClimateCard {
	card := ClimateCard{
		Level:      LevelUnavailable,
		HeatLevel:  LevelUnavailable,
		WaterLevel: LevelUnavailable,
		Source:     SourceClimate,
		SampledAt:  sampledAt,
	}

	available, err := s.climateCatalog.NameSet(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("climate catalog refresh failed")
		card.Message = MsgClimateLookupFailed
		return card
	}

	heat, heatLayer := s.aggregateClimate(ctx, available, ClimateHeatLayers, ClassifyHeat, rdX, rdY)
	water, waterLayer := s.aggregateClimate(ctx, available, ClimateWaterLayers,
		func(props Properties, _ string) Classification { return ClassifyWater(props) }, rdX, rdY)

	card.HeatLevel = heat.Level
	card.HeatValue = heat.Value
	card.HeatSignal = heat.Signal
	card.HeatLayer = heatLayer
	card.WaterLevel = water.Level
	card.WaterValue = water.Value
	card.WaterSignal = water.Signal
	card.WaterLayer = waterLayer

	card.Level = MaxLevel(heat.Level, water.Level)
	switch {
	case card.Level == LevelUnavailable:
		card.Message = MsgClimateNoData
	case heat.Level == LevelUnavailable || water.Level == LevelUnavailable:
		card.Message = MsgClimatePartial
	}

	if card.SourceDate = ExtractLayerDate(heatLayer); card.SourceDate == "" {
		card.SourceDate = ExtractLayerDate(waterLayer)
	}
	return card
}
