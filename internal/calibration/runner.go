package calibration

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/buurtcheck/buurtcheck/internal/risk"
)

// RunnerConfig holds the upstream wiring for a calibration run. The
// catalogs and samplers are the same ones the risk card service uses, so a
// passing run means the live pipelines work end to end.
type RunnerConfig struct {
	// NoiseCatalog and NoiseWMS cover the Atlas Leefomgeving noise WMS.
	NoiseCatalog *risk.Catalog
	NoiseWMS     risk.RasterSampler

	// AirCatalog and AirWMS cover the GCN concentration WMS.
	AirCatalog *risk.Catalog
	AirWMS     risk.RasterSampler

	// ClimateCatalog lists the Klimaateffectatlas layers.
	ClimateCatalog *risk.Catalog

	// Repository persists reports for trend auditing (optional).
	Repository Repository

	// Logger for run diagnostics.
	Logger zerolog.Logger

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Runner executes calibration checks.
type Runner struct {
	noiseCatalog   *risk.Catalog
	noiseWMS       risk.RasterSampler
	airCatalog     *risk.Catalog
	airWMS         risk.RasterSampler
	climateCatalog *risk.Catalog
	repository     Repository
	logger         zerolog.Logger
	now            func() time.Time
}

// NewRunner creates a calibration runner.
func NewRunner(cfg RunnerConfig) *Runner {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		noiseCatalog:   cfg.NoiseCatalog,
		noiseWMS:       cfg.NoiseWMS,
		airCatalog:     cfg.AirCatalog,
		airWMS:         cfg.AirWMS,
		climateCatalog: cfg.ClimateCatalog,
		repository:     cfg.Repository,
		logger:         cfg.Logger,
		now:            now,
	}
}

// Run executes the three service checks concurrently, persists the report
// when a repository is configured, and returns it. A persistence failure
// returns the report alongside the error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RanAt:  r.now().UTC(),
		Checks: make([]CheckResult, 3),
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		report.Checks[0] = r.checkNoise(ctx)
	}()
	go func() {
		defer wg.Done()
		report.Checks[1] = r.checkAir(ctx)
	}()
	go func() {
		defer wg.Done()
		report.Checks[2] = r.checkClimate(ctx)
	}()
	wg.Wait()

	for _, c := range report.Checks {
		r.logger.Info().Str("service", c.Service).Str("status", string(c.Status)).
			Strs("issues", c.Issues).Msg("calibration check")
	}

	if r.repository != nil {
		if err := r.repository.SaveReport(ctx, report); err != nil {
			return report, fmt.Errorf("persist calibration report: %w", err)
		}
	}
	return report, nil
}

func (r *Runner) checkNoise(ctx context.Context) CheckResult {
	result := CheckResult{Service: "RIVM ALO WMS", Status: StatusOK}

	names, err := r.noiseCatalog.Names(ctx)
	if err != nil {
		result.fail(err.Error())
		return result
	}

	layer := risk.SelectNoiseLayer(names)
	if layer == "" {
		result.fail("no noise layer found matching pattern")
		return result
	}
	result.detail("layer", layer)

	candidates := 0
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), "geluid_lden_wegverkeer") {
			candidates++
		}
	}
	result.detail("candidate_count", candidates)

	props, err := r.noiseWMS.FeatureInfo(ctx, layer, RefRDX, RefRDY)
	if err != nil {
		result.fail(err.Error())
		return result
	}
	value, ok := asFloat(props["GRAY_INDEX"])
	if !ok {
		result.warn("no GRAY_INDEX in sample response")
		return result
	}
	result.detail("sampled_value", value)
	checkRange(&result, "noise_lden_db", value)
	return result
}

func (r *Runner) checkAir(ctx context.Context) CheckResult {
	result := CheckResult{Service: "RIVM GCN WMS", Status: StatusOK}

	names, err := r.airCatalog.Names(ctx)
	if err != nil {
		result.fail(err.Error())
		return result
	}

	for _, pollutant := range []string{"PM25", "NO2"} {
		lower := strings.ToLower(pollutant)
		layer := risk.SelectAirLayer(names, pollutant)
		if layer == "" {
			result.warn(fmt.Sprintf("no %s layer found", pollutant))
			continue
		}
		result.detail(lower+"_layer", layer)

		props, err := r.airWMS.FeatureInfo(ctx, layer, RefRDX, RefRDY)
		if err != nil {
			result.fail(err.Error())
			continue
		}
		if len(props) == 0 {
			result.warn(fmt.Sprintf("no data returned for %s", pollutant))
			continue
		}

		value, ok := asFloat(props[layer])
		if !ok {
			value, _, ok = risk.ExtractNumeric(props)
		}
		if !ok {
			result.warn(fmt.Sprintf("could not extract numeric value for %s", pollutant))
			continue
		}
		result.detail(lower+"_value", value)
		checkRange(&result, lower+"_ug_m3", value)
	}
	return result
}

func (r *Runner) checkClimate(ctx context.Context) CheckResult {
	result := CheckResult{Service: "Klimaateffectatlas", Status: StatusOK}

	available, err := r.climateCatalog.NameSet(ctx)
	if err != nil {
		result.fail(err.Error())
		return result
	}
	result.detail("total_available", len(available))

	for _, group := range []struct {
		label  string
		layers []risk.CandidateLayer
	}{
		{"heat", risk.ClimateHeatLayers},
		{"water", risk.ClimateWaterLayers},
	} {
		var missing []string
		for _, layer := range group.layers {
			if _, ok := available[layer.Name]; !ok {
				missing = append(missing, layer.Name)
			}
		}
		result.detail(group.label+"_found", len(group.layers)-len(missing))
		result.detail(group.label+"_total", len(group.layers))
		if len(missing) > 0 {
			result.warn(fmt.Sprintf("missing %s layers: %s",
				group.label, strings.Join(missing, ", ")))
		}
	}
	return result
}

func checkRange(result *CheckResult, key string, value float64) {
	rng, ok := ExpectedRanges[key]
	if !ok {
		return
	}
	if value < rng.Lo || value > rng.Hi {
		result.warn(fmt.Sprintf("%s value %.1f outside expected range [%.0f, %.0f]",
			key, value, rng.Lo, rng.Hi))
	}
}

func asFloat(v any) (float64, bool) {
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
