// Package main provides the entrypoint for the buurt-check background
// worker: pipeline warming, calibration checks and offline grid ingest,
// triggered by Pub/Sub or run one-shot.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/buurtcheck/buurtcheck/internal/calibration"
	"github.com/buurtcheck/buurtcheck/internal/database"
	"github.com/buurtcheck/buurtcheck/internal/offline"
	"github.com/buurtcheck/buurtcheck/internal/provider/resilience"
	"github.com/buurtcheck/buurtcheck/internal/risk"
	"github.com/buurtcheck/buurtcheck/internal/risk/ogc"
	"github.com/buurtcheck/buurtcheck/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Upstream OGC endpoints, same defaults as the API server.
const (
	defaultNoiseWMSBase      = "https://data.rivm.nl/geo/alo/wms"
	defaultAirWMSBase        = "https://data.rivm.nl/geo/gcn/wms"
	defaultClimateWMSBase    = "https://apps.geodan.nl/public/data/org/gws/YWFMLMWERURF/kea_public/wms"
	defaultClimateLayerIndex = "https://apps.geodan.nl/public/data/org/gws/YWFMLMWERURF/kea_public/index.json"
)

func main() {
	const serviceName = "buurtcheck-worker"

	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting buurt-check worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Risk pipelines, shared with the calibration runner so a passing
	// calibration run exercises the same catalogs and samplers the warm
	// job uses.
	noiseOGC := ogc.NewClient(ogc.ClientConfig{
		Name:       "noise-wms",
		BaseURL:    envOrDefault("NOISE_WMS_BASE_URL", defaultNoiseWMSBase),
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("noise-wms")),
		Logger:     log,
	})
	airOGC := ogc.NewClient(ogc.ClientConfig{
		Name:       "air-wms",
		BaseURL:    envOrDefault("AIR_WMS_BASE_URL", defaultAirWMSBase),
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("air-wms")),
		Logger:     log,
	})
	climateOGC := ogc.NewClient(ogc.ClientConfig{
		Name:          "climate-atlas",
		BaseURL:       envOrDefault("CLIMATE_WMS_BASE_URL", defaultClimateWMSBase),
		LayerIndexURL: envOrDefault("CLIMATE_LAYER_INDEX_URL", defaultClimateLayerIndex),
		HTTPClient:    resilience.NewClient(resilience.DefaultClientConfig("climate-atlas")),
		Logger:        log,
	})

	noiseCatalog := risk.NewCatalog(noiseOGC.LayerNames, 0, nil)
	airCatalog := risk.NewCatalog(airOGC.LayerNames, 0, nil)
	climateCatalog := risk.NewCatalog(climateOGC.LayerNames, 0, nil)

	riskService := risk.NewService(risk.ServiceConfig{
		NoiseCatalog:   noiseCatalog,
		NoiseWMS:       noiseOGC,
		AirCatalog:     airCatalog,
		AirWMS:         airOGC,
		ClimateCatalog: climateCatalog,
		ClimateWMS:     climateOGC,
		ClimateWFS:     climateOGC,
		Logger:         log,
	})

	warmJob := worker.NewWarmJob(worker.WarmJobConfig{
		Logger: log,
		Risks:  riskService,
	})

	// Calibration history needs Postgres; without it reports are only
	// logged.
	var calibrationRepo calibration.Repository
	if os.Getenv("DB_ENABLED") == "true" {
		dbConfig := database.ConfigFromEnv()
		pool, err := database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		calibrationRepo = calibration.NewPostgresRepository(pool)
		log.Info().
			Str("host", dbConfig.Host).
			Str("database", dbConfig.Database).
			Msg("database connected")
	} else {
		log.Warn().Msg("database disabled - calibration reports will not be persisted")
	}

	calibrator := calibration.NewRunner(calibration.RunnerConfig{
		NoiseCatalog:   noiseCatalog,
		NoiseWMS:       noiseOGC,
		AirCatalog:     airCatalog,
		AirWMS:         airOGC,
		ClimateCatalog: climateCatalog,
		Repository:     calibrationRepo,
		Logger:         log,
	})

	dataDir := envOrDefault("OFFLINE_DATA_DIR", "data")
	offlineStore := offline.NewStore(offline.StoreConfig{
		DataDir: dataDir,
		Logger:  log,
	})
	downloads := gridDownloads(os.Getenv("OFFLINE_GRID_BASE_URL"))

	// One-shot mode for cron and manual runs.
	if job := os.Getenv("WORKER_JOB"); job != "" {
		if err := runOnce(ctx, job, warmJob, calibrator, offlineStore, downloads, log); err != nil {
			log.Fatal().Err(err).Str("job", job).Msg("job failed")
		}
		log.Info().Str("job", job).Msg("job completed")
		return
	}

	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	if subscription == "" {
		log.Fatal().Msg("set WORKER_JOB for one-shot mode or PUBSUB_SUBSCRIPTION for subscriber mode")
	}

	handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
		ProjectID:        os.Getenv("PUBSUB_PROJECT_ID"),
		SubscriptionName: subscription,
		WarmJob:          warmJob,
		Calibrator:       calibrator,
		Offline:          offlineStore,
		Downloads:        downloads,
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pubsub handler")
	}
	defer handler.Close()

	// Health endpoint for the container platform.
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	go func() {
		if err := handler.Start(ctx); err != nil {
			log.Error().Err(err).Msg("pubsub handler stopped")
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

func runOnce(
	ctx context.Context,
	job string,
	warmJob *worker.WarmJob,
	calibrator *calibration.Runner,
	store *offline.Store,
	downloads []offline.Download,
	log zerolog.Logger,
) error {
	switch job {
	case worker.JobPipelineWarm:
		result := warmJob.Run(ctx)
		if result.Failed > result.Successful {
			return fmt.Errorf("too many warm failures: %d/%d", result.Failed, result.TotalPoints)
		}
		return nil
	case worker.JobCalibrationCheck:
		report, err := calibrator.Run(ctx)
		if err != nil {
			return err
		}
		for _, check := range report.Checks {
			log.Info().
				Str("service", check.Service).
				Str("status", string(check.Status)).
				Strs("issues", check.Issues).
				Msg("calibration check")
		}
		if report.Failed() {
			return fmt.Errorf("calibration recorded failures")
		}
		return nil
	case worker.JobOfflineIngest:
		return store.Ingest(ctx, nil, downloads)
	default:
		return fmt.Errorf("unknown job %q", job)
	}
}

// gridDownloads names the grid files one ingest run fetches. The base URL
// points at the bucket the conversion pipeline publishes to; without it
// ingest has nothing to do.
func gridDownloads(baseURL string) []offline.Download {
	if baseURL == "" {
		return nil
	}
	files := []struct {
		category offline.Category
		filename string
	}{
		{offline.CategoryNoise, "geluid_lden_wegverkeer_2022.grid"},
		{offline.CategoryAirPM25, "conc_PM25_2025.grid"},
		{offline.CategoryAirNO2, "conc_NO2_2025.grid"},
	}
	downloads := make([]offline.Download, 0, len(files))
	for _, f := range files {
		downloads = append(downloads, offline.Download{
			Category: f.category,
			Filename: f.filename,
			URL:      baseURL + "/" + f.filename,
		})
	}
	return downloads
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
