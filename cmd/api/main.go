// Package main provides the entrypoint for the buurt-check API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/buurtcheck/buurtcheck/internal/address"
	"github.com/buurtcheck/buurtcheck/internal/address/locatieserver"
	"github.com/buurtcheck/buurtcheck/internal/api"
	"github.com/buurtcheck/buurtcheck/internal/api/middleware"
	"github.com/buurtcheck/buurtcheck/internal/auth"
	"github.com/buurtcheck/buurtcheck/internal/bag3d"
	"github.com/buurtcheck/buurtcheck/internal/bag3d/threedbag"
	"github.com/buurtcheck/buurtcheck/internal/building"
	"github.com/buurtcheck/buurtcheck/internal/building/bag"
	"github.com/buurtcheck/buurtcheck/internal/cache"
	"github.com/buurtcheck/buurtcheck/internal/calibration"
	"github.com/buurtcheck/buurtcheck/internal/database"
	"github.com/buurtcheck/buurtcheck/internal/neighborhood"
	"github.com/buurtcheck/buurtcheck/internal/neighborhood/cbs"
	"github.com/buurtcheck/buurtcheck/internal/offline"
	"github.com/buurtcheck/buurtcheck/internal/provider/resilience"
	"github.com/buurtcheck/buurtcheck/internal/risk"
	"github.com/buurtcheck/buurtcheck/internal/risk/ogc"
	"github.com/buurtcheck/buurtcheck/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Upstream OGC endpoints. Overridable per environment; the defaults are the
// national production services.
const (
	defaultNoiseWMSBase      = "https://data.rivm.nl/geo/alo/wms"
	defaultAirWMSBase        = "https://data.rivm.nl/geo/gcn/wms"
	defaultClimateWMSBase    = "https://apps.geodan.nl/public/data/org/gws/YWFMLMWERURF/kea_public/wms"
	defaultClimateLayerIndex = "https://apps.geodan.nl/public/data/org/gws/YWFMLMWERURF/kea_public/index.json"
)

func main() {
	const serviceName = "buurtcheck-api"

	// Local development overrides; absence is fine.
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting buurt-check API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Response cache: memcached when configured, in-process otherwise.
	var store cache.Store
	if addrs := os.Getenv("MEMCACHED_ADDRS"); addrs != "" {
		store = cache.NewMemcached(cache.MemcachedConfig{
			Addrs:  strings.Split(addrs, ","),
			Logger: log,
		})
		log.Info().Str("addrs", addrs).Msg("memcached response cache initialized")
	} else {
		store = cache.NewMemory()
		log.Info().Msg("in-memory response cache initialized")
	}

	// Calibration history lives in Postgres. The API only reads the latest
	// report, so a missing database degrades the status endpoint rather
	// than blocking startup.
	var calibrationRepo calibration.Repository
	if os.Getenv("DB_ENABLED") == "true" {
		dbConfig := database.ConfigFromEnv()
		pool, dbErr := database.Connect(ctx, dbConfig)
		if dbErr != nil {
			log.Fatal().Err(dbErr).Msg("failed to connect to database")
		}
		defer pool.Close()
		calibrationRepo = calibration.NewPostgresRepository(pool)
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")
	} else {
		log.Warn().Msg("database disabled - calibration status unavailable")
	}

	// Operator token service for the admin endpoints.
	signingKey := os.Getenv("JWT_SIGNING_KEY")
	if signingKey == "" {
		signingKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}
	authService := auth.NewService(auth.Config{
		SigningKey: signingKey,
		Issuer:     "https://api.buurtcheck.nl",
		Audience:   "buurtcheck-admin",
	})

	// Every upstream gets its own resilient client registered for the
	// status endpoint.
	registry := resilience.NewRegistry()
	newUpstreamClient := func(name string) *resilience.Client {
		client := resilience.NewClient(resilience.DefaultClientConfig(name))
		registry.Register(name, client)
		return client
	}

	// Geocoding
	addressService := address.NewService(address.ServiceConfig{
		Provider: locatieserver.NewClient(locatieserver.ClientConfig{
			BaseURL:    os.Getenv("LOCATIESERVER_BASE_URL"),
			HTTPClient: newUpstreamClient(locatieserver.ProviderName),
			Logger:     log,
		}),
		Cache:  store,
		Logger: log,
	})
	log.Info().Msg("address service initialized")

	// Building registry
	buildingService := building.NewService(building.ServiceConfig{
		Registry: bag.NewClient(bag.ClientConfig{
			BaseURL:    os.Getenv("BAG_WFS_BASE_URL"),
			HTTPClient: newUpstreamClient(bag.ProviderName),
			Logger:     log,
		}),
		Logger: log,
	})
	log.Info().Msg("building service initialized")

	// CBS neighborhood statistics
	neighborhoodService := neighborhood.NewService(neighborhood.ServiceConfig{
		Provider: cbs.NewClient(cbs.ClientConfig{
			BaseURL:    os.Getenv("CBS_BASE_URL"),
			HTTPClient: newUpstreamClient(cbs.ProviderName),
			Logger:     log,
		}),
		Logger: log,
	})
	log.Info().Msg("neighborhood service initialized")

	// 3D building massing
	bag3dService := bag3d.NewService(bag3d.ServiceConfig{
		Provider: threedbag.NewClient(threedbag.ClientConfig{
			BaseURL:    os.Getenv("BAG3D_BASE_URL"),
			HTTPClient: newUpstreamClient(threedbag.ProviderName),
			Logger:     log,
		}),
		Logger: log,
	})
	log.Info().Msg("3d massing service initialized")

	// Risk pipelines: one OGC client and layer catalog per upstream.
	noiseOGC := ogc.NewClient(ogc.ClientConfig{
		Name:       "noise-wms",
		BaseURL:    envOrDefault("NOISE_WMS_BASE_URL", defaultNoiseWMSBase),
		HTTPClient: newUpstreamClient("noise-wms"),
		Logger:     log,
	})
	airOGC := ogc.NewClient(ogc.ClientConfig{
		Name:       "air-wms",
		BaseURL:    envOrDefault("AIR_WMS_BASE_URL", defaultAirWMSBase),
		HTTPClient: newUpstreamClient("air-wms"),
		Logger:     log,
	})
	climateOGC := ogc.NewClient(ogc.ClientConfig{
		Name:          "climate-atlas",
		BaseURL:       envOrDefault("CLIMATE_WMS_BASE_URL", defaultClimateWMSBase),
		LayerIndexURL: envOrDefault("CLIMATE_LAYER_INDEX_URL", defaultClimateLayerIndex),
		HTTPClient:    newUpstreamClient("climate-atlas"),
		Logger:        log,
	})

	riskService := risk.NewService(risk.ServiceConfig{
		NoiseCatalog:   risk.NewCatalog(noiseOGC.LayerNames, 0, nil),
		NoiseWMS:       noiseOGC,
		AirCatalog:     risk.NewCatalog(airOGC.LayerNames, 0, nil),
		AirWMS:         airOGC,
		ClimateCatalog: risk.NewCatalog(climateOGC.LayerNames, 0, nil),
		ClimateWMS:     climateOGC,
		ClimateWFS:     climateOGC,
		Logger:         log,
	})
	log.Info().Msg("risk service initialized")

	// Offline fallback grids for the status inventory.
	var offlineStore *offline.Store
	if dataDir := os.Getenv("OFFLINE_DATA_DIR"); dataDir != "" {
		offlineStore = offline.NewStore(offline.StoreConfig{
			DataDir: dataDir,
			Logger:  log,
		})
		log.Info().Str("data_dir", dataDir).Msg("offline grid store initialized")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:             Version,
		BuildTime:           BuildTime,
		Logger:              log,
		ServiceName:         serviceName,
		Metrics:             metrics,
		Cache:               store,
		AuthService:         authService,
		AddressService:      addressService,
		BuildingService:     buildingService,
		NeighborhoodService: neighborhoodService,
		Bag3DService:        bag3dService,
		RiskService:         riskService,
		Providers:           registry,
		OfflineStore:        offlineStore,
		CalibrationStore:    calibrationRepo,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
