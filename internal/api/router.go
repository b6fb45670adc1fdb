// Package api provides the HTTP API for buurt-check.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/buurtcheck/buurtcheck/internal/address"
	"github.com/buurtcheck/buurtcheck/internal/api/handler"
	"github.com/buurtcheck/buurtcheck/internal/api/middleware"
	"github.com/buurtcheck/buurtcheck/internal/auth"
	"github.com/buurtcheck/buurtcheck/internal/bag3d"
	"github.com/buurtcheck/buurtcheck/internal/building"
	"github.com/buurtcheck/buurtcheck/internal/cache"
	"github.com/buurtcheck/buurtcheck/internal/calibration"
	"github.com/buurtcheck/buurtcheck/internal/neighborhood"
	"github.com/buurtcheck/buurtcheck/internal/offline"
	"github.com/buurtcheck/buurtcheck/internal/provider/resilience"
	"github.com/buurtcheck/buurtcheck/internal/risk"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger

	ServiceName string
	Metrics     *middleware.Metrics

	Cache               cache.Store
	AuthService         *auth.Service
	AddressService      *address.Service
	BuildingService     *building.Service
	NeighborhoodService *neighborhood.Service
	Bag3DService        *bag3d.Service
	RiskService         *risk.Service

	Providers        *resilience.Registry
	OfflineStore     *offline.Store
	CalibrationStore calibration.Repository
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "buurtcheck-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS)
	r.Use(middleware.ContentTypeJSON)

	addressHandler := handler.NewAddressHandler(cfg.AddressService)
	buildingHandler := handler.NewBuildingHandler(cfg.BuildingService, cfg.Cache)
	neighborhoodHandler := handler.NewNeighborhoodHandler(cfg.NeighborhoodService)
	sceneHandler := handler.NewNeighborhood3DHandler(cfg.Bag3DService)
	riskHandler := handler.NewRiskHandler(cfg.RiskService, cfg.Cache)
	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:     cfg.Version,
		BuildTime:   cfg.BuildTime,
		Providers:   cfg.Providers,
		Offline:     cfg.OfflineStore,
		Calibration: cfg.CalibrationStore,
	})
	adminHandler := handler.NewAdminHandler(cfg.Cache, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.AuthService)

	// The geodata fan-out endpoints hit several upstream services per
	// request; they get the stricter limit.
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/address", func(r chi.Router) {
			r.With(standardRateLimit).Get("/suggest", addressHandler.Suggest)
			r.With(standardRateLimit).Get("/lookup", addressHandler.Lookup)

			r.Route("/{vboId}", func(r chi.Router) {
				r.With(standardRateLimit).Get("/building", buildingHandler.Facts)
				r.With(standardRateLimit).Get("/neighborhood", neighborhoodHandler.Stats)
				r.With(expensiveRateLimit).Get("/3d", sceneHandler.Scene)
				r.With(expensiveRateLimit).Get("/risk", riskHandler.Cards)
			})
		})

		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Use(middleware.RequireJSON)
			r.Post("/cache/invalidate", adminHandler.InvalidateCache)
		})
	})

	return r
}
