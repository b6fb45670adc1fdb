package handler

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/buurtcheck/buurtcheck/internal/api/models"
	"github.com/buurtcheck/buurtcheck/internal/api/response"
	"github.com/buurtcheck/buurtcheck/internal/calibration"
	"github.com/buurtcheck/buurtcheck/internal/offline"
	"github.com/buurtcheck/buurtcheck/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version     string
	buildTime   string
	providers   *resilience.Registry
	offline     *offline.Store
	calibration calibration.Repository
}

// OpsConfig holds the wiring for the ops endpoints. Offline and calibration
// are optional; absent ones are simply omitted from the status payload.
type OpsConfig struct {
	Version     string
	BuildTime   string
	Providers   *resilience.Registry
	Offline     *offline.Store
	Calibration calibration.Repository
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	providers := cfg.Providers
	if providers == nil {
		providers = resilience.GlobalRegistry
	}
	return &OpsHandler{
		version:     cfg.Version,
		buildTime:   cfg.BuildTime,
		providers:   providers,
		offline:     cfg.Offline,
		calibration: cfg.Calibration,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The service
// serves degraded responses when upstreams are down, so readiness only
// requires the process itself.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - circuit state per upstream,
// offline dataset inventory and the latest calibration run.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       now,
		Subsystems: []models.SubsystemStatus{},
		Providers:  []models.ProviderStatus{},
	}

	for _, ph := range h.providers.GetAllHealth() {
		ps := models.ProviderStatus{
			Provider: ph.Name,
			Status:   circuitStatus(ph.CircuitState),
		}
		if ph.LastSuccessAt != nil {
			ts := models.Timestamp(*ph.LastSuccessAt)
			ps.LastSuccessAt = &ts
		}
		if ph.LastFailureAt != nil {
			ts := models.Timestamp(*ph.LastFailureAt)
			ps.LastFailureAt = &ts
		}
		if ph.LastError != "" {
			msg := ph.LastError
			ps.Message = &msg
		}
		status.Providers = append(status.Providers, ps)

		if ps.Status == models.HealthStatusFail {
			status.Status = models.HealthStatusDegraded
		}
	}

	if h.offline != nil {
		datasets := h.offline.Datasets()
		status.OfflineData = make(map[string]string, len(datasets))
		for category, file := range datasets {
			status.OfflineData[string(category)] = file
		}
	}

	if h.calibration != nil {
		if report, err := h.calibration.LatestReport(r.Context()); err == nil && report != nil {
			status.Calibration = &models.CalibrationInfo{
				RanAt:  models.Timestamp(report.RanAt),
				Failed: report.Failed(),
			}
			if report.Failed() {
				status.Status = models.HealthStatusDegraded
			}
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func circuitStatus(state gobreaker.State) models.HealthStatus {
	switch state {
	case gobreaker.StateOpen:
		return models.HealthStatusFail
	case gobreaker.StateHalfOpen:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}
