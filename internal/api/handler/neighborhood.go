package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/buurtcheck/buurtcheck/internal/api/models"
	"github.com/buurtcheck/buurtcheck/internal/api/response"
	"github.com/buurtcheck/buurtcheck/internal/neighborhood"
)

// NeighborhoodHandler handles neighborhood statistics endpoints.
type NeighborhoodHandler struct {
	neighborhoods *neighborhood.Service
}

// NewNeighborhoodHandler creates a new NeighborhoodHandler.
func NewNeighborhoodHandler(neighborhoods *neighborhood.Service) *NeighborhoodHandler {
	return &NeighborhoodHandler{neighborhoods: neighborhoods}
}

// Stats handles GET /v1/address/{vboId}/neighborhood - CBS buurt statistics
// for the address. The buurt code from the address lookup skips the spatial
// query when present.
func (h *NeighborhoodHandler) Stats(w http.ResponseWriter, r *http.Request) {
	addressID := chi.URLParam(r, "vboId")

	var errs []models.FieldError
	lat := floatParam(r, "lat", &errs)
	lng := floatParam(r, "lng", &errs)
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid coordinates", errs)
		return
	}
	buurtCode := r.URL.Query().Get("buurt_code")

	stats := h.neighborhoods.GetStats(r.Context(), addressID, lat, lng, buurtCode)
	response.JSON(w, r, http.StatusOK, stats)
}
