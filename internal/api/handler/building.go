package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/buurtcheck/buurtcheck/internal/api/models"
	"github.com/buurtcheck/buurtcheck/internal/api/response"
	"github.com/buurtcheck/buurtcheck/internal/building"
	"github.com/buurtcheck/buurtcheck/internal/cache"
)

// buildingTTL is the cache lifetime for building facts. BAG data changes on
// the scale of months.
const buildingTTL = 24 * time.Hour

// FactsResponse wraps building facts for one address.
type FactsResponse struct {
	AddressID string          `json:"address_id"`
	Building  *building.Facts `json:"building"`
	Message   string          `json:"message,omitempty"`
}

// BuildingHandler handles building facts endpoints.
type BuildingHandler struct {
	buildings *building.Service
	cache     cache.Store
}

// NewBuildingHandler creates a new BuildingHandler.
func NewBuildingHandler(buildings *building.Service, store cache.Store) *BuildingHandler {
	return &BuildingHandler{buildings: buildings, cache: store}
}

// Facts handles GET /v1/address/{vboId}/building.
func (h *BuildingHandler) Facts(w http.ResponseWriter, r *http.Request) {
	vboID := chi.URLParam(r, "vboId")
	if err := building.ValidateID(vboID); err != nil {
		response.BadRequest(w, r, "invalid address id", []models.FieldError{
			{Field: "vboId", Message: "must be a 16-digit identifier", Code: "pattern"},
		})
		return
	}

	cacheKey := "building:" + vboID
	var cached FactsResponse
	if cache.GetJSON(r.Context(), h.cache, cacheKey, &cached) {
		response.JSON(w, r, http.StatusOK, cached)
		return
	}

	facts, err := h.buildings.GetFacts(r.Context(), vboID)
	if err != nil {
		if errors.Is(err, building.ErrInvalidID) {
			response.BadRequest(w, r, "invalid address id", nil)
			return
		}
		response.ServiceUnavailable(w, r, "building registry unavailable")
		return
	}

	resp := FactsResponse{AddressID: vboID, Building: facts}
	if facts == nil {
		resp.Message = "No building found for this address"
		response.JSON(w, r, http.StatusOK, resp)
		return
	}

	cache.SetJSON(r.Context(), h.cache, cacheKey, resp, buildingTTL)
	response.JSON(w, r, http.StatusOK, resp)
}
