package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/buurtcheck/buurtcheck/internal/api/models"
	"github.com/buurtcheck/buurtcheck/internal/api/response"
	"github.com/buurtcheck/buurtcheck/internal/cache"
	"github.com/buurtcheck/buurtcheck/internal/risk"
)

// riskTTL is the cache lifetime for risk card responses. The underlying
// layers update yearly; an hour keeps repeat views cheap without letting a
// stale degradation linger.
const riskTTL = 1 * time.Hour

// RiskHandler handles the risk card endpoint.
type RiskHandler struct {
	risks *risk.Service
	cache cache.Store
}

// NewRiskHandler creates a new RiskHandler.
func NewRiskHandler(risks *risk.Service, store cache.Store) *RiskHandler {
	return &RiskHandler{risks: risks, cache: store}
}

// Cards handles GET /v1/address/{vboId}/risk - the three risk cards.
// Responses are cached only when no card carries a hard-failure message, so
// an upstream outage never gets pinned into the cache.
func (h *RiskHandler) Cards(w http.ResponseWriter, r *http.Request) {
	addressID := chi.URLParam(r, "vboId")

	var errs []models.FieldError
	rdX := floatParam(r, "rd_x", &errs)
	rdY := floatParam(r, "rd_y", &errs)
	lat := optionalFloatParam(r, "lat", &errs)
	lng := optionalFloatParam(r, "lng", &errs)
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid coordinates", errs)
		return
	}

	cacheKey := fmt.Sprintf("risk:%s:%.0f:%.0f", addressID, rdX, rdY)
	var cached risk.CardsResponse
	if cache.GetJSON(r.Context(), h.cache, cacheKey, &cached) {
		response.JSON(w, r, http.StatusOK, &cached)
		return
	}

	cards := h.risks.GetRiskCards(r.Context(), addressID, rdX, rdY, lat, lng)
	if cards.Cacheable() {
		cache.SetJSON(r.Context(), h.cache, cacheKey, cards, riskTTL)
	}
	response.JSON(w, r, http.StatusOK, cards)
}
