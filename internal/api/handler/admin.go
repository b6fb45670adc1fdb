package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/buurtcheck/buurtcheck/internal/api/middleware"
	"github.com/buurtcheck/buurtcheck/internal/api/models"
	"github.com/buurtcheck/buurtcheck/internal/api/response"
	"github.com/buurtcheck/buurtcheck/internal/cache"
)

// InvalidateRequest names the cache keys to drop.
type InvalidateRequest struct {
	Keys []string `json:"keys"`
}

// InvalidateResponse reports how many keys were dropped.
type InvalidateResponse struct {
	Invalidated int `json:"invalidated"`
}

// AdminHandler handles operator-only endpoints.
type AdminHandler struct {
	cache  cache.Store
	logger zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(store cache.Store, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{cache: store, logger: logger}
}

// InvalidateCache handles POST /v1/admin/cache/invalidate - drop specific
// response cache entries, typically after an upstream dataset release.
func (h *AdminHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	var req InvalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}
	if len(req.Keys) == 0 {
		response.BadRequest(w, r, "no keys given", []models.FieldError{
			{Field: "keys", Message: "must not be empty", Code: "required"},
		})
		return
	}

	for _, key := range req.Keys {
		h.cache.Delete(r.Context(), key)
	}
	h.logger.Info().Int("keys", len(req.Keys)).
		Str("operator", middleware.GetOperator(r.Context())).
		Msg("cache entries invalidated")

	response.JSON(w, r, http.StatusOK, InvalidateResponse{Invalidated: len(req.Keys)})
}
