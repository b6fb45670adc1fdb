// Package handler provides the HTTP handlers for the buurt-check API.
package handler

import (
	"net/http"
	"strconv"

	"github.com/buurtcheck/buurtcheck/internal/address"
	"github.com/buurtcheck/buurtcheck/internal/api/models"
	"github.com/buurtcheck/buurtcheck/internal/api/response"
)

// Suggest query bounds.
const (
	minQueryLength  = 2
	maxSuggestLimit = 20
)

// SuggestResponse wraps address suggestions.
type SuggestResponse struct {
	Suggestions []address.Suggestion `json:"suggestions"`
}

// AddressHandler handles address search endpoints.
type AddressHandler struct {
	addresses *address.Service
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(addresses *address.Service) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

// Suggest handles GET /v1/address/suggest - autocomplete suggestions.
func (h *AddressHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if len(q) < minQueryLength {
		response.BadRequest(w, r, "query too short", []models.FieldError{
			{Field: "q", Message: "must be at least 2 characters", Code: "min_length"},
		})
		return
	}

	limit := address.DefaultSuggestLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSuggestLimit {
			response.BadRequest(w, r, "invalid limit", []models.FieldError{
				{Field: "limit", Message: "must be between 1 and 20", Code: "range"},
			})
			return
		}
		limit = n
	}

	suggestions, err := h.addresses.Suggest(r.Context(), q, limit)
	if err != nil {
		response.ServiceUnavailable(w, r, "address search unavailable")
		return
	}
	if suggestions == nil {
		suggestions = []address.Suggestion{}
	}
	response.JSON(w, r, http.StatusOK, SuggestResponse{Suggestions: suggestions})
}

// Lookup handles GET /v1/address/lookup - resolve a suggestion to a full
// address.
func (h *AddressHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		response.BadRequest(w, r, "missing id", []models.FieldError{
			{Field: "id", Message: "is required", Code: "required"},
		})
		return
	}

	resolved, err := h.addresses.Lookup(r.Context(), id)
	if err != nil {
		response.ServiceUnavailable(w, r, "address lookup unavailable")
		return
	}
	if resolved == nil {
		response.NotFound(w, r, "address not found")
		return
	}
	response.JSON(w, r, http.StatusOK, resolved)
}
