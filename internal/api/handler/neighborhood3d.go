package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/buurtcheck/buurtcheck/internal/api/models"
	"github.com/buurtcheck/buurtcheck/internal/api/response"
	"github.com/buurtcheck/buurtcheck/internal/bag3d"
)

// Neighborhood3DHandler handles the 3D massing endpoint.
type Neighborhood3DHandler struct {
	scenes *bag3d.Service
}

// NewNeighborhood3DHandler creates a new Neighborhood3DHandler.
func NewNeighborhood3DHandler(scenes *bag3d.Service) *Neighborhood3DHandler {
	return &Neighborhood3DHandler{scenes: scenes}
}

// Scene handles GET /v1/address/{vboId}/3d - the target building and its
// surroundings as extrudable blocks.
func (h *Neighborhood3DHandler) Scene(w http.ResponseWriter, r *http.Request) {
	vboID := chi.URLParam(r, "vboId")

	var errs []models.FieldError
	rdX := floatParam(r, "rd_x", &errs)
	rdY := floatParam(r, "rd_y", &errs)
	lat := floatParam(r, "lat", &errs)
	lng := floatParam(r, "lng", &errs)
	pandID := r.URL.Query().Get("pand_id")
	if pandID == "" {
		errs = append(errs, models.FieldError{
			Field: "pand_id", Message: "is required", Code: "required",
		})
	}
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid 3d query", errs)
		return
	}

	q := bag3d.Query{
		PandID: pandID,
		VboID:  vboID,
		RDX:    rdX, RDY: rdY,
		Lat: lat, Lng: lng,
	}
	response.JSON(w, r, http.StatusOK, h.scenes.GetNeighborhood(r.Context(), q))
}
