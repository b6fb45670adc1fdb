package handler

import (
	"net/http"
	"strconv"

	"github.com/buurtcheck/buurtcheck/internal/api/models"
)

// floatParam parses a required float query parameter, collecting a field
// error when absent or malformed.
func floatParam(r *http.Request, name string, errs *[]models.FieldError) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		*errs = append(*errs, models.FieldError{
			Field: name, Message: "is required", Code: "required",
		})
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, models.FieldError{
			Field: name, Message: "must be a number", Code: "type",
		})
		return 0
	}
	return v
}

// optionalFloatParam parses an optional float query parameter, collecting a
// field error only when present but malformed.
func optionalFloatParam(r *http.Request, name string, errs *[]models.FieldError) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	return floatParam(r, name, errs)
}
