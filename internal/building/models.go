// Package building assembles building facts for a Dutch address from the
// national BAG building registry.
package building

import (
	"errors"
	"regexp"

	"github.com/buurtcheck/buurtcheck/pkg/geom"
)

// ErrInvalidID means an identifier is not a 16-digit BAG identificatie.
var ErrInvalidID = errors.New("invalid BAG identifier: must be 16 digits")

var bagIDPattern = regexp.MustCompile(`^[0-9]{16}$`)

// ValidateID checks a BAG identificatie (verblijfsobject or pand).
func ValidateID(id string) error {
	if !bagIDPattern.MatchString(id) {
		return ErrInvalidID
	}
	return nil
}

// Facts describes one building and the queried unit within it. Dutch source
// values are kept alongside their English renderings so the API can serve
// both.
type Facts struct {
	PandID           string         `json:"pand_id"`
	ConstructionYear *int           `json:"construction_year,omitempty"`
	Status           string         `json:"status,omitempty"`
	StatusEN         string         `json:"status_en,omitempty"`
	IntendedUse      []string       `json:"intended_use"`
	IntendedUseEN    []string       `json:"intended_use_en"`
	NumUnits         *int           `json:"num_units,omitempty"`
	FloorAreaM2      *float64       `json:"floor_area_m2,omitempty"`
	Footprint        *geom.Geometry `json:"footprint_geojson,omitempty"`
}
