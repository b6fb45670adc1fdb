package building

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/buurtcheck/buurtcheck/pkg/geom"
)

// Unit is a BAG verblijfsobject: one addressable unit inside a building.
type Unit struct {
	PandID       string
	Gebruiksdoel string
	Bouwjaar     *int
	Oppervlakte  *float64
	PandStatus   string
}

// Pand is a BAG pand: the building shell.
type Pand struct {
	Status    string
	Bouwjaar  *int
	NumUnits  *int
	Footprint *geom.Geometry
}

// Registry is the building registry upstream. Lookups return nil without
// error for unknown identifiers.
type Registry interface {
	Verblijfsobject(ctx context.Context, id string) (*Unit, error)
	Pand(ctx context.Context, id string) (*Pand, error)
}

// ServiceConfig holds configuration for the building service.
type ServiceConfig struct {
	// Registry is the BAG upstream (required).
	Registry Registry

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service assembles building facts from unit and building records.
type Service struct {
	registry Registry
	logger   zerolog.Logger
}

// NewService creates a building service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{registry: cfg.Registry, logger: cfg.Logger}
}

// GetFacts resolves a verblijfsobject ID to building facts. Returns nil
// without error when the unit does not exist; ErrInvalidID when the ID is
// malformed.
func (s *Service) GetFacts(ctx context.Context, vboID string) (*Facts, error) {
	if err := ValidateID(vboID); err != nil {
		return nil, fmt.Errorf("verblijfsobject %q: %w", vboID, err)
	}

	unit, err := s.registry.Verblijfsobject(ctx, vboID)
	if err != nil {
		return nil, fmt.Errorf("fetch verblijfsobject %s: %w", vboID, err)
	}
	if unit == nil {
		return nil, nil
	}

	var pand *Pand
	if unit.PandID != "" {
		pand, err = s.registry.Pand(ctx, unit.PandID)
		if err != nil {
			// The unit alone still makes a useful answer.
			s.logger.Warn().Err(err).Str("pand_id", unit.PandID).Msg("pand fetch failed, serving unit facts only")
			pand = nil
		}
	}

	intendedUse, intendedUseEN := SplitIntendedUse(unit.Gebruiksdoel)

	facts := &Facts{
		PandID:        unit.PandID,
		IntendedUse:   intendedUse,
		IntendedUseEN: intendedUseEN,
		FloorAreaM2:   unit.Oppervlakte,
	}
	if facts.PandID == "" {
		facts.PandID = "unknown"
	}

	status := unit.PandStatus
	if pand != nil && pand.Status != "" {
		status = pand.Status
	}
	facts.Status = status
	facts.StatusEN = TranslateStatus(status)

	facts.ConstructionYear = unit.Bouwjaar
	if facts.ConstructionYear == nil && pand != nil {
		facts.ConstructionYear = pand.Bouwjaar
	}

	if pand != nil {
		facts.NumUnits = pand.NumUnits
		facts.Footprint = pand.Footprint
	}
	return facts, nil
}
