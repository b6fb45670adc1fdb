package bag3d

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultRadius is the half-width in meters of the square around the query
// point that gets populated with neighboring buildings.
const DefaultRadius = 250.0

// Provider fetches 3D building blocks from an upstream CityJSON source.
type Provider interface {
	// TargetBuilding fetches a single building by its 16-digit pand ID.
	// Footprint offsets are relative to the given RD center.
	TargetBuilding(ctx context.Context, pandID string, centerX, centerY float64) (*Block, error)

	// NearbyBuildings fetches the buildings within radius meters of the
	// given RD center.
	NearbyBuildings(ctx context.Context, centerX, centerY, radius float64) ([]Block, error)
}

// ServiceConfig holds configuration for the 3D massing service.
type ServiceConfig struct {
	// Provider is the upstream 3D building source (required).
	Provider Provider

	// Radius is the neighborhood half-width in meters (optional,
	// defaults to DefaultRadius).
	Radius float64

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service assembles the 3D massing of an address and its surroundings.
type Service struct {
	provider Provider
	radius   float64
	logger   zerolog.Logger
}

// NewService creates a 3D massing service.
func NewService(cfg ServiceConfig) *Service {
	radius := cfg.Radius
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &Service{
		provider: cfg.Provider,
		radius:   radius,
		logger:   cfg.Logger,
	}
}

// Query identifies the address and point to build the scene around.
type Query struct {
	// PandID is the target building's 16-digit ID.
	PandID string
	// VboID is the unit ID used as address_id when set.
	VboID string
	// RDX, RDY is the scene center in EPSG:28992.
	RDX, RDY float64
	// Lat, Lng is the same point in WGS84.
	Lat, Lng float64
}

// GetNeighborhood fetches the target building and its surroundings
// concurrently and merges them, target first, deduplicated by pand ID.
// Upstream failures degrade to a partial or empty scene; the call itself
// never fails.
func (s *Service) GetNeighborhood(ctx context.Context, q Query) *Response {
	var (
		wg     sync.WaitGroup
		target *Block
		nearby []Block
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		target, err = s.provider.TargetBuilding(ctx, q.PandID, q.RDX, q.RDY)
		if err != nil {
			s.logger.Warn().Err(err).Str("pand_id", q.PandID).
				Msg("target building fetch failed")
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		nearby, err = s.provider.NearbyBuildings(ctx, q.RDX, q.RDY, s.radius)
		if err != nil {
			s.logger.Warn().Err(err).Msg("neighborhood buildings fetch failed")
		}
	}()
	wg.Wait()

	seen := make(map[string]bool)
	buildings := make([]Block, 0, len(nearby)+1)
	if target != nil {
		buildings = append(buildings, *target)
		seen[target.PandID] = true
	}
	for _, b := range nearby {
		if seen[b.PandID] {
			continue
		}
		buildings = append(buildings, b)
		seen[b.PandID] = true
	}

	addressID := q.VboID
	if addressID == "" {
		addressID = q.PandID
	}

	resp := &Response{
		AddressID: addressID,
		Center:    Center{Lat: q.Lat, Lng: q.Lng, RDX: q.RDX, RDY: q.RDY},
		Buildings: buildings,
	}
	switch {
	case len(buildings) == 0:
		resp.Message = MsgNoData
	case target == nil:
		resp.Message = MsgTargetNotFound
	default:
		resp.TargetPandID = q.PandID
	}
	return resp
}
