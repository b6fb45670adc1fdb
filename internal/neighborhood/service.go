package neighborhood

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/buurtcheck/buurtcheck/internal/risk"
)

// Provider is the statistics upstream. Lookups return nil properties without
// error when no buurt matches.
type Provider interface {
	// BuurtByCode fetches one buurt feature's properties by its code.
	BuurtByCode(ctx context.Context, buurtCode string) (risk.Properties, error)

	// BuurtByPoint fetches the buurt containing the WGS84 coordinate.
	BuurtByPoint(ctx context.Context, lat, lng float64) (risk.Properties, error)
}

// ServiceConfig holds configuration for the neighborhood service.
type ServiceConfig struct {
	// Provider is the CBS upstream (required).
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service answers neighborhood statistics lookups, degrading to a message
// instead of failing.
type Service struct {
	provider Provider
	logger   zerolog.Logger
}

// NewService creates a neighborhood service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{provider: cfg.Provider, logger: cfg.Logger}
}

// GetStats resolves neighborhood statistics for an address. The buurt code
// is tried first when known; the coordinate bbox is the fallback. The call
// never fails: upstream trouble degrades to a response message.
func (s *Service) GetStats(ctx context.Context, addressID string, lat, lng float64, buurtCode string) *StatsResponse {
	resp := &StatsResponse{
		AddressID:  addressID,
		Source:     Source,
		SourceYear: SourceYear,
	}

	var props risk.Properties
	if buurtCode != "" {
		var err error
		props, err = s.provider.BuurtByCode(ctx, buurtCode)
		if err != nil {
			s.logger.Warn().Err(err).Str("buurt_code", buurtCode).Msg("buurt code lookup failed, trying bbox")
			props = nil
		}
	}

	if props == nil {
		var err error
		props, err = s.provider.BuurtByPoint(ctx, lat, lng)
		if err != nil {
			s.logger.Error().Err(err).Str("address_id", addressID).Msg("buurt bbox lookup failed")
			resp.Message = MsgLookupFailed
			return resp
		}
	}

	if props == nil {
		resp.Message = MsgNoBuurtFound
		return resp
	}

	stats := parseStats(props)
	if stats == nil {
		resp.Message = MsgParseFailed
		return resp
	}
	resp.Stats = stats
	return resp
}
