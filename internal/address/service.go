package address

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/buurtcheck/buurtcheck/internal/cache"
)

// Provider is the geocoding upstream.
type Provider interface {
	// Suggest returns autocomplete candidates for a partial query.
	Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error)

	// Lookup resolves one suggestion ID to a full address, nil when the ID
	// is unknown.
	Lookup(ctx context.Context, id string) (*Resolved, error)
}

// ServiceConfig holds configuration for the address service.
type ServiceConfig struct {
	// Provider is the geocoding upstream (required).
	Provider Provider

	// Cache is the response cache (optional, defaults to in-memory).
	Cache cache.Store

	// SuggestTTL is how long suggestion lists are cached (default: 1 hour).
	SuggestTTL time.Duration

	// LookupTTL is how long resolved addresses are cached (default: 24 hours).
	// Address data changes on BAG mutation cadence, not per request.
	LookupTTL time.Duration

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service provides cached address suggestion and resolution.
type Service struct {
	provider   Provider
	cache      cache.Store
	suggestTTL time.Duration
	lookupTTL  time.Duration
	logger     zerolog.Logger
}

// NewService creates an address service.
func NewService(cfg ServiceConfig) *Service {
	store := cfg.Cache
	if store == nil {
		store = cache.NewMemory()
	}

	suggestTTL := cfg.SuggestTTL
	if suggestTTL == 0 {
		suggestTTL = time.Hour
	}

	lookupTTL := cfg.LookupTTL
	if lookupTTL == 0 {
		lookupTTL = 24 * time.Hour
	}

	return &Service{
		provider:   cfg.Provider,
		cache:      store,
		suggestTTL: suggestTTL,
		lookupTTL:  lookupTTL,
		logger:     cfg.Logger,
	}
}

// DefaultSuggestLimit caps autocomplete responses.
const DefaultSuggestLimit = 7

// Suggest returns autocomplete candidates for query.
func (s *Service) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	key := fmt.Sprintf("addr:suggest:%d:%s", limit, query)
	var cached []Suggestion
	if cache.GetJSON(ctx, s.cache, key, &cached) {
		return cached, nil
	}

	suggestions, err := s.provider.Suggest(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest %q: %w", query, err)
	}

	cache.SetJSON(ctx, s.cache, key, suggestions, s.suggestTTL)
	return suggestions, nil
}

// Lookup resolves a suggestion ID. A nil result without error means the ID
// is unknown upstream.
func (s *Service) Lookup(ctx context.Context, id string) (*Resolved, error) {
	key := "addr:lookup:" + id
	var cached Resolved
	if cache.GetJSON(ctx, s.cache, key, &cached) {
		return &cached, nil
	}

	resolved, err := s.provider.Lookup(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", id, err)
	}
	if resolved == nil {
		return nil, nil
	}

	cache.SetJSON(ctx, s.cache, key, resolved, s.lookupTTL)
	return resolved, nil
}
