// Package cbs is a client for the PDOK CBS wijken & buurten OGC API
// Features service.
package cbs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/buurtcheck/buurtcheck/internal/provider/resilience"
	"github.com/buurtcheck/buurtcheck/internal/risk"
	"github.com/buurtcheck/buurtcheck/pkg/geom"
)

const (
	// ProviderName identifies this statistics provider.
	ProviderName = "cbs"

	// DefaultBaseURL is the PDOK CBS wijken & buurten OGC API base URL.
	DefaultBaseURL = "https://api.pdok.nl/cbs/wijkenbuurten/ogc/v1"

	// bboxDelta is the half-width in degrees of the point-lookup window.
	bboxDelta = 0.001
)

// ClientConfig holds configuration for the CBS client.
type ClientConfig struct {
	// BaseURL is the OGC API base URL (optional, defaults to PDOK
	// production).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a CBS wijken & buurten client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a CBS client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

type buurtFeature struct {
	Geometry   *geom.Geometry  `json:"geometry"`
	Properties risk.Properties `json:"properties"`
}

// BuurtByCode fetches one buurt's properties by its code; nil when the code
// is unknown.
func (c *Client) BuurtByCode(ctx context.Context, buurtCode string) (risk.Properties, error) {
	params := url.Values{
		"buurtcode": {buurtCode},
		"f":         {"json"},
		"limit":     {"1"},
	}

	features, err := c.getItems(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("buurt by code %s: %w", buurtCode, err)
	}
	if len(features) == 0 {
		return nil, nil
	}
	return features[0].Properties, nil
}

// BuurtByPoint fetches buurt candidates in a small window around a WGS84
// coordinate and returns the one whose polygon contains it, falling back to
// the first candidate. Buurt polygons tile the country, so containment
// normally picks exactly one.
func (c *Client) BuurtByPoint(ctx context.Context, lat, lng float64) (risk.Properties, error) {
	bbox := fmt.Sprintf("%.6f,%.6f,%.6f,%.6f",
		lng-bboxDelta, lat-bboxDelta, lng+bboxDelta, lat+bboxDelta)
	params := url.Values{
		"bbox":  {bbox},
		"f":     {"json"},
		"limit": {"5"},
	}

	features, err := c.getItems(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("buurt by point (%f, %f): %w", lat, lng, err)
	}
	if len(features) == 0 {
		return nil, nil
	}

	for i := range features {
		if features[i].Geometry.ContainsPoint(lng, lat) {
			return features[i].Properties, nil
		}
	}
	return features[0].Properties, nil
}

func (c *Client) getItems(ctx context.Context, params url.Values) ([]buurtFeature, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/collections/buurten/items?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var fc struct {
		Features []buurtFeature `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return fc.Features, nil
}
