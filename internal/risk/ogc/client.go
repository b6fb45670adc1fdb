// Package ogc is a thin client for the OGC WMS/WFS geodata services the risk
// pipelines sample: layer discovery via GetCapabilities or a JSON layer
// index, raster point probes via GetFeatureInfo, and vector point probes via
// GetFeature with point-in-polygon feature selection.
package ogc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/buurtcheck/buurtcheck/internal/provider/resilience"
)

const (
	// DefaultFeatureHalfWidth is the WFS query window half-width in map
	// units: a 10m square around the probe point, so only hazard polygons
	// that actually cover the address are candidates.
	DefaultFeatureHalfWidth = 5.0

	// DefaultFeatureCount bounds how many candidate features one GetFeature
	// query may return for point selection.
	DefaultFeatureCount = 10

	rdCRS = "EPSG:28992"
)

// ClientConfig holds configuration for one upstream OGC service.
type ClientConfig struct {
	// Name identifies the upstream in logs and circuit breaker state.
	Name string

	// BaseURL is the WMS/WFS endpoint (required).
	BaseURL string

	// LayerIndexURL is an optional JSON layer index endpoint. When set,
	// LayerNames reads it instead of WMS GetCapabilities; GeoServer exposes
	// one per workspace-less virtual service.
	LayerIndexURL string

	// FeatureHalfWidth is the WFS bbox half-width in map units (optional,
	// defaults to DefaultFeatureHalfWidth).
	FeatureHalfWidth float64

	// FeatureCount caps candidate features per WFS query (optional,
	// defaults to DefaultFeatureCount).
	FeatureCount int

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client talks to one upstream OGC service.
type Client struct {
	name          string
	baseURL       string
	layerIndexURL string
	halfWidth     float64
	featureCount  int
	httpClient    *resilience.Client
	logger        zerolog.Logger
}

// NewClient creates a client for one OGC endpoint.
func NewClient(cfg ClientConfig) *Client {
	halfWidth := cfg.FeatureHalfWidth
	if halfWidth == 0 {
		halfWidth = DefaultFeatureHalfWidth
	}

	count := cfg.FeatureCount
	if count == 0 {
		count = DefaultFeatureCount
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(cfg.Name))
	}

	return &Client{
		name:          cfg.Name,
		baseURL:       cfg.BaseURL,
		layerIndexURL: cfg.LayerIndexURL,
		halfWidth:     halfWidth,
		featureCount:  count,
		httpClient:    httpClient,
		logger:        cfg.Logger,
	}
}

// Name returns the upstream identifier.
func (c *Client) Name() string {
	return c.name
}

// get issues a GET against endpoint with the given query parameters.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	u := endpoint
	if len(params) > 0 {
		u = endpoint + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return resp, nil
}
