// Package bag is a client for the PDOK BAG WFS, the authoritative Dutch
// building and address registry.
package bag

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/buurtcheck/buurtcheck/internal/building"
	"github.com/buurtcheck/buurtcheck/internal/provider/resilience"
	"github.com/buurtcheck/buurtcheck/pkg/geom"
)

const (
	// ProviderName identifies this registry provider.
	ProviderName = "bag"

	// DefaultBaseURL is the PDOK BAG WFS endpoint.
	DefaultBaseURL = "https://service.pdok.nl/lv/bag/wfs/v2_0"
)

// ClientConfig holds configuration for the BAG WFS client.
type ClientConfig struct {
	// BaseURL is the WFS endpoint (optional, defaults to PDOK production).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a BAG WFS client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a BAG WFS client.
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

// idFilter builds the OGC XML filter for an exact identificatie match. The
// WFS has no REST-style ID path; the XML filter is the supported lookup.
func idFilter(property, value string) string {
	return "<Filter><PropertyIsEqualTo>" +
		"<PropertyName>" + property + "</PropertyName>" +
		"<Literal>" + value + "</Literal>" +
		"</PropertyIsEqualTo></Filter>"
}

type bagFeature struct {
	Geometry   *geom.Geometry `json:"geometry"`
	Properties struct {
		Pandidentificatie       string          `json:"pandidentificatie"`
		Gebruiksdoel            string          `json:"gebruiksdoel"`
		Oppervlakte             *float64        `json:"oppervlakte"`
		Bouwjaar                json.RawMessage `json:"bouwjaar"`
		Status                  string          `json:"status"`
		Pandstatus              string          `json:"pandstatus"`
		AantalVerblijfsobjecten *int            `json:"aantal_verblijfsobjecten"`
	} `json:"properties"`
}

// Verblijfsobject fetches one unit by its 16-digit identificatie.
func (c *Client) Verblijfsobject(ctx context.Context, id string) (*building.Unit, error) {
	if err := building.ValidateID(id); err != nil {
		return nil, err
	}

	f, err := c.getFeature(ctx, "bag:verblijfsobject", id, false)
	if err != nil || f == nil {
		return nil, err
	}

	return &building.Unit{
		PandID:       f.Properties.Pandidentificatie,
		Gebruiksdoel: f.Properties.Gebruiksdoel,
		Bouwjaar:     parseYear(f.Properties.Bouwjaar),
		Oppervlakte:  f.Properties.Oppervlakte,
		PandStatus:   f.Properties.Pandstatus,
	}, nil
}

// Pand fetches one building shell by its 16-digit identificatie, footprint
// geometry reprojected to WGS84.
func (c *Client) Pand(ctx context.Context, id string) (*building.Pand, error) {
	if err := building.ValidateID(id); err != nil {
		return nil, err
	}

	f, err := c.getFeature(ctx, "bag:pand", id, true)
	if err != nil || f == nil {
		return nil, err
	}

	return &building.Pand{
		Status:    f.Properties.Status,
		Bouwjaar:  parseYear(f.Properties.Bouwjaar),
		NumUnits:  f.Properties.AantalVerblijfsobjecten,
		Footprint: f.Geometry,
	}, nil
}

func (c *Client) getFeature(ctx context.Context, typeName, id string, wgs84 bool) (*bagFeature, error) {
	params := url.Values{
		"service":      {"WFS"},
		"version":      {"2.0.0"},
		"request":      {"GetFeature"},
		"typeName":     {typeName},
		"Filter":       {idFilter("identificatie", id)},
		"count":        {"1"},
		"outputFormat": {"application/json"},
	}
	if wgs84 {
		params.Set("srsName", "EPSG:4326")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"?"+params.Encode(), http.NoBody)
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
		Features []bagFeature `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", typeName, err)
	}
	if len(fc.Features) == 0 {
		return nil, nil
	}
	return &fc.Features[0], nil
}

// parseYear accepts the bouwjaar field as either a number or a string.
func parseYear(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}
	var n int
	if json.Unmarshal(raw, &n) == nil && n > 0 {
		return &n
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		var parsed int
		if _, err := fmt.Sscanf(s, "%d", &parsed); err == nil && parsed > 0 {
			return &parsed
		}
	}
	return nil
}
