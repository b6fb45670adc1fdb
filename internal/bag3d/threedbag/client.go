// Package threedbag is a client for the 3DBAG OGC API, which serves the
// Dutch building stock as CityJSON with per-building height attributes.
package threedbag

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/buurtcheck/buurtcheck/internal/bag3d"
	"github.com/buurtcheck/buurtcheck/internal/provider/resilience"
)

const (
	// ProviderName identifies this 3D building provider.
	ProviderName = "threedbag"

	// DefaultBaseURL is the public 3DBAG API endpoint.
	DefaultBaseURL = "https://api.3dbag.nl"

	// pandIDPrefix is the namespace 3DBAG prepends to raw BAG pand IDs.
	pandIDPrefix = "NL.IMBAG.Pand."

	// maxPages caps how many bbox result pages get followed.
	maxPages = 3

	// bboxBudget is the total time budget for a bbox fetch across pages.
	bboxBudget = 20 * time.Second

	// pageLimit is the page size requested from the bbox endpoint.
	pageLimit = 20
)

// ClientConfig holds configuration for the 3DBAG client.
type ClientConfig struct {
	// BaseURL is the API endpoint (optional, defaults to production).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Client is a 3DBAG API client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// NewClient creates a 3DBAG client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
		now:        now,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// itemDoc is the single-item CityJSONFeature envelope. The transform lives
// in the root-level metadata; some deployments nest it inside the feature
// instead, so both spots are read.
type itemDoc struct {
	Feature     *cityJSONFeature      `json:"feature"`
	CityObjects map[string]cityObject `json:"CityObjects"`
	Vertices    [][]float64           `json:"vertices"`
	Metadata    struct {
		Transform transform `json:"transform"`
	} `json:"metadata"`
}

// TargetBuilding fetches one building from the single-item endpoint.
// Returns nil without error when the building is absent or has no usable
// LoD 0 footprint.
func (c *Client) TargetBuilding(ctx context.Context, pandID string, centerX, centerY float64) (*bag3d.Block, error) {
	url := fmt.Sprintf("%s/collections/pand/items/%s%s", c.baseURL, pandIDPrefix, pandID)

	var doc itemDoc
	if err := c.getJSON(ctx, url, &doc); err != nil {
		return nil, err
	}

	inner := cityJSONFeature{
		CityObjects: doc.CityObjects,
		Vertices:    doc.Vertices,
	}
	if doc.Feature != nil {
		inner = *doc.Feature
	}

	tf := doc.Metadata.Transform
	if len(tf.Scale) == 0 {
		tf = inner.Metadata.Transform
	}
	tf.normalize()

	for _, co := range inner.CityObjects {
		if co.Type != "Building" {
			continue
		}
		if b := parseBuilding(co, inner.Vertices, tf, centerX, centerY); b != nil {
			return b, nil
		}
	}
	return nil, nil
}

// pageDoc is one page of the paginated bbox endpoint. Unlike the single-item
// endpoint, vertices live per feature while the transform is shared.
type pageDoc struct {
	Metadata struct {
		Transform transform `json:"transform"`
	} `json:"metadata"`
	Features []cityJSONFeature `json:"features"`
	Links    []struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	} `json:"links"`
}

// NearbyBuildings fetches the buildings inside the square bbox around the
// center, following next links up to maxPages pages or until the time
// budget runs out. Page failures truncate the result rather than failing
// the whole fetch.
func (c *Client) NearbyBuildings(ctx context.Context, centerX, centerY, radius float64) ([]bag3d.Block, error) {
	bbox := fmt.Sprintf("%.0f,%.0f,%.0f,%.0f",
		centerX-radius, centerY-radius, centerX+radius, centerY+radius)
	next := fmt.Sprintf("%s/collections/pand/items?bbox=%s&limit=%d", c.baseURL, bbox, pageLimit)

	start := c.now()
	var buildings []bag3d.Block

	for page := 0; next != "" && page < maxPages; page++ {
		remaining := bboxBudget - c.now().Sub(start)
		if remaining < time.Second {
			c.logger.Info().Int("pages", page).
				Msg("bbox fetch stopping: time budget exhausted")
			break
		}

		pageCtx, cancel := context.WithTimeout(ctx, remaining)
		var doc pageDoc
		err := c.getJSON(pageCtx, next, &doc)
		cancel()
		if err != nil {
			c.logger.Warn().Err(err).Int("page", page+1).Msg("bbox page failed")
			break
		}

		tf := doc.Metadata.Transform
		tf.normalize()

		pageCount := 0
		for _, f := range doc.Features {
			for _, co := range f.CityObjects {
				if co.Type != "Building" {
					continue
				}
				if b := parseBuilding(co, f.Vertices, tf, centerX, centerY); b != nil {
					buildings = append(buildings, *b)
					pageCount++
				}
			}
		}
		c.logger.Debug().Int("page", page+1).Int("buildings", pageCount).
			Msg("bbox page fetched")

		next = ""
		for _, l := range doc.Links {
			if l.Rel == "next" {
				next = l.Href
				break
			}
		}
	}

	c.logger.Info().Int("buildings", len(buildings)).
		Dur("elapsed", c.now().Sub(start)).Msg("bbox fetch complete")
	return buildings, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
