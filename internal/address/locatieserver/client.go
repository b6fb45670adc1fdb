// Package locatieserver is a client for the PDOK Locatieserver free-text
// geocoding API.
package locatieserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/buurtcheck/buurtcheck/internal/address"
	"github.com/buurtcheck/buurtcheck/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "locatieserver"

	// DefaultBaseURL is the PDOK Locatieserver v3.1 base URL.
	DefaultBaseURL = "https://api.pdok.nl/bzk/locatieserver/search/v3_1"
)

// ClientConfig holds configuration for the Locatieserver client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to PDOK production).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a PDOK Locatieserver client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a Locatieserver client.
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

// suggestDoc and lookupDoc mirror the Solr document fields we read.
type suggestDoc struct {
	ID           string  `json:"id"`
	Weergavenaam string  `json:"weergavenaam"`
	Type         string  `json:"type"`
	Score        float64 `json:"score"`
}

type lookupDoc struct {
	ID                    string          `json:"id"`
	NummeraanduidingID    string          `json:"nummeraanduiding_id"`
	AdresseerbaarObjectID string          `json:"adresseerbaarobject_id"`
	Weergavenaam          string          `json:"weergavenaam"`
	Straatnaam            string          `json:"straatnaam"`
	Huisnummer            json.RawMessage `json:"huisnummer"`
	Huisletter            string          `json:"huisletter"`
	Huisnummertoevoeging  string          `json:"huisnummertoevoeging"`
	Postcode              string          `json:"postcode"`
	Woonplaatsnaam        string          `json:"woonplaatsnaam"`
	Gemeentenaam          string          `json:"gemeentenaam"`
	Provincienaam         string          `json:"provincienaam"`
	CentroideLL           string          `json:"centroide_ll"`
	CentroideRD           string          `json:"centroide_rd"`
	Buurtcode             string          `json:"buurtcode"`
	Wijkcode              string          `json:"wijkcode"`
}

type solrResponse[T any] struct {
	Response struct {
		Docs []T `json:"docs"`
	} `json:"response"`
}

// Suggest queries the autocomplete endpoint, restricted to address documents.
func (c *Client) Suggest(ctx context.Context, query string, limit int) ([]address.Suggestion, error) {
	params := url.Values{
		"q":    {query},
		"fq":   {"type:adres"},
		"rows": {strconv.Itoa(limit)},
	}

	var solr solrResponse[suggestDoc]
	if err := c.getJSON(ctx, "/suggest", params, &solr); err != nil {
		return nil, err
	}

	suggestions := make([]address.Suggestion, 0, len(solr.Response.Docs))
	for _, doc := range solr.Response.Docs {
		docType := doc.Type
		if docType == "" {
			docType = "adres"
		}
		suggestions = append(suggestions, address.Suggestion{
			ID:          doc.ID,
			DisplayName: doc.Weergavenaam,
			Type:        docType,
			Score:       doc.Score,
		})
	}
	return suggestions, nil
}

// Lookup resolves one suggestion ID; nil when the upstream has no document
// for it.
func (c *Client) Lookup(ctx context.Context, id string) (*address.Resolved, error) {
	params := url.Values{
		"id": {id},
		"fl": {"*"},
	}

	var solr solrResponse[lookupDoc]
	if err := c.getJSON(ctx, "/lookup", params, &solr); err != nil {
		return nil, err
	}
	if len(solr.Response.Docs) == 0 {
		return nil, nil
	}
	doc := solr.Response.Docs[0]

	resolved := &address.Resolved{
		ID:                    doc.ID,
		NummeraanduidingID:    doc.NummeraanduidingID,
		AdresseerbaarObjectID: doc.AdresseerbaarObjectID,
		DisplayName:           doc.Weergavenaam,
		Street:                doc.Straatnaam,
		HouseNumber:           houseNumberString(doc.Huisnummer),
		HouseLetter:           doc.Huisletter,
		Addition:              doc.Huisnummertoevoeging,
		Postcode:              doc.Postcode,
		City:                  doc.Woonplaatsnaam,
		Municipality:          doc.Gemeentenaam,
		Province:              doc.Provincienaam,
		BuurtCode:             doc.Buurtcode,
		WijkCode:              doc.Wijkcode,
	}

	if x, y, ok := ParseWKTPoint(doc.CentroideLL); ok {
		// WKT points are (lon lat).
		resolved.Longitude = &x
		resolved.Latitude = &y
	}
	if x, y, ok := ParseWKTPoint(doc.CentroideRD); ok {
		resolved.RDX = &x
		resolved.RDY = &y
	}
	return resolved, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+params.Encode(), http.NoBody)
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
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

var wktPoint = regexp.MustCompile(`POINT\(([0-9.]+)\s+([0-9.]+)\)`)

// ParseWKTPoint parses a "POINT(x y)" string as emitted by the Locatieserver
// centroid fields.
func ParseWKTPoint(wkt string) (x, y float64, ok bool) {
	m := wktPoint.FindStringSubmatch(wkt)
	if m == nil {
		return 0, 0, false
	}
	x, errX := strconv.ParseFloat(m[1], 64)
	y, errY := strconv.ParseFloat(m[2], 64)
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	return x, y, true
}

// houseNumberString renders the huisnummer field, which the upstream emits
// as either a number or a string.
func houseNumberString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n float64
	if json.Unmarshal(raw, &n) == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}
