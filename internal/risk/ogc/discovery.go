package ogc

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// LayerNames lists the layer identifiers the upstream currently publishes.
// It reads the JSON layer index when one is configured, else a WMS
// GetCapabilities document. The result is suitable as a catalog fetch
// function.
func (c *Client) LayerNames(ctx context.Context) ([]string, error) {
	if c.layerIndexURL != "" {
		return c.layerIndexNames(ctx)
	}
	return c.capabilitiesNames(ctx)
}

func (c *Client) capabilitiesNames(ctx context.Context) ([]string, error) {
	params := url.Values{
		"service": {"WMS"},
		"request": {"GetCapabilities"},
	}
	resp, err := c.get(ctx, c.baseURL, params)
	if err != nil {
		return nil, fmt.Errorf("fetching capabilities: %w", err)
	}
	defer resp.Body.Close()

	names, err := parseCapabilityNames(xml.NewDecoder(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parsing capabilities: %w", err)
	}
	return names, nil
}

// parseCapabilityNames collects the text of every Name element, at any depth
// and in any namespace. Capabilities documents nest layers arbitrarily and
// namespace usage differs per server version, so a full tree walk is the
// only portable reading.
func parseCapabilityNames(dec *xml.Decoder) ([]string, error) {
	var names []string
	var inName int
	var text strings.Builder

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "Name" {
				inName++
				text.Reset()
			}
		case xml.CharData:
			if inName > 0 {
				text.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "Name" && inName > 0 {
				inName--
				if name := strings.TrimSpace(text.String()); name != "" {
					names = append(names, name)
				}
			}
		}
	}
	return names, nil
}

// layerIndexNames reads a GeoServer-style JSON layer index:
// {"layers": {"layer": [{"name": "..."}, ...]}}.
func (c *Client) layerIndexNames(ctx context.Context) ([]string, error) {
	resp, err := c.get(ctx, c.layerIndexURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching layer index: %w", err)
	}
	defer resp.Body.Close()

	var index struct {
		Layers struct {
			Layer []struct {
				Name string `json:"name"`
			} `json:"layer"`
		} `json:"layers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return nil, fmt.Errorf("decoding layer index: %w", err)
	}

	names := make([]string, 0, len(index.Layers.Layer))
	for _, l := range index.Layers.Layer {
		if l.Name != "" {
			names = append(names, l.Name)
		}
	}
	return names, nil
}
