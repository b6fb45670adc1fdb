package ogc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/buurtcheck/buurtcheck/internal/risk"
	"github.com/buurtcheck/buurtcheck/pkg/geom"
)

type feature struct {
	Geometry   *geom.Geometry  `json:"geometry"`
	BBox       []float64       `json:"bbox"`
	Properties risk.Properties `json:"properties"`
}

type featureCollection struct {
	Features []feature `json:"features"`
}

// FeatureInfo probes a raster layer at one RD coordinate via WMS
// GetFeatureInfo: a 101x101 pixel window over a +/-25 map unit bbox, reading
// the center pixel. A non-JSON response or an empty feature set yields nil
// properties without error; absence of data at a point is a normal outcome.
func (c *Client) FeatureInfo(ctx context.Context, layer string, x, y float64) (risk.Properties, error) {
	params := url.Values{
		"service":       {"WMS"},
		"version":       {"1.3.0"},
		"request":       {"GetFeatureInfo"},
		"layers":        {layer},
		"query_layers":  {layer},
		"crs":           {rdCRS},
		"bbox":          {rdBBox(x, y, 25)},
		"width":         {"101"},
		"height":        {"101"},
		"i":             {"50"},
		"j":             {"50"},
		"info_format":   {"application/json"},
		"feature_count": {"1"},
	}

	resp, err := c.get(ctx, c.baseURL, params)
	if err != nil {
		return nil, fmt.Errorf("feature info %s: %w", layer, err)
	}
	defer resp.Body.Close()

	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		// Servers report errors (layer gone, bad bbox) as XML with a 200.
		return nil, nil
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decoding feature info %s: %w", layer, err)
	}
	if len(fc.Features) == 0 {
		return nil, nil
	}
	return fc.Features[0].Properties, nil
}

// Feature probes a vector layer at one RD coordinate via WFS GetFeature over
// a bbox window, then picks the most relevant of the returned candidates:
// the first feature whose polygon contains the point, else the feature whose
// bounding box center lies nearest to it, else the first. Nil properties
// without error means no feature near the point.
func (c *Client) Feature(ctx context.Context, layer string, x, y float64) (risk.Properties, error) {
	params := url.Values{
		"service":      {"WFS"},
		"version":      {"2.0.0"},
		"request":      {"GetFeature"},
		"typeNames":    {layer},
		"bbox":         {rdBBox(x, y, c.halfWidth) + "," + rdCRS},
		"srsName":      {rdCRS},
		"count":        {strconv.Itoa(c.featureCount)},
		"outputFormat": {"application/json"},
	}

	resp, err := c.get(ctx, c.baseURL, params)
	if err != nil {
		return nil, fmt.Errorf("get feature %s: %w", layer, err)
	}
	defer resp.Body.Close()

	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return nil, nil
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decoding features %s: %w", layer, err)
	}
	if len(fc.Features) == 0 {
		return nil, nil
	}
	return selectFeature(fc.Features, x, y).Properties, nil
}

// selectFeature implements the candidate preference order. When several
// features contain the point the first encountered wins.
func selectFeature(features []feature, x, y float64) *feature {
	for i := range features {
		if features[i].Geometry.ContainsPoint(x, y) {
			return &features[i]
		}
	}

	best := -1
	bestDist := 0.0
	for i := range features {
		box, ok := featureBounds(&features[i])
		if !ok {
			continue
		}
		cx, cy := box.Center()
		d := geom.Dist(x, y, cx, cy)
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best >= 0 {
		return &features[best]
	}
	return &features[0]
}

// featureBounds uses the feature's own bbox when present, computing one from
// the geometry otherwise.
func featureBounds(f *feature) (geom.BBox, bool) {
	if len(f.BBox) >= 4 {
		return geom.BBox{f.BBox[0], f.BBox[1], f.BBox[2], f.BBox[3]}, true
	}
	return f.Geometry.Bounds()
}

// rdBBox formats a square extent of the given half-width around (x, y).
func rdBBox(x, y, half float64) string {
	return fmt.Sprintf("%s,%s,%s,%s",
		formatCoord(x-half), formatCoord(y-half),
		formatCoord(x+half), formatCoord(y+half))
}

// formatCoord renders an RD coordinate without exponent notation or trailing
// zeros.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
