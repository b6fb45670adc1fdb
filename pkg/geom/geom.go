// Package geom provides small planar geometry helpers for working with
// GeoJSON-style polygon features in projected (Rijksdriehoek) coordinates.
package geom

import "math"

// Ring is a closed linear ring: a sequence of [x, y] vertices where the last
// vertex repeats the first.
type Ring [][]float64

// ContainsPoint reports whether the point (x, y) lies inside the ring, using
// the ray-casting (crossing number) algorithm. Points exactly on an edge are
// not guaranteed either way. Rings with fewer than 3 vertices contain nothing.
func (r Ring) ContainsPoint(x, y float64) bool {
	if len(r) < 3 {
		return false
	}
	inside := false
	j := len(r) - 1
	for i := 0; i < len(r); i++ {
		xi, yi := r[i][0], r[i][1]
		xj, yj := r[j][0], r[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Geometry is a minimal GeoJSON geometry holding only what containment tests
// need. Coordinates is left as raw JSON-decoded nesting because polygon and
// multi-polygon differ in depth.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// ContainsPoint reports whether the geometry's exterior ring(s) contain the
// point. Only Polygon and MultiPolygon are supported; interior rings (holes)
// are ignored, matching how coarse hazard layers are drawn.
func (g *Geometry) ContainsPoint(x, y float64) bool {
	if g == nil {
		return false
	}
	switch g.Type {
	case "Polygon":
		rings := toRings(g.Coordinates)
		if len(rings) == 0 {
			return false
		}
		return rings[0].ContainsPoint(x, y)
	case "MultiPolygon", "MultiSurface":
		polys, ok := g.Coordinates.([]any)
		if !ok {
			return false
		}
		for _, p := range polys {
			rings := toRings(p)
			if len(rings) > 0 && rings[0].ContainsPoint(x, y) {
				return true
			}
		}
	}
	return false
}

// Bounds returns the extent of all vertices in the geometry. The second
// return is false when the geometry holds no usable coordinates.
func (g *Geometry) Bounds() (BBox, bool) {
	if g == nil {
		return BBox{}, false
	}
	var ringSets [][]Ring
	switch g.Type {
	case "Polygon":
		ringSets = append(ringSets, toRings(g.Coordinates))
	case "MultiPolygon", "MultiSurface":
		polys, ok := g.Coordinates.([]any)
		if !ok {
			return BBox{}, false
		}
		for _, p := range polys {
			ringSets = append(ringSets, toRings(p))
		}
	default:
		return BBox{}, false
	}

	b := BBox{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	found := false
	for _, rings := range ringSets {
		for _, ring := range rings {
			for _, pt := range ring {
				b[0] = math.Min(b[0], pt[0])
				b[1] = math.Min(b[1], pt[1])
				b[2] = math.Max(b[2], pt[0])
				b[3] = math.Max(b[3], pt[1])
				found = true
			}
		}
	}
	return b, found
}

// toRings converts a JSON-decoded []any of rings into typed Rings.
func toRings(v any) []Ring {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	rings := make([]Ring, 0, len(raw))
	for _, rr := range raw {
		pts, ok := rr.([]any)
		if !ok {
			continue
		}
		ring := make(Ring, 0, len(pts))
		for _, pt := range pts {
			pair, ok := pt.([]any)
			if !ok || len(pair) < 2 {
				continue
			}
			px, okX := toFloat(pair[0])
			py, okY := toFloat(pair[1])
			if !okX || !okY {
				continue
			}
			ring = append(ring, []float64{px, py})
		}
		rings = append(rings, ring)
	}
	return rings
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// BBox is a [minX, minY, maxX, maxY] extent.
type BBox [4]float64

// Center returns the center point of the extent.
func (b BBox) Center() (x, y float64) {
	return (b[0] + b[2]) / 2, (b[1] + b[3]) / 2
}

// Dist returns the Euclidean distance between two points. Projection
// distortion is ignored; fine for the short distances we compare.
func Dist(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}
