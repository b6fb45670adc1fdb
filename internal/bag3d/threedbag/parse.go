package threedbag

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/buurtcheck/buurtcheck/internal/bag3d"
)

// transform maps quantized CityJSON vertex coordinates back to RD meters.
type transform struct {
	Scale     []float64 `json:"scale"`
	Translate []float64 `json:"translate"`
}

// normalize fills in the CityJSON default transform when absent.
func (t *transform) normalize() {
	if len(t.Scale) < 2 {
		t.Scale = []float64{0.001, 0.001, 0.001}
	}
	if len(t.Translate) < 2 {
		t.Translate = []float64{0, 0, 0}
	}
}

type cityJSONFeature struct {
	CityObjects map[string]cityObject `json:"CityObjects"`
	Vertices    [][]float64           `json:"vertices"`
	Metadata    struct {
		Transform transform `json:"transform"`
	} `json:"metadata"`
}

type cityObject struct {
	Type       string `json:"type"`
	Attributes struct {
		Identificatie string   `json:"identificatie"`
		HMaaiveld     *float64 `json:"b3_h_maaiveld"`
		HDakMax       *float64 `json:"b3_h_dak_max"`
		Bouwjaar      *int     `json:"oorspronkelijkbouwjaar"`
	} `json:"attributes"`
	Geometry []struct {
		Type       string          `json:"type"`
		LoD        string          `json:"lod"`
		Boundaries json.RawMessage `json:"boundaries"`
	} `json:"geometry"`
}

// outerRing extracts the outer boundary ring of the first surface. The
// MultiSurface form nests surface -> rings -> indices; a bare ring list is
// accepted too.
func outerRing(raw json.RawMessage) []int {
	var surfaces [][][]int
	if json.Unmarshal(raw, &surfaces) == nil && len(surfaces) > 0 && len(surfaces[0]) > 0 {
		return surfaces[0][0]
	}
	var rings [][]int
	if json.Unmarshal(raw, &rings) == nil && len(rings) > 0 {
		return rings[0]
	}
	return nil
}

// parseBuilding turns a CityJSON Building into a block with meter offsets
// from the query center. Returns nil when the object lacks heights or a
// usable LoD 0 footprint.
func parseBuilding(co cityObject, vertices [][]float64, tf transform, centerX, centerY float64) *bag3d.Block {
	attrs := co.Attributes
	if attrs.HMaaiveld == nil || attrs.HDakMax == nil {
		return nil
	}
	height := *attrs.HDakMax - *attrs.HMaaiveld
	if height <= 0 {
		return nil
	}

	var ring []int
	for _, g := range co.Geometry {
		if g.LoD == "0" && g.Type == "MultiSurface" {
			ring = outerRing(g.Boundaries)
			break
		}
	}
	if ring == nil {
		return nil
	}

	footprint := make([][]float64, 0, len(ring))
	for _, idx := range ring {
		if idx < 0 || idx >= len(vertices) || len(vertices[idx]) < 2 {
			continue
		}
		v := vertices[idx]
		realX := v[0]*tf.Scale[0] + tf.Translate[0]
		realY := v[1]*tf.Scale[1] + tf.Translate[1]
		footprint = append(footprint, []float64{
			round2(realX - centerX),
			round2(realY - centerY),
		})
	}
	if len(footprint) < 3 {
		return nil
	}

	id := strings.TrimPrefix(attrs.Identificatie, pandIDPrefix)
	if id == "" {
		id = "unknown"
	}

	return &bag3d.Block{
		PandID:         id,
		GroundHeight:   round2(*attrs.HMaaiveld),
		BuildingHeight: round2(height),
		Footprint:      footprint,
		Year:           attrs.Bouwjaar,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
