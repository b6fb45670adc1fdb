// Package offline stores pre-ingested raster grids sampled by RD
// coordinate, a fallback data source for when live WMS sampling is slow or
// unavailable. Grids are gob-encoded files written by the ingest pipeline.
package offline

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"

	"github.com/buurtcheck/buurtcheck/internal/risk"
)

// Grid is a regular raster aligned to RD (EPSG:28992) coordinates.
// Values are row-major with row 0 at the southern edge.
type Grid struct {
	Name string

	// OriginX, OriginY is the lower-left corner in RD meters.
	OriginX float64
	OriginY float64

	// CellSize is the cell width and height in meters.
	CellSize float64

	Width  int
	Height int

	// NoData marks cells without a measurement when HasNoData is set.
	NoData    float64
	HasNoData bool

	Values []float64
}

// Sample returns the cell value covering the given RD point. The second
// return is false outside the grid or on a no-data cell.
func (g *Grid) Sample(x, y float64) (float64, bool) {
	if g.CellSize <= 0 {
		return 0, false
	}
	col := int(math.Floor((x - g.OriginX) / g.CellSize))
	row := int(math.Floor((y - g.OriginY) / g.CellSize))
	if col < 0 || col >= g.Width || row < 0 || row >= g.Height {
		return 0, false
	}
	i := row*g.Width + col
	if i >= len(g.Values) {
		return 0, false
	}

	v := g.Values[i]
	if g.HasNoData && v == g.NoData {
		return 0, false
	}
	if risk.IsNoData(v) {
		return 0, false
	}
	return v, true
}

// WriteFile gob-encodes the grid to path via a temp file and rename, so a
// concurrent reader never sees a half-written grid.
func (g *Grid) WriteFile(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating grid file: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(g); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding grid: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing grid file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming grid file: %w", err)
	}
	return nil
}

// ReadFile loads a gob-encoded grid.
func ReadFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening grid file: %w", err)
	}
	defer f.Close()

	var g Grid
	if err := gob.NewDecoder(f).Decode(&g); err != nil {
		return nil, fmt.Errorf("decoding grid %s: %w", path, err)
	}
	return &g, nil
}
