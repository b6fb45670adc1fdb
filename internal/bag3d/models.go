// Package bag3d assembles 3D building massing for the blocks around an
// address, sourced from the 3DBAG CityJSON API.
package bag3d

// Informational messages attached to a response when the picture is
// incomplete.
const (
	MsgNoData         = "No 3D building data available for this area"
	MsgTargetNotFound = "Target building not found in 3D data"
)

// Block is one building volume: ground level, extruded height and a
// footprint of meter offsets from the query center.
type Block struct {
	PandID         string      `json:"pand_id"`
	GroundHeight   float64     `json:"ground_height"`
	BuildingHeight float64     `json:"building_height"`
	Footprint      [][]float64 `json:"footprint"`
	Year           *int        `json:"year,omitempty"`
}

// Center echoes the query point in both coordinate systems so a viewer can
// place the scene without re-resolving the address.
type Center struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	RDX float64 `json:"rd_x"`
	RDY float64 `json:"rd_y"`
}

// Response is the 3D massing payload for one neighborhood.
type Response struct {
	AddressID    string  `json:"address_id"`
	TargetPandID string  `json:"target_pand_id,omitempty"`
	Center       Center  `json:"center"`
	Buildings    []Block `json:"buildings"`
	Message      string  `json:"message,omitempty"`
}
