// Package address resolves free-text Dutch address queries into addresses
// with both WGS84 and Rijksdriehoek coordinates, via the national PDOK
// Locatieserver.
package address

// Suggestion is one autocomplete candidate for a partial address query.
type Suggestion struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Type        string  `json:"type"`
	Score       float64 `json:"score"`
}

// Resolved is a fully resolved address. Coordinates are pointers: the
// upstream occasionally returns documents without centroids.
type Resolved struct {
	ID                    string   `json:"id"`
	NummeraanduidingID    string   `json:"nummeraanduiding_id,omitempty"`
	AdresseerbaarObjectID string   `json:"adresseerbaar_object_id,omitempty"`
	DisplayName           string   `json:"display_name"`
	Street                string   `json:"street,omitempty"`
	HouseNumber           string   `json:"house_number,omitempty"`
	HouseLetter           string   `json:"house_letter,omitempty"`
	Addition              string   `json:"addition,omitempty"`
	Postcode              string   `json:"postcode,omitempty"`
	City                  string   `json:"city,omitempty"`
	Municipality          string   `json:"municipality,omitempty"`
	Province              string   `json:"province,omitempty"`
	Latitude              *float64 `json:"latitude,omitempty"`
	Longitude             *float64 `json:"longitude,omitempty"`
	RDX                   *float64 `json:"rd_x,omitempty"`
	RDY                   *float64 `json:"rd_y,omitempty"`
	BuurtCode             string   `json:"buurt_code,omitempty"`
	WijkCode              string   `json:"wijk_code,omitempty"`
}

// HasRD reports whether the address carries projected coordinates, which the
// risk pipelines require.
func (r *Resolved) HasRD() bool {
	return r != nil && r.RDX != nil && r.RDY != nil
}
