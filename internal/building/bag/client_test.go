package bag_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buurtcheck/buurtcheck/internal/building"
	"github.com/buurtcheck/buurtcheck/internal/building/bag"
	"github.com/buurtcheck/buurtcheck/internal/provider/resilience"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *bag.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return bag.NewClient(bag.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("test")),
	})
}

func TestVerblijfsobject(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "bag:verblijfsobject", q.Get("typeName"))
		assert.Contains(t, q.Get("Filter"), "<PropertyName>identificatie</PropertyName>")
		assert.Contains(t, q.Get("Filter"), "<Literal>0363010000000001</Literal>")
		assert.Equal(t, "1", q.Get("count"))
		assert.Empty(t, q.Get("srsName"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"features":[{"properties":{
			"pandidentificatie":"0363100000000002",
			"gebruiksdoel":"woonfunctie",
			"oppervlakte":85,
			"pandstatus":"Pand in gebruik"
		}}]}`))
	})

	unit, err := client.Verblijfsobject(context.Background(), "0363010000000001")
	require.NoError(t, err)
	require.NotNil(t, unit)
	assert.Equal(t, "0363100000000002", unit.PandID)
	assert.Equal(t, "woonfunctie", unit.Gebruiksdoel)
	assert.Equal(t, 85.0, *unit.Oppervlakte)
	assert.Equal(t, "Pand in gebruik", unit.PandStatus)
}

func TestPand(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "bag:pand", q.Get("typeName"))
		assert.Equal(t, "EPSG:4326", q.Get("srsName"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"features":[{
			"geometry":{"type":"Polygon","coordinates":[[[4.89,52.37],[4.90,52.37],[4.90,52.38],[4.89,52.38],[4.89,52.37]]]},
			"properties":{
				"status":"Pand in gebruik",
				"bouwjaar":"1921",
				"aantal_verblijfsobjecten":12
			}
		}]}`))
	})

	pand, err := client.Pand(context.Background(), "0363100000000002")
	require.NoError(t, err)
	require.NotNil(t, pand)
	assert.Equal(t, "Pand in gebruik", pand.Status)
	require.NotNil(t, pand.Bouwjaar)
	assert.Equal(t, 1921, *pand.Bouwjaar, "string bouwjaar parsed")
	assert.Equal(t, 12, *pand.NumUnits)
	require.NotNil(t, pand.Footprint)
	assert.Equal(t, "Polygon", pand.Footprint.Type)
}

func TestVerblijfsobjectNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"features":[]}`))
	})

	unit, err := client.Verblijfsobject(context.Background(), "0363010000000001")
	require.NoError(t, err)
	assert.Nil(t, unit)
}

func TestInvalidIDRejectedBeforeRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an invalid ID")
	})

	_, err := client.Verblijfsobject(context.Background(), "short")
	assert.ErrorIs(t, err, building.ErrInvalidID)

	_, err = client.Pand(context.Background(), "not16digits")
	assert.ErrorIs(t, err, building.ErrInvalidID)
}
