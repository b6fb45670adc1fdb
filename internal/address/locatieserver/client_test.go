package locatieserver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buurtcheck/buurtcheck/internal/address/locatieserver"
	"github.com/buurtcheck/buurtcheck/internal/provider/resilience"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *locatieserver.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return locatieserver.NewClient(locatieserver.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("test")),
	})
}

func TestSuggest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/suggest", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "damrak 1", q.Get("q"))
		assert.Equal(t, "type:adres", q.Get("fq"))
		assert.Equal(t, "7", q.Get("rows"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":{"docs":[
			{"id":"adr-1","weergavenaam":"Damrak 1, Amsterdam","type":"adres","score":9.1},
			{"id":"adr-2","weergavenaam":"Damrak 10, Amsterdam","score":8.0}
		]}}`))
	})

	got, err := client.Suggest(context.Background(), "damrak 1", 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Damrak 1, Amsterdam", got[0].DisplayName)
	assert.Equal(t, "adres", got[1].Type, "missing type defaults to adres")
}

func TestLookup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lookup", r.URL.Path)
		assert.Equal(t, "adr-1", r.URL.Query().Get("id"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":{"docs":[{
			"id":"adr-1",
			"nummeraanduiding_id":"0363200000000001",
			"adresseerbaarobject_id":"0363010000000001",
			"weergavenaam":"Damrak 1, 1012LG Amsterdam",
			"straatnaam":"Damrak",
			"huisnummer":1,
			"postcode":"1012LG",
			"woonplaatsnaam":"Amsterdam",
			"gemeentenaam":"Amsterdam",
			"provincienaam":"Noord-Holland",
			"centroide_ll":"POINT(4.89707 52.37403)",
			"centroide_rd":"POINT(121394.0 487383.0)",
			"buurtcode":"BU03630000",
			"wijkcode":"WK036300"
		}]}}`))
	})

	got, err := client.Lookup(context.Background(), "adr-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Damrak", got.Street)
	assert.Equal(t, "1", got.HouseNumber)
	require.True(t, got.HasRD())
	assert.Equal(t, 121394.0, *got.RDX)
	assert.Equal(t, 487383.0, *got.RDY)
	require.NotNil(t, got.Latitude)
	assert.Equal(t, 52.37403, *got.Latitude, "WKT order is lon lat")
	assert.Equal(t, 4.89707, *got.Longitude)
	assert.Equal(t, "BU03630000", got.BuurtCode)
}

func TestLookupUnknownID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":{"docs":[]}}`))
	})

	got, err := client.Lookup(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLookupUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.Lookup(context.Background(), "adr-1")
	require.Error(t, err)
}

func TestParseWKTPoint(t *testing.T) {
	x, y, ok := locatieserver.ParseWKTPoint("POINT(4.89707 52.37403)")
	require.True(t, ok)
	assert.Equal(t, 4.89707, x)
	assert.Equal(t, 52.37403, y)

	_, _, ok = locatieserver.ParseWKTPoint("")
	assert.False(t, ok)

	_, _, ok = locatieserver.ParseWKTPoint("LINESTRING(0 0, 1 1)")
	assert.False(t, ok)
}
