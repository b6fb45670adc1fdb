package risk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/buurtcheck/buurtcheck/internal/risk"
)

func TestIsNoData(t *testing.T) {
	assert.True(t, risk.IsNoData(-9990))
	assert.True(t, risk.IsNoData(-99999))
	assert.True(t, risk.IsNoData(1e30))
	assert.True(t, risk.IsNoData(3.4e38))

	assert.False(t, risk.IsNoData(-9989.9))
	assert.False(t, risk.IsNoData(0))
	assert.False(t, risk.IsNoData(57.3))
	assert.False(t, risk.IsNoData(9.9e29))
}

func TestExtractNumeric(t *testing.T) {
	t.Run("skips identifier-like keys", func(t *testing.T) {
		props := risk.Properties{
			"OBJECTID":   float64(12345),
			"fid":        float64(7),
			"gridcode_x": float64(3),
			"waarde":     float64(42.5),
		}
		value, key, ok := risk.ExtractNumeric(props)
		assert.True(t, ok)
		assert.Equal(t, "waarde", key)
		assert.Equal(t, 42.5, value)
	})

	t.Run("skips sentinels", func(t *testing.T) {
		props := risk.Properties{
			"a_raster": float64(-9999),
			"b_value":  float64(0.7),
		}
		value, key, ok := risk.ExtractNumeric(props)
		assert.True(t, ok)
		assert.Equal(t, "b_value", key)
		assert.Equal(t, 0.7, value)
	})

	t.Run("skips non-numeric values", func(t *testing.T) {
		props := risk.Properties{
			"label": "hoog",
			"depth": float64(0.25),
		}
		value, key, ok := risk.ExtractNumeric(props)
		assert.True(t, ok)
		assert.Equal(t, "depth", key)
		assert.Equal(t, 0.25, value)
	})

	t.Run("deterministic across equivalent maps", func(t *testing.T) {
		props := risk.Properties{
			"zeta":  float64(9.0),
			"alpha": float64(1.0),
		}
		for i := 0; i < 20; i++ {
			_, key, ok := risk.ExtractNumeric(props)
			assert.True(t, ok)
			assert.Equal(t, "alpha", key)
		}
	})

	t.Run("nothing usable", func(t *testing.T) {
		props := risk.Properties{
			"id":     float64(5),
			"label":  "tekst",
			"raster": float64(1e30),
		}
		_, _, ok := risk.ExtractNumeric(props)
		assert.False(t, ok)
	})

	t.Run("empty properties", func(t *testing.T) {
		_, _, ok := risk.ExtractNumeric(risk.Properties{})
		assert.False(t, ok)
	})
}
