package building_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buurtcheck/buurtcheck/internal/building"
)

type mockRegistry struct {
	unit    *building.Unit
	pand    *building.Pand
	unitErr error
	pandErr error
}

func (m *mockRegistry) Verblijfsobject(_ context.Context, _ string) (*building.Unit, error) {
	return m.unit, m.unitErr
}

func (m *mockRegistry) Pand(_ context.Context, _ string) (*building.Pand, error) {
	return m.pand, m.pandErr
}

func newService(r *mockRegistry) *building.Service {
	return building.NewService(building.ServiceConfig{
		Registry: r,
		Logger:   zerolog.New(io.Discard),
	})
}

const (
	vboID  = "0363010000000001"
	pandID = "0363100000000002"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func TestGetFactsAssemblesUnitAndPand(t *testing.T) {
	svc := newService(&mockRegistry{
		unit: &building.Unit{
			PandID:       pandID,
			Gebruiksdoel: "woonfunctie, kantoorfunctie",
			Oppervlakte:  floatp(85),
		},
		pand: &building.Pand{
			Status:   "Pand in gebruik",
			Bouwjaar: intp(1921),
			NumUnits: intp(12),
		},
	})

	facts, err := svc.GetFacts(context.Background(), vboID)
	require.NoError(t, err)
	require.NotNil(t, facts)

	assert.Equal(t, pandID, facts.PandID)
	assert.Equal(t, "Pand in gebruik", facts.Status)
	assert.Equal(t, "In use", facts.StatusEN)
	assert.Equal(t, []string{"woonfunctie", "kantoorfunctie"}, facts.IntendedUse)
	assert.Equal(t, []string{"Residential", "Office"}, facts.IntendedUseEN)
	require.NotNil(t, facts.ConstructionYear)
	assert.Equal(t, 1921, *facts.ConstructionYear)
	require.NotNil(t, facts.NumUnits)
	assert.Equal(t, 12, *facts.NumUnits)
	assert.Equal(t, 85.0, *facts.FloorAreaM2)
}

func TestGetFactsInvalidID(t *testing.T) {
	svc := newService(&mockRegistry{})

	_, err := svc.GetFacts(context.Background(), "123")
	require.Error(t, err)
	assert.ErrorIs(t, err, building.ErrInvalidID)

	_, err = svc.GetFacts(context.Background(), "03630100000000ab")
	assert.ErrorIs(t, err, building.ErrInvalidID)
}

func TestGetFactsUnknownUnit(t *testing.T) {
	svc := newService(&mockRegistry{unit: nil})

	facts, err := svc.GetFacts(context.Background(), vboID)
	require.NoError(t, err)
	assert.Nil(t, facts)
}

func TestGetFactsPandFailureDegrades(t *testing.T) {
	svc := newService(&mockRegistry{
		unit: &building.Unit{
			PandID:       pandID,
			Gebruiksdoel: "woonfunctie",
			PandStatus:   "Pand in gebruik",
			Bouwjaar:     intp(1990),
		},
		pandErr: errors.New("WFS timeout"),
	})

	facts, err := svc.GetFacts(context.Background(), vboID)
	require.NoError(t, err)
	require.NotNil(t, facts)
	assert.Equal(t, "In use", facts.StatusEN, "falls back to the unit's pandstatus")
	assert.Equal(t, 1990, *facts.ConstructionYear)
	assert.Nil(t, facts.NumUnits)
}

func TestGetFactsNoPandID(t *testing.T) {
	svc := newService(&mockRegistry{
		unit: &building.Unit{Gebruiksdoel: "winkelfunctie"},
	})

	facts, err := svc.GetFacts(context.Background(), vboID)
	require.NoError(t, err)
	assert.Equal(t, "unknown", facts.PandID)
	assert.Equal(t, []string{"Retail"}, facts.IntendedUseEN)
}

func TestTranslateStatusUnknownPassesThrough(t *testing.T) {
	assert.Equal(t, "In use", building.TranslateStatus("Pand in gebruik"))
	assert.Equal(t, "Iets nieuws", building.TranslateStatus("Iets nieuws"))
	assert.Equal(t, "", building.TranslateStatus(""))
}

func TestSplitIntendedUse(t *testing.T) {
	nl, en := building.SplitIntendedUse("woonfunctie, overige gebruiksfunctie , onbekend")
	assert.Equal(t, []string{"woonfunctie", "overige gebruiksfunctie", "onbekend"}, nl)
	assert.Equal(t, []string{"Residential", "Other", "onbekend"}, en)

	nl, en = building.SplitIntendedUse("")
	assert.Empty(t, nl)
	assert.Empty(t, en)
}
