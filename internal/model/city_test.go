package model

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    string
		want  float64
		valid bool
	}{
		{"8336817", 8336817, true},
		{" 12.5 ", 12.5, true},
		{"12.5km", 12.5, true},
		{"-73.9387", -73.9387, true},
		{".5", 0.5, true},
		{"1e3", 1000, true},
		{"0", 0, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"abc12", 0, false},
		{"1e999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got := ParseFloat(tt.in)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.InDelta(t, tt.want, got.Num, 1e-9)
			}
		})
	}
}

func TestValue_Interface(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Unclassified.Interface())
	assert.Equal(t, 0.0, Num(0).Interface())
	assert.Equal(t, 42.0, Num(42).Interface())
}

func TestParseAttribute(t *testing.T) {
	t.Parallel()

	a, err := ParseAttribute(" Density ")
	require.NoError(t, err)
	assert.Equal(t, AttrDensity, a)
	assert.Equal(t, "Density", a.Title())

	_, err = ParseAttribute("elevation")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownAttribute))
}

func TestParseCities(t *testing.T) {
	t.Parallel()

	header := []string{"\ufeffcity", "state_id", "Population", "density", "lat", "lng"}
	rows := [][]string{
		{"New York", "NY", "18908608", "11080.3", "40.6943", "-73.9249"},
		{"Ghost Town", "NV", "", "n/a", "39.1"},
	}

	cities, err := ParseCities(header, rows)
	require.NoError(t, err)
	require.Len(t, cities, 2)

	ny := cities[0]
	assert.Equal(t, "New York", ny.Name)
	assert.Equal(t, "NY", ny.Raw["state_id"])
	assert.Equal(t, Num(18908608), ny.Value(AttrPopulation))
	assert.InDelta(t, -73.9249, ny.Value(AttrLng).Num, 1e-9)

	ghost := cities[1]
	assert.False(t, ghost.Value(AttrPopulation).Valid)
	assert.False(t, ghost.Value(AttrDensity).Valid)
	assert.True(t, ghost.Value(AttrLat).Valid)
	assert.False(t, ghost.Value(AttrLng).Valid)
}

func TestParseCities_MissingCityColumn(t *testing.T) {
	t.Parallel()

	_, err := ParseCities([]string{"name", "population"}, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingColumn))
}

func TestCity_ValueNilMap(t *testing.T) {
	t.Parallel()

	var c City
	assert.Equal(t, Unclassified, c.Value(AttrPopulation))
}
