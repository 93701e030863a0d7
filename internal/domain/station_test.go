package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStationCatalog(t *testing.T) {
	stations := []Station{
		{ID: "1", Name: "A", Lat: 34.0, Lon: -118.0, Price: 3.5},
		{ID: "2", Name: "B", Lat: 34.05, Lon: -118.05, Price: 3.2},
	}

	catalog, err := NewStationCatalog(stations)
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Len())
	assert.Equal(t, "A", catalog.At(0).Name)

	s, ok := catalog.ByID("2")
	require.True(t, ok)
	assert.Equal(t, 3.2, s.Price)

	_, ok = catalog.ByID("3")
	assert.False(t, ok)

	// mutating the input must not leak into the catalog
	stations[0].Name = "changed"
	assert.Equal(t, "A", catalog.At(0).Name)

	got := catalog.Stations()
	got[1].Price = 99
	assert.Equal(t, 3.2, catalog.At(1).Price)
}

func TestNewStationCatalogEmpty(t *testing.T) {
	catalog, err := NewStationCatalog(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, catalog.Len())
	assert.Empty(t, catalog.Stations())
}

func TestNewStationCatalogRejectsInvalidRows(t *testing.T) {
	tests := []struct {
		name     string
		stations []Station
	}{
		{"empty id", []Station{{ID: " ", Lat: 1, Lon: 1, Price: 1}}},
		{"duplicate id", []Station{{ID: "1", Lat: 1, Lon: 1, Price: 1}, {ID: "1", Lat: 2, Lon: 2, Price: 2}}},
		{"latitude out of range", []Station{{ID: "1", Lat: 91, Lon: 1, Price: 1}}},
		{"longitude nan", []Station{{ID: "1", Lat: 1, Lon: math.NaN(), Price: 1}}},
		{"zero price", []Station{{ID: "1", Lat: 1, Lon: 1, Price: 0}}},
		{"infinite price", []Station{{ID: "1", Lat: 1, Lon: 1, Price: math.Inf(1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStationCatalog(tt.stations)
			require.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestVehicleProfileValidate(t *testing.T) {
	require.NoError(t, DefaultVehicle().Validate())

	err := VehicleProfile{RangeMiles: 500, MPG: 0}.Validate()
	require.ErrorIs(t, err, ErrInvalidVehicle)

	err = VehicleProfile{RangeMiles: math.Inf(1), MPG: 10}.Validate()
	require.ErrorIs(t, err, ErrInvalidVehicle)
}

func TestTripPlan(t *testing.T) {
	plan := TripPlan{
		Stops:          []Station{{ID: "2", Name: "B"}, {ID: "1", Name: "A"}},
		RemainingMiles: 200,
	}
	assert.False(t, plan.Complete())
	assert.Equal(t, []string{"B", "A"}, plan.StopNames())

	plan.RemainingMiles = 0
	assert.True(t, plan.Complete())
	assert.Empty(t, TripPlan{}.StopNames())
}

func TestCoordinatesRadians(t *testing.T) {
	lat, lon := Coordinates{Lat: 180, Lon: -90}.Radians()
	assert.InDelta(t, math.Pi, lat, 1e-12)
	assert.InDelta(t, -math.Pi/2, lon, 1e-12)
	assert.Equal(t, "34.000000,-118.000000", Coordinates{Lat: 34, Lon: -118}.String())
}
