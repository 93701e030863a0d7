package domain

import (
	"fmt"
	"math"
	"strings"
)

// Station is an immutable fuel station catalog entry.
type Station struct {
	ID      string
	Name    string
	Address string
	City    string
	State   string
	RackID  string
	Lat     float64
	Lon     float64
	Price   float64
}

func (s Station) Coordinates() Coordinates {
	return Coordinates{Lat: s.Lat, Lon: s.Lon}
}

// StationCatalog is an ordered, read-only collection of stations with unique IDs.
// Catalog order is the iteration order used for deterministic tie-breaking.
type StationCatalog struct {
	stations []Station
	byID     map[string]int
}

// NewStationCatalog validates the given stations and builds a catalog.
// The input slice is copied; later changes to it do not affect the catalog.
func NewStationCatalog(stations []Station) (StationCatalog, error) {
	cp := make([]Station, len(stations))
	copy(cp, stations)

	byID := make(map[string]int, len(cp))
	for i, s := range cp {
		if strings.TrimSpace(s.ID) == "" {
			return StationCatalog{}, fmt.Errorf("%w: row %d: empty station id", ErrInvalidCatalog, i+1)
		}
		if prev, ok := byID[s.ID]; ok {
			return StationCatalog{}, fmt.Errorf(
				"%w: row %d: duplicate station id %q (first seen at row %d)",
				ErrInvalidCatalog, i+1, s.ID, prev+1,
			)
		}
		if err := s.Coordinates().Validate(); err != nil {
			return StationCatalog{}, fmt.Errorf("%w: station %q: %v", ErrInvalidCatalog, s.ID, err)
		}
		if s.Price <= 0 || math.IsNaN(s.Price) || math.IsInf(s.Price, 0) {
			return StationCatalog{}, fmt.Errorf("%w: station %q: invalid price %v", ErrInvalidCatalog, s.ID, s.Price)
		}
		byID[s.ID] = i
	}

	return StationCatalog{stations: cp, byID: byID}, nil
}

func (c StationCatalog) Len() int { return len(c.stations) }

// At returns the station at catalog position i.
func (c StationCatalog) At(i int) Station { return c.stations[i] }

// Stations returns a copy of the catalog entries in catalog order.
func (c StationCatalog) Stations() []Station {
	out := make([]Station, len(c.stations))
	copy(out, c.stations)
	return out
}

func (c StationCatalog) ByID(id string) (Station, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Station{}, false
	}
	return c.stations[i], true
}
