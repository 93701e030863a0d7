package services

import (
	"fmt"
	"math"
	"slices"

	h3 "github.com/uber/h3-go/v4"

	"fuel-stop-service/internal/domain"
)

// EarthRadiusMiles converts a buffer distance in miles to its angular equivalent.
const EarthRadiusMiles = 3963.0

const (
	DefaultIndexResolution = 5
	// Above this ring count a grid disk costs more than scanning the catalog.
	maxDiskRings = 48
)

// CorridorFilter selects stations near one or more reference points.
//
// Distances are planar Euclidean distances in (lat, lon) radian space scaled
// by a fixed Earth radius. This is only accurate for short buffers and
// degrades at high latitudes, where longitude differences are overstated.
//
// Stations are bucketed by H3 cell to avoid comparing every station with every
// reference point. The cell lookup is a pre-filter only: a planar radian
// distance d implies a ground distance of at most d*R, so every match lies in
// the ground-radius grid disk and the result equals an exhaustive scan.
type CorridorFilter struct {
	resolution int
}

func NewCorridorFilter(resolution int) *CorridorFilter {
	if resolution < 0 || resolution > 15 {
		resolution = DefaultIndexResolution
	}
	return &CorridorFilter{resolution: resolution}
}

// SelectNear returns the catalog stations within bufferMiles of any of the
// given points, in catalog order. Stations whose ID is in exclude are dropped
// before indexing. A station exactly at a reference point is not returned.
//
// The index is rebuilt on every call; the filter holds no per-call state and is
// safe for concurrent use.
func (f *CorridorFilter) SelectNear(
	catalog domain.StationCatalog,
	points []domain.Coordinates,
	bufferMiles float64,
	exclude map[string]struct{},
) ([]domain.Station, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("select near: %w", domain.ErrNoReferencePoints)
	}
	if bufferMiles <= 0 || math.IsNaN(bufferMiles) || math.IsInf(bufferMiles, 0) {
		return nil, fmt.Errorf("select near: buffer=%v: %w", bufferMiles, domain.ErrInvalidBuffer)
	}

	if catalog.Len() == 0 {
		return []domain.Station{}, nil
	}

	idx := f.buildIndex(catalog, exclude)
	threshold := bufferMiles / EarthRadiusMiles

	hits := make(map[int]struct{})
	for _, p := range points {
		pLat, pLon := p.Radians()
		for _, i := range idx.candidates(p, bufferMiles) {
			d := math.Hypot(idx.lat[i]-pLat, idx.lon[i]-pLon)
			// A zero distance is the station itself when searching from a previous stop.
			if d == 0 || d > threshold {
				continue
			}
			hits[i] = struct{}{}
		}
	}

	positions := make([]int, 0, len(hits))
	for i := range hits {
		positions = append(positions, i)
	}
	slices.Sort(positions)

	seen := make(map[string]struct{}, len(positions))
	out := make([]domain.Station, 0, len(positions))
	for _, i := range positions {
		s := catalog.At(i)
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}

	return out, nil
}

// stationIndex buckets catalog positions by H3 cell.
type stationIndex struct {
	res      int
	buckets  map[h3.Cell][]int
	overflow []int
	all      []int
	lat      map[int]float64
	lon      map[int]float64
}

func (f *CorridorFilter) buildIndex(catalog domain.StationCatalog, exclude map[string]struct{}) *stationIndex {
	idx := &stationIndex{
		res:     f.resolution,
		buckets: make(map[h3.Cell][]int),
		all:     make([]int, 0, catalog.Len()),
		lat:     make(map[int]float64, catalog.Len()),
		lon:     make(map[int]float64, catalog.Len()),
	}

	for i := 0; i < catalog.Len(); i++ {
		s := catalog.At(i)
		if _, skip := exclude[s.ID]; skip {
			continue
		}

		idx.lat[i], idx.lon[i] = s.Coordinates().Radians()
		idx.all = append(idx.all, i)

		cell, err := h3.LatLngToCell(h3.LatLng{Lat: s.Lat, Lng: s.Lon}, idx.res)
		if err != nil {
			idx.overflow = append(idx.overflow, i)
			continue
		}
		idx.buckets[cell] = append(idx.buckets[cell], i)
	}

	return idx
}

// candidates returns a superset of the indexed positions within bufferMiles
// (ground distance) of p.
func (idx *stationIndex) candidates(p domain.Coordinates, bufferMiles float64) []int {
	origin, err := h3.LatLngToCell(h3.LatLng{Lat: p.Lat, Lng: p.Lon}, idx.res)
	if err != nil {
		return idx.all
	}

	k, ok := idx.rings(bufferMiles)
	if !ok {
		return idx.all
	}

	disk, err := h3.GridDisk(origin, k)
	if err != nil {
		return idx.all
	}

	out := make([]int, 0, len(idx.overflow)+8)
	out = append(out, idx.overflow...)
	for _, c := range disk {
		out = append(out, idx.buckets[c]...)
	}
	return out
}

// rings returns the grid disk size covering bufferMiles, with a 2x margin for
// cell size distortion across the globe.
func (idx *stationIndex) rings(bufferMiles float64) (int, bool) {
	edgeKm, err := h3.HexagonEdgeLengthAvgKm(idx.res)
	if err != nil || edgeKm <= 0 {
		return 0, false
	}

	bufferKm := bufferMiles * 1.609344
	k := int(math.Ceil(2*bufferKm/edgeKm)) + 1
	if k > maxDiskRings {
		return 0, false
	}
	return k, true
}
