package ports

import (
	"context"
	"fuel-stop-service/internal/domain"
)

// Port: a boundary for retrieving the fuel station catalog from a data source.
type StationRepository interface {
	// Retrieve all stations that have coordinates and a price, ordered by ID.
	ListStations(ctx context.Context) ([]domain.Station, error)
}

// Optional extension used by catalog enrichment to fill in missing coordinates.
type StationLocator interface {
	// Return stations that have not been geocoded yet.
	ListUnlocated(ctx context.Context) ([]domain.Station, error)
	// Store coordinates for a station.
	UpdateLocation(ctx context.Context, stationID string, c domain.Coordinates) error
}
