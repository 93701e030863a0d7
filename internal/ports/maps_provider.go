package ports

import (
	"context"
	"fuel-stop-service/internal/domain"
)

// Contract for resolving free-form addresses to coordinates.
type Geocoder interface {
	// Return the coordinates of an address, or domain.ErrAddressNotFound.
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

// Contract for retrieving the driving route between two points.
type RouteProvider interface {
	// Return the decoded route geometry and its total distance in miles,
	// or domain.ErrRouteNotFound.
	GetRoute(ctx context.Context, origin, destination domain.Coordinates) (domain.Route, error)
}
