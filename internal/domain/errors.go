package domain

import "errors"

// Input data errors. They are returned before any planning work is done and
// signal a precondition failure on the caller's side.
var (
	ErrEmptyRoute        = errors.New("route has no points")
	ErrInvalidDistance   = errors.New("total distance must be finite and non-negative")
	ErrInvalidVehicle    = errors.New("invalid vehicle profile")
	ErrInvalidCatalog    = errors.New("invalid station catalog")
	ErrNoReferencePoints = errors.New("at least one reference point is required")
	ErrInvalidBuffer     = errors.New("buffer distance must be finite and positive")
)

// Collaborator errors surfaced by geocoding and routing adapters.
var (
	ErrAddressNotFound = errors.New("address not found")
	ErrRouteNotFound   = errors.New("route not found")
)
