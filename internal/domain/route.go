package domain

// Represents a driving route between two points as resolved by a routing provider.
// Points is the decoded route geometry ordered from origin to destination.
type Route struct {
	Points        []Coordinates
	DistanceMiles float64
}
