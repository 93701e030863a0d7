package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinates (latitude, longitude) in decimal degrees.
// A sequence of Coordinates ordered from origin to destination forms a
// decoded route geometry.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Return the coordinates as (lat, lon) in radians.
func (c Coordinates) Radians() (float64, float64) {
	return c.Lat * math.Pi / 180, c.Lon * math.Pi / 180
}

// Return coordinates as "lat,lon" for external API query parameters.
func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// Validate reports whether both components are finite and within WGS-84 bounds.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90,90]", c.Lat)
	}
	if math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180,180]", c.Lon)
	}
	return nil
}
