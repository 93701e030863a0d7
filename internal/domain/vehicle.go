package domain

import (
	"fmt"
	"math"
)

// Default vehicle constants used for every trip.
const (
	DefaultRangeMiles = 500
	DefaultMPG        = 10
)

// VehicleProfile holds the fixed vehicle constants for trip planning.
type VehicleProfile struct {
	RangeMiles float64
	MPG        float64
}

func DefaultVehicle() VehicleProfile {
	return VehicleProfile{RangeMiles: DefaultRangeMiles, MPG: DefaultMPG}
}

func (v VehicleProfile) Validate() error {
	if !positiveFinite(v.RangeMiles) {
		return fmt.Errorf("%w: range_miles=%v", ErrInvalidVehicle, v.RangeMiles)
	}
	if !positiveFinite(v.MPG) {
		return fmt.Errorf("%w: mpg=%v", ErrInvalidVehicle, v.MPG)
	}
	return nil
}

func positiveFinite(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
