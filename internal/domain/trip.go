package domain

// TripPlan is the output of the stop planner: the stations to visit in order
// and the fuel cost incurred.
//
// A plan whose RemainingMiles is still positive is a partial plan: the planner
// ran out of candidate stations before the trip distance was covered.
type TripPlan struct {
	Stops            []Station
	TotalCost        float64
	GallonsPurchased float64
	RemainingMiles   float64
}

// Complete reports whether the selected stops cover the whole trip distance.
func (p TripPlan) Complete() bool { return p.RemainingMiles <= 0 }

// StopNames returns the display names of the stops in visit order.
func (p TripPlan) StopNames() []string {
	names := make([]string, 0, len(p.Stops))
	for _, s := range p.Stops {
		names = append(names, s.Name)
	}
	return names
}
