package dto

type CoordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// FuelStopsResponse carries the legacy optimal_stops/total_cost pair plus the
// stop details and plan status.
type FuelStopsResponse struct {
	OptimalStops       []string            `json:"optimal_stops"`
	Stops              []StationResponse   `json:"stops"`
	TotalCost          float64             `json:"total_cost"`
	TotalGallons       float64             `json:"total_gallons"`
	RouteDistanceMiles float64             `json:"route_distance_miles"`
	RemainingMiles     float64             `json:"remaining_miles"`
	Complete           bool                `json:"complete"`
	Start              CoordinatesResponse `json:"start"`
	Finish             CoordinatesResponse `json:"finish"`
}
