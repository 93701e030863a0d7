package dto

type StationResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	City    string  `json:"city"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Price   float64 `json:"price"`
}

type ListStationsResponse struct {
	Count    int               `json:"count"`
	Stations []StationResponse `json:"stations"`
}
