package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/twpayne/go-polyline"

	"fuel-stop-service/internal/domain"
	"fuel-stop-service/internal/platform/obs"
)

type directionsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Distance struct {
				Value float64 `json:"value"`
			} `json:"distance"`
		} `json:"legs"`
	} `json:"routes"`
}

// GetRoute fetches the first driving route between two points. The route
// geometry is the decoded overview polyline and the distance is the sum of
// all legs.
func (g *GoogleClient) GetRoute(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ domain.Route, err error) {
	defer obs.Time(ctx, "google.GetRoute")(&err)

	if err := origin.Validate(); err != nil {
		return domain.Route{}, fmt.Errorf("get route: origin: %w", err)
	}
	if err := destination.Validate(); err != nil {
		return domain.Route{}, fmt.Errorf("get route: destination: %w", err)
	}

	params := url.Values{
		"origin":      {origin.String()},
		"destination": {destination.String()},
		"mode":        {"driving"},
	}
	resp, err := g.doWithRetry(ctx, "google_directions", func() (*http.Request, error) {
		return g.newRequest(ctx, "/directions/json", params)
	})
	if err != nil {
		return domain.Route{}, fmt.Errorf("get route %s -> %s: %w", origin, destination, err)
	}
	defer resp.Body.Close()

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Route{}, fmt.Errorf("get route: decode response: %w", err)
	}

	switch decoded.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND":
		return domain.Route{}, fmt.Errorf("get route %s -> %s: %w", origin, destination, domain.ErrRouteNotFound)
	default:
		return domain.Route{}, fmt.Errorf("get route: status %s: %s", decoded.Status, decoded.ErrorMessage)
	}

	if len(decoded.Routes) == 0 {
		return domain.Route{}, fmt.Errorf("get route %s -> %s: %w", origin, destination, domain.ErrRouteNotFound)
	}
	r := decoded.Routes[0]

	coords, _, err := polyline.DecodeCoords([]byte(r.OverviewPolyline.Points))
	if err != nil {
		return domain.Route{}, fmt.Errorf("get route: decode polyline: %w", err)
	}
	if len(coords) == 0 {
		return domain.Route{}, fmt.Errorf("get route: empty polyline: %w", domain.ErrRouteNotFound)
	}

	points := make([]domain.Coordinates, 0, len(coords))
	for _, c := range coords {
		points = append(points, domain.Coordinates{Lat: c[0], Lon: c[1]})
	}

	var meters float64
	for _, leg := range r.Legs {
		meters += leg.Distance.Value
	}

	return domain.Route{Points: points, DistanceMiles: meters * metersToMiles}, nil
}
