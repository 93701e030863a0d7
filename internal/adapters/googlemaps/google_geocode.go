package googlemaps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"fuel-stop-service/internal/domain"
	"fuel-stop-service/internal/platform/obs"
)

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves a free-form address to the coordinates of its first match.
func (g *GoogleClient) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "google.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, errors.New("geocode: address must be non-empty")
	}

	params := url.Values{"address": {norm}}
	resp, err := g.doWithRetry(ctx, "google_geocode", func() (*http.Request, error) {
		return g.newRequest(ctx, "/geocode/json", params)
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", norm, err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: decode response: %w", norm, err)
	}

	switch decoded.Status {
	case "OK":
	case "ZERO_RESULTS":
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", norm, domain.ErrAddressNotFound)
	default:
		return domain.Coordinates{}, fmt.Errorf("geocode %q: status %s: %s", norm, decoded.Status, decoded.ErrorMessage)
	}

	if len(decoded.Results) == 0 {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", norm, domain.ErrAddressNotFound)
	}

	loc := decoded.Results[0].Geometry.Location
	c := domain.Coordinates{Lat: loc.Lat, Lon: loc.Lng}
	if err := c.Validate(); err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", norm, err)
	}

	return c, nil
}
