package googlemaps

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-polyline"

	"fuel-stop-service/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *GoogleClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewGoogleClient("test-key", Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)
	c.backoff = time.Millisecond
	return c
}

func TestNewGoogleClientRequiresKey(t *testing.T) {
	_, err := NewGoogleClient("  ", Options{})
	assert.Error(t, err)
}

func TestGeocodeOK(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "Dallas, TX", r.URL.Query().Get("address"))
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":32.7767,"lng":-96.797}}}]}`))
	})

	got, err := c.Geocode(context.Background(), "  Dallas,   TX ")
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 32.7767, Lon: -96.797}, got)
}

func TestGeocodeZeroResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	})

	_, err := c.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)
}

func TestGeocodeDeniedIsNotNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key"}`))
	})

	_, err := c.Geocode(context.Background(), "Dallas")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrAddressNotFound))
	assert.Contains(t, err.Error(), "bad key")
}

func TestGeocodeEmptyAddress(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := c.Geocode(context.Background(), "   ")
	assert.Error(t, err)
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":1,"lng":2}}}]}`))
	})

	got, err := c.Geocode(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 1, Lon: 2}, got)
	assert.EqualValues(t, 3, calls.Load())
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := c.Geocode(context.Background(), "x")
	var he *httpStatusError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.EqualValues(t, 1, calls.Load())
}

func TestRetryGivesUp(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.EqualValues(t, 4, calls.Load())
}

func TestGetRoute(t *testing.T) {
	pts := [][]float64{{38.5, -120.2}, {40.7, -120.95}, {43.252, -126.453}}
	encoded := string(polyline.EncodeCoords(pts))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/directions/json", r.URL.Path)
		assert.Equal(t, "38.500000,-120.200000", r.URL.Query().Get("origin"))
		assert.Equal(t, "driving", r.URL.Query().Get("mode"))
		_, _ = w.Write([]byte(`{"status":"OK","routes":[{"overview_polyline":{"points":` +
			quote(encoded) + `},"legs":[{"distance":{"value":100000}},{"distance":{"value":60934}}]}]}`))
	})

	route, err := c.GetRoute(context.Background(),
		domain.Coordinates{Lat: 38.5, Lon: -120.2},
		domain.Coordinates{Lat: 43.252, Lon: -126.453})
	require.NoError(t, err)

	require.Len(t, route.Points, 3)
	assert.InDelta(t, 38.5, route.Points[0].Lat, 1e-5)
	assert.InDelta(t, -126.453, route.Points[2].Lon, 1e-5)
	assert.InDelta(t, 160934*metersToMiles, route.DistanceMiles, 1e-9)
	assert.InDelta(t, 100.0, route.DistanceMiles, 0.01)
}

func TestGetRouteNoRoutes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","routes":[]}`))
	})

	_, err := c.GetRoute(context.Background(), domain.Coordinates{Lat: 1, Lon: 1}, domain.Coordinates{Lat: 2, Lon: 2})
	assert.ErrorIs(t, err, domain.ErrRouteNotFound)
}

func TestGetRouteInvalidOrigin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := c.GetRoute(context.Background(), domain.Coordinates{Lat: 91}, domain.Coordinates{})
	assert.Error(t, err)
}

func TestMockMaps(t *testing.T) {
	a := domain.Coordinates{Lat: 1, Lon: 1}
	b := domain.Coordinates{Lat: 2, Lon: 2}
	m := NewMockMaps().AddAddress("A town", a).AddRoute(a, b, domain.Route{Points: []domain.Coordinates{a, b}, DistanceMiles: 97})

	got, err := m.Geocode(context.Background(), "A  town")
	require.NoError(t, err)
	assert.Equal(t, a, got)

	_, err = m.Geocode(context.Background(), "B town")
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)

	r, err := m.GetRoute(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, 97.0, r.DistanceMiles)

	_, err = m.GetRoute(context.Background(), b, a)
	assert.ErrorIs(t, err, domain.ErrRouteNotFound)

	geo, route := m.Calls()
	assert.Equal(t, 2, geo)
	assert.Equal(t, 2, route)
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
