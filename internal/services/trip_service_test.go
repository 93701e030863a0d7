package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuel-stop-service/internal/adapters/googlemaps"
	"fuel-stop-service/internal/domain"
)

var (
	la      = domain.Coordinates{Lat: 34.00, Lon: -118.00}
	fresno  = domain.Coordinates{Lat: 35.00, Lon: -119.00}
	laRoute = domain.Route{Points: []domain.Coordinates{la, fresno}, DistanceMiles: 400}
)

func newTripService(t *testing.T, maps *googlemaps.MockMaps, repo *fakeRepo) *TripService {
	t.Helper()
	store, err := NewCatalogStore(repo)
	require.NoError(t, err)

	svc, err := NewTripService(maps, maps, store, newTestPlanner(t), domain.DefaultVehicle())
	require.NoError(t, err)
	return svc
}

func tripMaps() *googlemaps.MockMaps {
	return googlemaps.NewMockMaps().
		AddAddress("Los Angeles, CA", la).
		AddAddress("Fresno, CA", fresno).
		AddRoute(la, fresno, laRoute)
}

func TestPlanTrip(t *testing.T) {
	repo := &fakeRepo{}
	repo.set(
		domain.Station{ID: "1", Name: "One", Lat: 34.00, Lon: -118.00, Price: 3.50},
		domain.Station{ID: "2", Name: "Two", Lat: 34.05, Lon: -118.05, Price: 3.20},
	)
	svc := newTripService(t, tripMaps(), repo)

	res, err := svc.PlanTrip(context.Background(), TripRequest{Start: " Los Angeles, CA ", Finish: "Fresno, CA"})
	require.NoError(t, err)

	assert.Equal(t, la, res.Start)
	assert.Equal(t, fresno, res.Finish)
	assert.Equal(t, laRoute, res.Route)
	assert.Equal(t, []string{"Two", "One"}, res.Plan.StopNames())
	assert.InDelta(t, 67, res.Plan.TotalCost, 1e-9)
	assert.InDelta(t, 200, res.Plan.RemainingMiles, 1e-9)
}

func TestPlanTripErrors(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTripService(t, tripMaps(), repo)
	ctx := context.Background()

	_, err := svc.PlanTrip(ctx, TripRequest{Start: "", Finish: "Fresno, CA"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.PlanTrip(ctx, TripRequest{Start: "Atlantis", Finish: "Fresno, CA"})
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)
	assert.False(t, errors.Is(err, ErrUpstream))

	_, err = svc.PlanTrip(ctx, TripRequest{Start: "Fresno, CA", Finish: "Los Angeles, CA"})
	assert.ErrorIs(t, err, domain.ErrRouteNotFound)

	repo.err = errors.New("db down")
	_, err = svc.PlanTrip(ctx, TripRequest{Start: "Los Angeles, CA", Finish: "Fresno, CA"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUpstream))
}

type failingGeocoder struct{ err error }

func (f failingGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	return domain.Coordinates{}, f.err
}

func TestPlanTripUpstreamFailure(t *testing.T) {
	store, err := NewCatalogStore(&fakeRepo{})
	require.NoError(t, err)

	svc, err := NewTripService(failingGeocoder{errors.New("503")}, tripMaps(), store, newTestPlanner(t), domain.DefaultVehicle())
	require.NoError(t, err)

	_, err = svc.PlanTrip(context.Background(), TripRequest{Start: "a", Finish: "b"})
	assert.ErrorIs(t, err, ErrUpstream)
}

// cancelOnRoute cancels the request once the route is resolved.
type cancelOnRoute struct {
	*googlemaps.MockMaps
	cancel context.CancelFunc
}

func (c cancelOnRoute) GetRoute(ctx context.Context, origin, destination domain.Coordinates) (domain.Route, error) {
	r, err := c.MockMaps.GetRoute(ctx, origin, destination)
	c.cancel()
	return r, err
}

func TestPlanTripStopsWhenCancelledBeforePlanning(t *testing.T) {
	repo := &fakeRepo{}
	repo.set(domain.Station{ID: "1", Name: "One", Lat: 34.00, Lon: -118.00, Price: 3.50})
	store, err := NewCatalogStore(repo)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	maps := tripMaps()

	svc, err := NewTripService(maps, cancelOnRoute{maps, cancel}, store, newTestPlanner(t), domain.DefaultVehicle())
	require.NoError(t, err)

	_, err = svc.PlanTrip(ctx, TripRequest{Start: "Los Angeles, CA", Finish: "Fresno, CA"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrUpstream))
}

func TestNewTripServiceValidation(t *testing.T) {
	store, err := NewCatalogStore(&fakeRepo{})
	require.NoError(t, err)
	m := tripMaps()

	_, err = NewTripService(nil, m, store, newTestPlanner(t), domain.DefaultVehicle())
	assert.Error(t, err)

	_, err = NewTripService(m, m, store, newTestPlanner(t), domain.VehicleProfile{RangeMiles: 0, MPG: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidVehicle)
}
