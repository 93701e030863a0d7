package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"fuel-stop-service/internal/domain"
	"fuel-stop-service/internal/platform/obs"
	"fuel-stop-service/internal/ports"
)

var (
	// ErrInvalidRequest marks a malformed trip request.
	ErrInvalidRequest = errors.New("invalid trip request")
	// ErrUpstream marks a failure of the geocoding or routing provider other
	// than a not-found answer.
	ErrUpstream = errors.New("upstream provider failure")
)

type TripRequest struct {
	Start  string
	Finish string
}

type TripResult struct {
	Start  domain.Coordinates
	Finish domain.Coordinates
	Route  domain.Route
	Plan   *domain.TripPlan
}

// TripService turns a pair of addresses into a fuel stop plan.
type TripService struct {
	geocoder ports.Geocoder
	routes   ports.RouteProvider
	catalog  *CatalogStore
	planner  *GreedyStopPlanner
	vehicle  domain.VehicleProfile
}

func NewTripService(
	geocoder ports.Geocoder,
	routes ports.RouteProvider,
	catalog *CatalogStore,
	planner *GreedyStopPlanner,
	vehicle domain.VehicleProfile,
) (*TripService, error) {
	if geocoder == nil || routes == nil || catalog == nil || planner == nil {
		return nil, errors.New("new trip service: nil dependency")
	}
	if err := vehicle.Validate(); err != nil {
		return nil, fmt.Errorf("new trip service: %w", err)
	}
	return &TripService{
		geocoder: geocoder,
		routes:   routes,
		catalog:  catalog,
		planner:  planner,
		vehicle:  vehicle,
	}, nil
}

func (s *TripService) PlanTrip(ctx context.Context, req TripRequest) (_ *TripResult, err error) {
	defer obs.Time(ctx, "trip.PlanTrip")(&err)

	start := strings.TrimSpace(req.Start)
	finish := strings.TrimSpace(req.Finish)
	if start == "" || finish == "" {
		return nil, fmt.Errorf("plan trip: start and finish are required: %w", ErrInvalidRequest)
	}

	var res TripResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.geocoder.Geocode(gctx, start)
		if err != nil {
			return fmt.Errorf("plan trip: geocode start %q: %w", start, classify(err))
		}
		res.Start = c
		return nil
	})
	g.Go(func() error {
		c, err := s.geocoder.Geocode(gctx, finish)
		if err != nil {
			return fmt.Errorf("plan trip: geocode finish %q: %w", finish, classify(err))
		}
		res.Finish = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	route, err := s.routes.GetRoute(ctx, res.Start, res.Finish)
	if err != nil {
		return nil, fmt.Errorf("plan trip: route: %w", classify(err))
	}
	res.Route = route

	catalog, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("plan trip: before planning: %w", err)
	}

	plan, err := s.planner.Plan(catalog, route.Points, route.DistanceMiles, s.vehicle)
	if err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}
	res.Plan = plan

	obs.ObservePlan(len(plan.Stops), plan.Complete())
	zerolog.Ctx(ctx).Info().
		Float64("distance_miles", route.DistanceMiles).
		Int("route_points", len(route.Points)).
		Int("stops", len(plan.Stops)).
		Float64("total_cost", plan.TotalCost).
		Bool("complete", plan.Complete()).
		Msg("trip planned")

	return &res, nil
}

// classify tags provider failures that are neither not-found answers nor
// cancellations as ErrUpstream.
func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrAddressNotFound),
		errors.Is(err, domain.ErrRouteNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
}
