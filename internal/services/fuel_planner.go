package services

import (
	"fmt"
	"math"

	"fuel-stop-service/internal/domain"
)

// Default planner constants. The search radius is independent of
// the vehicle range, and every stop buys the same quantity of fuel.
const (
	DefaultSearchRadiusMiles = 10
	DefaultPurchaseGallons   = 10
)

type PlannerConfig struct {
	SearchRadiusMiles float64
	PurchaseGallons   float64
}

func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		SearchRadiusMiles: DefaultSearchRadiusMiles,
		PurchaseGallons:   DefaultPurchaseGallons,
	}
}

// GreedyStopPlanner selects refueling stops with a greedy cheapest-nearby heuristic.
type GreedyStopPlanner struct {
	filter *CorridorFilter
	cfg    PlannerConfig
}

func NewGreedyStopPlanner(filter *CorridorFilter, cfg PlannerConfig) (*GreedyStopPlanner, error) {
	if filter == nil {
		return nil, fmt.Errorf("new stop planner: filter must be non-nil")
	}
	if !(cfg.SearchRadiusMiles > 0) || math.IsInf(cfg.SearchRadiusMiles, 0) {
		return nil, fmt.Errorf("new stop planner: search radius %v: %w", cfg.SearchRadiusMiles, domain.ErrInvalidBuffer)
	}
	if !(cfg.PurchaseGallons > 0) || math.IsInf(cfg.PurchaseGallons, 0) {
		return nil, fmt.Errorf("new stop planner: purchase quantity must be positive, got %v", cfg.PurchaseGallons)
	}
	return &GreedyStopPlanner{filter: filter, cfg: cfg}, nil
}

// Plan selects refueling stops for a trip of totalDistanceMiles along route.
//
// Starting at the first route point, the planner repeatedly picks the cheapest
// station within the search radius of its current location that it has not
// already chosen, buys a fixed quantity of fuel there and moves to it. It stops
// once the purchased fuel covers the trip distance, or when no unchosen station
// is within the search radius. In the latter case the returned plan is partial
// (RemainingMiles > 0); this is not an error.
//
// The algorithm does not check that a station lies ahead on the route and does
// not attempt global cost optimization.
func (p *GreedyStopPlanner) Plan(
	catalog domain.StationCatalog,
	route []domain.Coordinates,
	totalDistanceMiles float64,
	vehicle domain.VehicleProfile,
) (*domain.TripPlan, error) {
	if len(route) == 0 {
		return nil, fmt.Errorf("plan stops: %w", domain.ErrEmptyRoute)
	}
	if totalDistanceMiles < 0 || math.IsNaN(totalDistanceMiles) || math.IsInf(totalDistanceMiles, 0) {
		return nil, fmt.Errorf("plan stops: distance=%v: %w", totalDistanceMiles, domain.ErrInvalidDistance)
	}
	if err := vehicle.Validate(); err != nil {
		return nil, fmt.Errorf("plan stops: %w", err)
	}

	current := route[0]
	remaining := totalDistanceMiles
	chosen := make(map[string]struct{})

	plan := &domain.TripPlan{Stops: []domain.Station{}}

	// Every iteration excludes the selected station, so the loop runs at most
	// catalog.Len() times.
	for remaining > 0 {
		candidates, err := p.filter.SelectNear(catalog, []domain.Coordinates{current}, p.cfg.SearchRadiusMiles, chosen)
		if err != nil {
			return nil, fmt.Errorf("plan stops: search near %s: %w", current, err)
		}
		if len(candidates) == 0 {
			break
		}

		// Candidates are in catalog order; the first minimum wins ties.
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.Price < best.Price {
				best = c
			}
		}

		plan.Stops = append(plan.Stops, best)
		chosen[best.ID] = struct{}{}

		plan.TotalCost += p.cfg.PurchaseGallons * best.Price
		plan.GallonsPurchased += p.cfg.PurchaseGallons
		remaining -= p.cfg.PurchaseGallons * vehicle.MPG
		current = best.Coordinates()
	}

	plan.RemainingMiles = math.Max(remaining, 0)
	return plan, nil
}
