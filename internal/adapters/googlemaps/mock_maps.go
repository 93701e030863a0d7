package googlemaps

import (
	"context"
	"fmt"
	"sync"

	"fuel-stop-service/internal/domain"
)

// MockMaps is an in-memory Geocoder and RouteProvider.
type MockMaps struct {
	mu        sync.Mutex
	addresses map[string]domain.Coordinates
	routes    map[string]domain.Route

	GeocodeCalls int
	RouteCalls   int
}

func NewMockMaps() *MockMaps {
	return &MockMaps{
		addresses: make(map[string]domain.Coordinates),
		routes:    make(map[string]domain.Route),
	}
}

func (m *MockMaps) AddAddress(address string, c domain.Coordinates) *MockMaps {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addresses[normalize(address)] = c
	return m
}

func (m *MockMaps) AddRoute(origin, destination domain.Coordinates, r domain.Route) *MockMaps {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[origin.String()+"|"+destination.String()] = r
	return m
}

func (m *MockMaps) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GeocodeCalls++

	c, ok := m.addresses[normalize(address)]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("mock geocode %q: %w", address, domain.ErrAddressNotFound)
	}
	return c, nil
}

func (m *MockMaps) GetRoute(ctx context.Context, origin, destination domain.Coordinates) (domain.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RouteCalls++

	r, ok := m.routes[origin.String()+"|"+destination.String()]
	if !ok {
		return domain.Route{}, fmt.Errorf("mock route %s -> %s: %w", origin, destination, domain.ErrRouteNotFound)
	}
	return r, nil
}

func (m *MockMaps) Calls() (geocode, route int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.GeocodeCalls, m.RouteCalls
}
