package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"fuel-stop-service/internal/domain"
	"fuel-stop-service/internal/platform/obs"
	"fuel-stop-service/internal/ports"
)

// CatalogStore holds the current immutable StationCatalog snapshot. The
// snapshot is loaded from the repository on first use and again after
// Invalidate.
type CatalogStore struct {
	repo ports.StationRepository

	loadMu     sync.Mutex
	current    atomic.Pointer[domain.StationCatalog]
	generation atomic.Uint64
}

func NewCatalogStore(repo ports.StationRepository) (*CatalogStore, error) {
	if repo == nil {
		return nil, errors.New("catalog store: repository is nil")
	}
	return &CatalogStore{repo: repo}, nil
}

// Snapshot returns the current catalog, loading it if needed. Callers may
// hold on to the returned value; it is never mutated.
func (s *CatalogStore) Snapshot(ctx context.Context) (domain.StationCatalog, error) {
	if c := s.current.Load(); c != nil {
		return *c, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if c := s.current.Load(); c != nil {
		return *c, nil
	}

	gen := s.generation.Load()
	catalog, err := s.load(ctx)
	obs.IncCatalogReload(err)
	if err != nil {
		return domain.StationCatalog{}, err
	}

	// an Invalidate that raced with the load wins; the next caller reloads
	if s.generation.Load() == gen {
		s.current.Store(&catalog)
	}
	return catalog, nil
}

// Invalidate drops the current snapshot. Requests already holding a snapshot
// keep using it.
func (s *CatalogStore) Invalidate() {
	s.generation.Add(1)
	s.current.Store(nil)
}

func (s *CatalogStore) load(ctx context.Context) (_ domain.StationCatalog, err error) {
	defer obs.Time(ctx, "catalog.load")(&err)

	stations, err := s.repo.ListStations(ctx)
	if err != nil {
		return domain.StationCatalog{}, fmt.Errorf("load catalog: list stations: %w", err)
	}

	catalog, err := domain.NewStationCatalog(stations)
	if err != nil {
		return domain.StationCatalog{}, fmt.Errorf("load catalog: %w", err)
	}

	zerolog.Ctx(ctx).Info().Int("stations", catalog.Len()).Msg("station catalog loaded")
	return catalog, nil
}
