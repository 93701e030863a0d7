package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"fuel-stop-service/internal/domain"
	"fuel-stop-service/internal/platform/obs"
	"fuel-stop-service/internal/ports"
)

// CachedGeocoder layers an in-process LRU and an optional persistent SQL
// cache in front of an upstream Geocoder. Concurrent lookups of the same
// address share a single upstream call.
//
// Persistent cache failures are logged and bypassed; only upstream errors
// reach the caller.
type CachedGeocoder struct {
	upstream ports.Geocoder
	memo     *lru.Cache[string, domain.Coordinates]
	store    *SQLGeocodeCache
	group    singleflight.Group

	// Bounds a shared lookup, which is detached from any single caller.
	lookupTimeout time.Duration
}

const defaultLookupTimeout = 30 * time.Second

func NewCachedGeocoder(upstream ports.Geocoder, store *SQLGeocodeCache, size int) (*CachedGeocoder, error) {
	if upstream == nil {
		return nil, errors.New("cached geocoder: upstream is nil")
	}
	if size <= 0 {
		size = 1024
	}

	memo, err := lru.New[string, domain.Coordinates](size)
	if err != nil {
		return nil, fmt.Errorf("cached geocoder: create lru: %w", err)
	}

	return &CachedGeocoder{
		upstream:      upstream,
		memo:          memo,
		store:         store,
		lookupTimeout: defaultLookupTimeout,
	}, nil
}

// AddressKey is the cache key for an address: case-folded with whitespace
// collapsed.
func AddressKey(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	key := AddressKey(address)
	if key == "" {
		return domain.Coordinates{}, errors.New("geocode: address must be non-empty")
	}

	if coords, ok := c.memo.Get(key); ok {
		obs.IncCacheHit("geocode_lru")
		return coords, nil
	}
	obs.IncCacheMiss("geocode_lru")

	// Each caller waits on its own ctx; the flight outlives a cancelled caller
	// so the others sharing it still get a result.
	ch := c.group.DoChan(key, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.lookupTimeout)
		defer cancel()
		return c.resolve(lookupCtx, key, address)
	})

	select {
	case <-ctx.Done():
		return domain.Coordinates{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Coordinates{}, res.Err
		}
		return res.Val.(domain.Coordinates), nil
	}
}

func (c *CachedGeocoder) resolve(ctx context.Context, key, address string) (domain.Coordinates, error) {
	log := zerolog.Ctx(ctx)

	if c.store != nil {
		hits, err := c.store.GetMany(ctx, []string{key})
		if err != nil {
			log.Warn().Err(err).Str("address", key).Msg("geocode cache read failed")
		} else if coords, ok := hits[key]; ok {
			obs.IncCacheHit("geocode_sql")
			c.memo.Add(key, coords)
			return coords, nil
		} else {
			obs.IncCacheMiss("geocode_sql")
		}
	}

	coords, err := c.upstream.Geocode(ctx, address)
	if err != nil {
		return domain.Coordinates{}, err
	}

	c.memo.Add(key, coords)
	if c.store != nil {
		if err := c.store.PutMany(ctx, map[string]domain.Coordinates{key: coords}); err != nil {
			log.Warn().Err(err).Str("address", key).Msg("geocode cache write failed")
		}
	}

	return coords, nil
}
