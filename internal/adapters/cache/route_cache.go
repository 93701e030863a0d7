package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"fuel-stop-service/internal/domain"
	"fuel-stop-service/internal/platform/obs"
	"fuel-stop-service/internal/ports"
)

const routeKeyPrefix = "route:v1:"

// RedisRouteCache stores decoded routes in Redis as JSON.
type RedisRouteCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRouteCache(ctx context.Context, addr string, ttl time.Duration) (*RedisRouteCache, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisRouteCache{rdb: rdb, ttl: ttl}, nil
}

// RouteKey hashes the endpoints rounded to 1e-5 degrees (about a metre), so
// geocoder jitter below that resolution still hits.
func RouteKey(origin, destination domain.Coordinates) string {
	s := fmt.Sprintf("%.5f,%.5f|%.5f,%.5f",
		round5(origin.Lat), round5(origin.Lon), round5(destination.Lat), round5(destination.Lon))
	return fmt.Sprintf("%s%016x", routeKeyPrefix, xxhash.Sum64String(s))
}

func round5(v float64) float64 {
	r := math.Round(v*1e5) / 1e5
	if r == 0 {
		return 0 // normalize -0
	}
	return r
}

type routeEntry struct {
	Points        [][2]float64 `json:"points"`
	DistanceMiles float64      `json:"distance_miles"`
}

// Get returns the cached route and whether it was present.
func (c *RedisRouteCache) Get(ctx context.Context, origin, destination domain.Coordinates) (domain.Route, bool, error) {
	key := RouteKey(origin, destination)

	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Route{}, false, nil
	}
	if err != nil {
		return domain.Route{}, false, fmt.Errorf("redis GET %q: %w", key, err)
	}

	var e routeEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return domain.Route{}, false, fmt.Errorf("decode cached route %q: %w", key, err)
	}

	pts := make([]domain.Coordinates, len(e.Points))
	for i, p := range e.Points {
		pts[i] = domain.Coordinates{Lat: p[0], Lon: p[1]}
	}
	return domain.Route{Points: pts, DistanceMiles: e.DistanceMiles}, true, nil
}

func (c *RedisRouteCache) Put(ctx context.Context, origin, destination domain.Coordinates, r domain.Route) error {
	key := RouteKey(origin, destination)

	e := routeEntry{Points: make([][2]float64, len(r.Points)), DistanceMiles: r.DistanceMiles}
	for i, p := range r.Points {
		e.Points[i] = [2]float64{p.Lat, p.Lon}
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode route %q: %w", key, err)
	}

	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET %q: %w", key, err)
	}
	return nil
}

func (c *RedisRouteCache) Close() error {
	if err := c.rdb.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

// CachedRouteProvider serves routes from a RedisRouteCache and falls back to
// the upstream provider on a miss. Cache errors never fail a request.
type CachedRouteProvider struct {
	upstream ports.RouteProvider
	cache    *RedisRouteCache
}

func NewCachedRouteProvider(upstream ports.RouteProvider, cache *RedisRouteCache) *CachedRouteProvider {
	return &CachedRouteProvider{upstream: upstream, cache: cache}
}

func (p *CachedRouteProvider) GetRoute(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (domain.Route, error) {
	log := zerolog.Ctx(ctx)

	r, ok, err := p.cache.Get(ctx, origin, destination)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("route cache read failed")
	case ok:
		obs.IncCacheHit("route_redis")
		return r, nil
	default:
		obs.IncCacheMiss("route_redis")
	}

	r, err = p.upstream.GetRoute(ctx, origin, destination)
	if err != nil {
		return domain.Route{}, err
	}

	if err := p.cache.Put(ctx, origin, destination, r); err != nil {
		log.Warn().Err(err).Msg("route cache write failed")
	}
	return r, nil
}
