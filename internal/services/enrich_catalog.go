package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"fuel-stop-service/internal/domain"
	"fuel-stop-service/internal/ports"
)

type EnrichResult struct {
	Geocoded  int
	Defaulted int
}

// EnrichCatalog geocodes every station that has no coordinates yet from its
// "Address, City" and stores the result. A station that cannot be geocoded
// gets the fallback coordinates instead. Throughput is bounded by the
// geocoder's own rate limit.
//
// Cancellation stops the run and returns the counts so far with ctx's error.
func EnrichCatalog(
	ctx context.Context,
	locator ports.StationLocator,
	geocoder ports.Geocoder,
	fallback domain.Coordinates,
) (EnrichResult, error) {
	var res EnrichResult

	if locator == nil || geocoder == nil {
		return res, errors.New("enrich catalog: nil dependency")
	}
	if err := fallback.Validate(); err != nil {
		return res, fmt.Errorf("enrich catalog: fallback: %w", err)
	}

	stations, err := locator.ListUnlocated(ctx)
	if err != nil {
		return res, fmt.Errorf("enrich catalog: list unlocated: %w", err)
	}

	log := zerolog.Ctx(ctx)
	log.Info().Int("stations", len(stations)).Msg("geocoding unlocated stations")

	for i, st := range stations {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		address := stationAddress(st)
		c, err := geocoder.Geocode(ctx, address)
		switch {
		case err == nil:
			res.Geocoded++
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return res, err
		default:
			log.Warn().Err(err).Str("station_id", st.ID).Str("address", address).
				Msg("geocoding failed, using fallback coordinates")
			c = fallback
			res.Defaulted++
		}

		if err := locator.UpdateLocation(ctx, st.ID, c); err != nil {
			return res, fmt.Errorf("enrich catalog: %w", err)
		}

		if (i+1)%100 == 0 {
			log.Info().Int("done", i+1).Int("total", len(stations)).Msg("geocoding progress")
		}
	}

	return res, nil
}

func stationAddress(st domain.Station) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{st.Address, st.City} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
