package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fuel-stop-service/internal/adapters/cache"
	"fuel-stop-service/internal/adapters/googlemaps"
	"fuel-stop-service/internal/adapters/repositories"
	"fuel-stop-service/internal/config"
	"fuel-stop-service/internal/domain"
	"fuel-stop-service/internal/platform/db"
	"fuel-stop-service/internal/platform/logger"
	"fuel-stop-service/internal/services"
)

// catalogtool prepares the station catalog: schema, price export and
// geocoding of stations without coordinates.
func main() {
	hasEnv := config.Load()
	cfg := config.FromEnv()

	var (
		initSchema = flag.Bool("init", false, "create tables")
		seed       = flag.Bool("seed", false, "load the fuel price CSV")
		geocode    = flag.Bool("geocode", false, "geocode stations without coordinates")
		csvPath    = flag.String("csv", cfg.CatalogCSV, "fuel price CSV path")
		defaultLat = flag.Float64("default-lat", 0, "latitude stored when geocoding fails")
		defaultLon = flag.Float64("default-lon", 0, "longitude stored when geocoding fails")
	)
	flag.Parse()

	log := logger.Build(logger.Config{Level: cfg.LogLevel, Console: true, Component: "catalogtool"}, os.Stderr)
	if !hasEnv {
		log.Info().Msg("no .env file found (using environment variables)")
	}

	if !*initSchema && !*seed && !*geocode {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	dialect, err := db.ParseDialect(cfg.DBDriver)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	dsn := cfg.DBPath
	if dialect == db.Postgres {
		dsn = cfg.DatabaseURL
	}
	conn, err := db.Open(dialect, dsn)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	defer conn.Close()

	if *initSchema || *seed {
		log.Info().Msg("initializing database schema")
		if err := repositories.InitSchema(ctx, conn); err != nil {
			log.Fatal().Err(err).Msg("schema initialization failed")
		}
	}

	if *seed {
		log.Info().Str("path", *csvPath).Msg("seeding stations")
		n, err := repositories.SeedFromCSV(ctx, conn, dialect, *csvPath)
		if err != nil {
			log.Fatal().Err(err).Msg("seeding failed")
		}
		log.Info().Int("stations", n).Msg("seeding complete")
	}

	if *geocode {
		res, err := runGeocode(ctx, cfg, conn, dialect, domain.Coordinates{Lat: *defaultLat, Lon: *defaultLon})
		if err != nil {
			log.Fatal().Err(err).Int("geocoded", res.Geocoded).Int("defaulted", res.Defaulted).
				Msg("geocoding failed")
		}
		log.Info().Int("geocoded", res.Geocoded).Int("defaulted", res.Defaulted).Msg("geocoding complete")
	}
}

func runGeocode(
	ctx context.Context,
	cfg config.Config,
	conn *sql.DB,
	dialect db.Dialect,
	fallback domain.Coordinates,
) (services.EnrichResult, error) {
	google, err := googlemaps.NewGoogleClient(cfg.GoogleAPIKey, googlemaps.Options{
		BaseURL:           cfg.GoogleBaseURL,
		RequestsPerMinute: cfg.GeocodeRatePerMinute,
	})
	if err != nil {
		return services.EnrichResult{}, fmt.Errorf("geocode: %w", err)
	}

	geocoder, err := cache.NewCachedGeocoder(google, cache.NewSQLGeocodeCache(conn, dialect), cfg.GeocodeLRUSize)
	if err != nil {
		return services.EnrichResult{}, fmt.Errorf("geocode: %w", err)
	}

	repo := repositories.NewSQLStationRepository(conn, dialect)
	return services.EnrichCatalog(ctx, repo, geocoder, fallback)
}
