package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"fuel-stop-service/internal/adapters/cache"
	"fuel-stop-service/internal/adapters/events"
	"fuel-stop-service/internal/adapters/googlemaps"
	"fuel-stop-service/internal/adapters/repositories"
	"fuel-stop-service/internal/api"
	"fuel-stop-service/internal/config"
	"fuel-stop-service/internal/domain"
	"fuel-stop-service/internal/platform/db"
	"fuel-stop-service/internal/platform/logger"
	"fuel-stop-service/internal/ports"
	"fuel-stop-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQL, Google Maps, Redis, Kafka) behind ports and
// starts the HTTP server.
func main() {
	hasEnv := config.Load()
	cfg := config.FromEnv()

	log := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		Component: "server",
	}, os.Stdout)
	if !hasEnv {
		log.Info().Msg("no .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	if strings.TrimSpace(cfg.GoogleAPIKey) == "" {
		return errors.New("GOOGLE_API_KEY is required")
	}

	dialect, err := db.ParseDialect(cfg.DBDriver)
	if err != nil {
		return err
	}
	conn, err := db.Open(dialect, dsn(cfg, dialect))
	if err != nil {
		return err
	}
	defer conn.Close()

	// Initialize schema and load the price export on startup for local runs.
	if err := initAndSeed(ctx, conn, dialect, cfg.CatalogCSV, log); err != nil {
		return err
	}

	google, err := googlemaps.NewGoogleClient(cfg.GoogleAPIKey, googlemaps.Options{
		BaseURL:           cfg.GoogleBaseURL,
		RequestsPerMinute: cfg.GeocodeRatePerMinute,
	})
	if err != nil {
		return err
	}

	geocoder, err := cache.NewCachedGeocoder(google, cache.NewSQLGeocodeCache(conn, dialect), cfg.GeocodeLRUSize)
	if err != nil {
		return err
	}

	var routes ports.RouteProvider = google
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisRouteCache(ctx, cfg.RedisAddr, cfg.RouteCacheTTL)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("route cache disabled")
		} else {
			defer rc.Close()
			routes = cache.NewCachedRouteProvider(google, rc)
		}
	}

	store, err := services.NewCatalogStore(repositories.NewSQLStationRepository(conn, dialect))
	if err != nil {
		return err
	}

	planner, err := services.NewGreedyStopPlanner(
		services.NewCorridorFilter(cfg.H3Resolution),
		services.PlannerConfig{
			SearchRadiusMiles: cfg.SearchRadiusMiles,
			PurchaseGallons:   cfg.PurchaseGallons,
		},
	)
	if err != nil {
		return err
	}

	vehicle := domain.VehicleProfile{RangeMiles: cfg.VehicleRangeMiles, MPG: cfg.VehicleMPG}
	trips, err := services.NewTripService(geocoder, routes, store, planner, vehicle)
	if err != nil {
		return err
	}

	if catalog, err := store.Snapshot(ctx); err != nil {
		log.Warn().Err(err).Msg("initial catalog load failed; retrying on first request")
	} else if catalog.Len() == 0 {
		log.Warn().Msg("station catalog is empty; run catalogtool -seed -geocode")
	}

	if cfg.Kafka.Enabled {
		consumer := events.NewConsumer(events.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		}, store, log)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				log.Error().Err(err).Msg("catalog events consumer stopped")
			}
		}()
	}

	router := api.NewRouter(api.Deps{
		Trips:          trips,
		Catalog:        store,
		Log:            log,
		RequestTimeout: cfg.RequestTimeout,
	})

	// Timeouts are tuned for cold-cache planning (external API latency).
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("db", string(dialect)).Msg("server listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func dsn(cfg config.Config, dialect db.Dialect) string {
	if dialect == db.Postgres {
		return cfg.DatabaseURL
	}
	return cfg.DBPath
}

func initAndSeed(ctx context.Context, conn *sql.DB, dialect db.Dialect, csvPath string, log zerolog.Logger) error {
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(csvPath); err != nil {
		log.Info().Str("path", csvPath).Msg("no price export found, skipping seed")
		return nil
	}

	n, err := repositories.SeedFromCSV(ctx, conn, dialect, csvPath)
	if err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	log.Info().Int("stations", n).Str("path", csvPath).Msg("price export loaded")

	return nil
}
