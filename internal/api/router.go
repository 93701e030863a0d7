package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"fuel-stop-service/internal/api/handlers"
)

type Deps struct {
	Trips          handlers.TripPlanner
	Catalog        handlers.CatalogSource
	Log            zerolog.Logger
	RequestTimeout time.Duration
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID(d.Log))
	r.Use(accessLog)
	r.Use(recoverer)

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Get("/health", handlers.Health)
	r.Handle("/metrics", promhttp.Handler())

	fuelStops := &handlers.FuelStopsHandler{Trips: d.Trips}
	stations := &handlers.StationHandler{Catalog: d.Catalog}

	r.Group(func(r chi.Router) {
		r.Use(compression)
		r.Use(timeout(d.RequestTimeout))

		r.Get("/optimized-fuel-stops", fuelStops.Plan)
		r.Get("/optimized-fuel-stops/", fuelStops.Plan)
		r.Get("/stations", stations.List)
	})

	return r
}
