package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"fuel-stop-service/internal/api/dto"
	"fuel-stop-service/internal/domain"
	"fuel-stop-service/internal/services"
)

type TripPlanner interface {
	PlanTrip(ctx context.Context, req services.TripRequest) (*services.TripResult, error)
}

type FuelStopsHandler struct {
	Trips TripPlanner
}

// Plan answers GET /optimized-fuel-stops?start=...&finish=...
func (h *FuelStopsHandler) Plan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start := strings.TrimSpace(q.Get("start"))
	finish := strings.TrimSpace(q.Get("finish"))
	if start == "" || finish == "" {
		writeError(w, r, http.StatusBadRequest, "start and finish query parameters are required")
		return
	}

	res, err := h.Trips.PlanTrip(r.Context(), services.TripRequest{Start: start, Finish: finish})
	if err != nil {
		status, msg := classifyError(err)
		ev := zerolog.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			ev = zerolog.Ctx(r.Context()).Error()
		}
		ev.Err(err).Int("status", status).Msg("plan trip failed")
		writeError(w, r, status, msg)
		return
	}

	stops := make([]dto.StationResponse, 0, len(res.Plan.Stops))
	for _, s := range res.Plan.Stops {
		stops = append(stops, toStationResponse(s))
	}

	writeJSON(w, r, http.StatusOK, dto.FuelStopsResponse{
		OptimalStops:       res.Plan.StopNames(),
		Stops:              stops,
		TotalCost:          res.Plan.TotalCost,
		TotalGallons:       res.Plan.GallonsPurchased,
		RouteDistanceMiles: res.Route.DistanceMiles,
		RemainingMiles:     res.Plan.RemainingMiles,
		Complete:           res.Plan.Complete(),
		Start:              dto.CoordinatesResponse{Lat: res.Start.Lat, Lon: res.Start.Lon},
		Finish:             dto.CoordinatesResponse{Lat: res.Finish.Lat, Lon: res.Finish.Lon},
	})
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		return http.StatusBadRequest, "start and finish are required"
	case errors.Is(err, domain.ErrAddressNotFound):
		return http.StatusUnprocessableEntity, "address could not be geocoded"
	case errors.Is(err, domain.ErrRouteNotFound):
		return http.StatusUnprocessableEntity, "no driving route between start and finish"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	case errors.Is(err, services.ErrUpstream):
		return http.StatusBadGateway, "maps provider unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
