package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"fuel-stop-service/internal/api/dto"
	"fuel-stop-service/internal/domain"
)

type CatalogSource interface {
	Snapshot(ctx context.Context) (domain.StationCatalog, error)
}

// StationHandler exposes the loaded station catalog read-only.
type StationHandler struct {
	Catalog CatalogSource
}

// List returns the catalog in catalog order, optionally narrowed by ?state=.
func (h *StationHandler) List(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.Catalog.Snapshot(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("load catalog failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	state := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("state")))

	res := dto.ListStationsResponse{Stations: make([]dto.StationResponse, 0, catalog.Len())}
	for i := 0; i < catalog.Len(); i++ {
		s := catalog.At(i)
		if state != "" && !strings.EqualFold(s.State, state) {
			continue
		}
		res.Stations = append(res.Stations, toStationResponse(s))
	}
	res.Count = len(res.Stations)

	writeJSON(w, r, http.StatusOK, res)
}
