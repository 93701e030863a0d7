package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"fuel-stop-service/internal/api/dto"
	"fuel-stop-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).Str("path", r.URL.Path).Msg("encode failed")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "not found")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func toStationResponse(s domain.Station) dto.StationResponse {
	return dto.StationResponse{
		ID:      s.ID,
		Name:    s.Name,
		Address: s.Address,
		City:    s.City,
		State:   s.State,
		Lat:     s.Lat,
		Lon:     s.Lon,
		Price:   s.Price,
	}
}
