package repositories

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"fuel-stop-service/internal/platform/db"
)

// Column headers of the fuel price export.
const (
	colID        = "OPIS Truckstop ID"
	colName      = "Truckstop Name"
	colAddress   = "Address"
	colCity      = "City"
	colState     = "State"
	colRackID    = "Rack ID"
	colPrice     = "Retail Price"
	colLatitude  = "Latitude"
	colLongitude = "Longitude"
)

// StationSeed is one parsed catalog row. Lat and Lon are nil when the export
// has not been geocoded yet.
type StationSeed struct {
	ID      string
	Name    string
	Address string
	City    string
	State   string
	RackID  string
	Price   float64
	Lat     *float64
	Lon     *float64
}

// ParseStationCSV reads a fuel price export. Rows sharing a station ID
// collapse to the cheapest one; output keeps first-appearance order.
func ParseStationCSV(r io.Reader) ([]StationSeed, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("parse stations: read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range []string{colID, colName, colAddress, colCity, colState, colPrice} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("parse stations: missing column %q", col)
		}
	}
	_, hasLat := idx[colLatitude]
	_, hasLon := idx[colLongitude]
	located := hasLat && hasLon

	field := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(strings.Trim(rec[i], `"`))
	}

	out := make([]StationSeed, 0, 1024)
	pos := make(map[string]int)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse stations: line %d: %w", line, err)
		}

		s := StationSeed{
			ID:      field(rec, colID),
			Name:    field(rec, colName),
			Address: field(rec, colAddress),
			City:    field(rec, colCity),
			State:   field(rec, colState),
			RackID:  field(rec, colRackID),
		}
		if s.ID == "" {
			return nil, fmt.Errorf("parse stations: line %d: empty station id", line)
		}

		s.Price, err = strconv.ParseFloat(field(rec, colPrice), 64)
		if err != nil || math.IsNaN(s.Price) || math.IsInf(s.Price, 0) || s.Price <= 0 {
			return nil, fmt.Errorf("parse stations: line %d: invalid price %q", line, field(rec, colPrice))
		}

		if located {
			lat, latErr := strconv.ParseFloat(field(rec, colLatitude), 64)
			lon, lonErr := strconv.ParseFloat(field(rec, colLongitude), 64)
			if latErr == nil && lonErr == nil {
				s.Lat, s.Lon = &lat, &lon
			}
		}

		if i, ok := pos[s.ID]; ok {
			if s.Price < out[i].Price {
				out[i] = s
			}
			continue
		}
		pos[s.ID] = len(out)
		out = append(out, s)
	}

	return out, nil
}

// SeedFromCSV loads a fuel price export into the stations table. Existing
// rows are updated; coordinates already stored are kept when the export has
// none.
func SeedFromCSV(ctx context.Context, conn *sql.DB, dialect db.Dialect, csvPath string) (int, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("seed stations: open %q: %w", csvPath, err)
	}
	defer f.Close()

	rows, err := ParseStationCSV(f)
	if err != nil {
		return 0, fmt.Errorf("seed stations: %w", err)
	}

	if err := UpsertStations(ctx, conn, dialect, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func UpsertStations(ctx context.Context, conn *sql.DB, dialect db.Dialect, rows []StationSeed) error {
	if conn == nil {
		return errors.New("seed stations: DB is nil")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed stations: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := dialect.Rebind(`
	INSERT INTO stations (
		station_id,
		seq,
		name,
		address,
		city,
		state,
		rack_id,
		price,
		lat,
		lon
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (station_id) DO UPDATE
	SET seq = excluded.seq,
		name = excluded.name,
		address = excluded.address,
		city = excluded.city,
		state = excluded.state,
		rack_id = excluded.rack_id,
		price = excluded.price,
		lat = COALESCE(excluded.lat, stations.lat),
		lon = COALESCE(excluded.lon, stations.lon);
	`)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("seed stations: prepare insert: %w", err)
	}
	defer stmt.Close()

	// seq keeps export order; it is the catalog order the planner breaks ties on.
	for i, s := range rows {
		if _, err := stmt.ExecContext(ctx,
			s.ID, i, s.Name, s.Address, s.City, s.State, s.RackID, s.Price, s.Lat, s.Lon,
		); err != nil {
			return fmt.Errorf("seed stations: insert station_id=%s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed stations: commit tx: %w", err)
	}

	return nil
}
