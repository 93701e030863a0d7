package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fuel-stop-service/internal/domain"
	"fuel-stop-service/internal/platform/db"
	"fuel-stop-service/internal/platform/obs"
)

var ErrStationNotFound = errors.New("station not found")

// SQL-backed implementation of the StationRepository and StationLocator ports.
type SQLStationRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLStationRepository(conn *sql.DB, dialect db.Dialect) *SQLStationRepository {
	return &SQLStationRepository{DB: conn, Dialect: dialect}
}

const stationColumns = `
		station_id,
		name,
		address,
		city,
		state,
		rack_id,
		price,
		lat,
		lon`

// Return every located station in price export order.
func (s *SQLStationRepository) ListStations(ctx context.Context) (_ []domain.Station, err error) {
	defer obs.Time(ctx, "stations.ListStations")(&err)

	return s.query(ctx, "list stations", `
	SELECT`+stationColumns+`
	FROM stations
	WHERE lat IS NOT NULL AND lon IS NOT NULL
	ORDER BY seq, station_id;
	`)
}

// Return stations still missing coordinates, in price export order.
func (s *SQLStationRepository) ListUnlocated(ctx context.Context) ([]domain.Station, error) {
	return s.query(ctx, "list unlocated", `
	SELECT`+stationColumns+`
	FROM stations
	WHERE lat IS NULL OR lon IS NULL
	ORDER BY seq, station_id;
	`)
}

func (s *SQLStationRepository) UpdateLocation(ctx context.Context, stationID string, c domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("station repository: DB is nil")
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("update location station_id=%s: %w", stationID, err)
	}

	res, err := s.DB.ExecContext(ctx,
		s.Dialect.Rebind(`UPDATE stations SET lat = ?, lon = ? WHERE station_id = ?;`),
		c.Lat, c.Lon, stationID,
	)
	if err != nil {
		return fmt.Errorf("update location station_id=%s: %w", stationID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update location station_id=%s: rows affected: %w", stationID, err)
	}
	if n == 0 {
		return fmt.Errorf("update location station_id=%s: %w", stationID, ErrStationNotFound)
	}

	return nil
}

func (s *SQLStationRepository) query(ctx context.Context, op, q string) ([]domain.Station, error) {
	if s.DB == nil {
		return nil, errors.New("station repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: query stations table: %w", op, err)
	}
	defer rows.Close()

	stations := make([]domain.Station, 0, 256)
	for rows.Next() {
		var st domain.Station
		var lat, lon sql.NullFloat64
		if err := rows.Scan(
			&st.ID, &st.Name, &st.Address, &st.City, &st.State, &st.RackID, &st.Price, &lat, &lon,
		); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		st.Lat, st.Lon = lat.Float64, lon.Float64
		stations = append(stations, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}

	return stations, nil
}
