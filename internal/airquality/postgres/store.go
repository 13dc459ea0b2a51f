// Package postgres implements airquality.Store directly against the
// PostgreSQL database behind the Supabase project.
//
// Rows are rendered to JSON by PostgreSQL itself (row_to_json), the same
// rendering PostgREST serves, so every column comes back unmodified.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Akash077-spec/aqi-api-server/internal/airquality"
)

// ProviderName identifies this provider.
const ProviderName = "postgres"

// Querier is the subset of pgxpool.Pool used by the store.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store is a PostgreSQL implementation of airquality.Store.
type Store struct {
	db Querier
}

// NewStore creates a new PostgreSQL store.
func NewStore(db Querier) *Store {
	return &Store{db: db}
}

// LatestReadings returns the rows of the get_latest_aqi() function.
func (s *Store) LatestReadings(ctx context.Context) ([]airquality.Row, error) {
	query := `
		SELECT row_to_json(t)
		FROM get_latest_aqi() AS t
	`
	return s.rows(ctx, "latest readings", query)
}

// HistoricalReadings returns the newest readings of a station.
func (s *Store) HistoricalReadings(ctx context.Context, stationID string, limit int) ([]airquality.Row, error) {
	query := `
		SELECT row_to_json(t)
		FROM (
			SELECT station_id, created_at, aqi, pm25
			FROM aqi_readings
			WHERE station_id::text = $1
			ORDER BY created_at DESC
			LIMIT $2
		) AS t
		ORDER BY t.created_at DESC
	`
	return s.rows(ctx, "historical readings", query, stationID, limit)
}

// Forecast returns the forecast points of a station, oldest first.
func (s *Store) Forecast(ctx context.Context, stationID string) ([]airquality.Row, error) {
	query := `
		SELECT row_to_json(t)
		FROM (
			SELECT forecasted_at, predicted_aqi
			FROM forecasts
			WHERE station_id::text = $1
		) AS t
		ORDER BY t.forecasted_at ASC
	`
	return s.rows(ctx, "forecast", query, stationID)
}

// SatelliteSnapshot returns every satellite sample.
func (s *Store) SatelliteSnapshot(ctx context.Context) ([]airquality.Row, error) {
	query := `
		SELECT row_to_json(t)
		FROM (
			SELECT latitude, longitude, pollutant_value
			FROM satellite_readings
		) AS t
	`
	return s.rows(ctx, "satellite snapshot", query)
}

// NearestSatellite returns the rows of nearest_satellite_reading(lat, lng).
func (s *Store) NearestSatellite(ctx context.Context, lat, lng float64) ([]airquality.Row, error) {
	query := `
		SELECT row_to_json(t)
		FROM nearest_satellite_reading($1, $2) AS t
	`
	return s.rows(ctx, "nearest satellite", query, lat, lng)
}

func (s *Store) rows(ctx context.Context, name, query string, args ...any) ([]airquality.Row, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, queryError(name, err)
	}
	defer rows.Close()

	var out []airquality.Row
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		out = append(out, airquality.Row(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(name, err)
	}

	return out, nil
}

// queryError marks failures that never reached the server (connection,
// pool or timeout errors) as ErrProviderUnavailable. Server errors keep
// PostgreSQL's own message.
func queryError(name string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("query %s: %w", name, err)
	}
	return fmt.Errorf("query %s: %w: %w", name, airquality.ErrProviderUnavailable, err)
}
