// Package airquality provides access to station readings, forecasts and
// satellite samples held by the backend data store.
package airquality

import (
	"context"
	"encoding/json"
	"errors"
)

// HistoryWindow is the number of most recent readings returned for a station.
// It is a row cap (roughly 7 days of hourly data), not a time range.
const HistoryWindow = 168

// Store errors.
var (
	// ErrProviderUnavailable indicates the data provider could not be reached
	// or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("data provider unavailable")
	ErrUnexpectedResponse  = errors.New("unexpected data provider response")
)

// Row is one provider row exactly as the provider encoded it. The gateway
// orders, caps and selects rows but never decodes or rewrites their values.
//
// Row shapes by source:
//   - readings: station_id, created_at, aqi, pm25 (plus whatever else
//     get_latest_aqi returns)
//   - forecasts: forecasted_at, predicted_aqi
//   - satellite: latitude, longitude, pollutant_value
type Row = json.RawMessage

// Store is the backend data store holding readings, forecasts and satellite
// samples. Implementations return rows exactly as stored.
type Store interface {
	// LatestReadings returns the latest reading for every station.
	LatestReadings(ctx context.Context) ([]Row, error)

	// HistoricalReadings returns at most limit readings for a station,
	// newest first.
	HistoricalReadings(ctx context.Context, stationID string, limit int) ([]Row, error)

	// Forecast returns the forecast points for a station, oldest first.
	Forecast(ctx context.Context, stationID string) ([]Row, error)

	// SatelliteSnapshot returns every satellite sample currently stored.
	SatelliteSnapshot(ctx context.Context) ([]Row, error)

	// NearestSatellite returns the satellite samples closest to the
	// coordinate, nearest first. Backends normally return a single row.
	NearestSatellite(ctx context.Context, lat, lng float64) ([]Row, error)
}
