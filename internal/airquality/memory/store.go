// Package memory provides an in-memory airquality.Store.
// It is intended for local development and tests. Production uses the
// supabase or postgres stores.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/Akash077-spec/aqi-api-server/internal/airquality"
)

// Fixtures is the seed data of a Store. Rows use the provider's column
// names and are served exactly as given. Timestamps must be RFC 3339.
type Fixtures struct {
	Readings  []airquality.Row            `json:"readings"`
	Forecasts map[string][]airquality.Row `json:"forecasts"`
	Satellite []airquality.Row            `json:"satellite"`
}

// Store is an in-memory implementation of airquality.Store.
// It is immutable after NewStore and safe for concurrent use.
type Store struct {
	readings  []reading
	forecasts map[string][]forecast
	satellite []satellite
}

type reading struct {
	stationID string
	createdAt time.Time
	row       airquality.Row
}

type forecast struct {
	forecastedAt time.Time
	row          airquality.Row
}

type satellite struct {
	lat, lng float64
	row      airquality.Row
}

// NewStore indexes the fixtures. Only the columns used for ordering and
// lookup are decoded.
func NewStore(f Fixtures) (*Store, error) {
	s := &Store{forecasts: make(map[string][]forecast)}

	for i, row := range f.Readings {
		var cols struct {
			StationID json.RawMessage `json:"station_id"`
			CreatedAt time.Time       `json:"created_at"`
		}
		if err := json.Unmarshal(row, &cols); err != nil {
			return nil, fmt.Errorf("decode reading %d: %w", i, err)
		}
		s.readings = append(s.readings, reading{
			stationID: stationKey(cols.StationID),
			createdAt: cols.CreatedAt,
			row:       row,
		})
	}

	for stationID, rows := range f.Forecasts {
		for i, row := range rows {
			var cols struct {
				ForecastedAt time.Time `json:"forecasted_at"`
			}
			if err := json.Unmarshal(row, &cols); err != nil {
				return nil, fmt.Errorf("decode forecast %s/%d: %w", stationID, i, err)
			}
			s.forecasts[stationID] = append(s.forecasts[stationID], forecast{forecastedAt: cols.ForecastedAt, row: row})
		}
	}

	for i, row := range f.Satellite {
		var cols struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		}
		if err := json.Unmarshal(row, &cols); err != nil {
			return nil, fmt.Errorf("decode satellite %d: %w", i, err)
		}
		s.satellite = append(s.satellite, satellite{lat: cols.Latitude, lng: cols.Longitude, row: row})
	}

	return s, nil
}

// LoadFixtures reads a JSON fixtures file.
func LoadFixtures(path string) (Fixtures, error) {
	var f Fixtures

	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read fixtures: %w", err)
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("decode fixtures: %w", err)
	}
	return f, nil
}

// stationKey accepts numeric and string station identifiers, so 10705 and
// "10705" name the same station.
func stationKey(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

// LatestReadings returns the newest reading per station, ordered by station ID.
func (s *Store) LatestReadings(_ context.Context) ([]airquality.Row, error) {
	latest := make(map[string]reading)
	for _, r := range s.readings {
		if cur, ok := latest[r.stationID]; !ok || r.createdAt.After(cur.createdAt) {
			latest[r.stationID] = r
		}
	}

	stations := make([]string, 0, len(latest))
	for id := range latest {
		stations = append(stations, id)
	}
	sort.Strings(stations)

	out := make([]airquality.Row, 0, len(stations))
	for _, id := range stations {
		out = append(out, latest[id].row)
	}
	return out, nil
}

// HistoricalReadings returns up to limit readings for a station, newest first.
func (s *Store) HistoricalReadings(_ context.Context, stationID string, limit int) ([]airquality.Row, error) {
	var matched []reading
	for _, r := range s.readings {
		if r.stationID == stationID {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].createdAt.After(matched[j].createdAt) })

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]airquality.Row, 0, len(matched))
	for _, r := range matched {
		out = append(out, r.row)
	}
	return out, nil
}

// Forecast returns the forecast of a station, oldest first.
func (s *Store) Forecast(_ context.Context, stationID string) ([]airquality.Row, error) {
	points := append([]forecast(nil), s.forecasts[stationID]...)
	sort.SliceStable(points, func(i, j int) bool { return points[i].forecastedAt.Before(points[j].forecastedAt) })

	out := make([]airquality.Row, 0, len(points))
	for _, p := range points {
		out = append(out, p.row)
	}
	return out, nil
}

// SatelliteSnapshot returns every stored satellite sample.
func (s *Store) SatelliteSnapshot(_ context.Context) ([]airquality.Row, error) {
	out := make([]airquality.Row, 0, len(s.satellite))
	for _, p := range s.satellite {
		out = append(out, p.row)
	}
	return out, nil
}

// NearestSatellite returns the sample with the smallest great-circle distance
// to the coordinate. Ties keep the earlier sample.
func (s *Store) NearestSatellite(_ context.Context, lat, lng float64) ([]airquality.Row, error) {
	if len(s.satellite) == 0 {
		return nil, nil
	}

	best := 0
	bestDist := haversineDistance(lat, lng, s.satellite[0].lat, s.satellite[0].lng)
	for i := 1; i < len(s.satellite); i++ {
		d := haversineDistance(lat, lng, s.satellite[i].lat, s.satellite[i].lng)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return []airquality.Row{s.satellite[best].row}, nil
}

// haversineDistance returns the distance between two coordinates in meters.
func haversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000 // meters

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}
