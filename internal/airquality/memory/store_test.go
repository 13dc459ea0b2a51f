package memory_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akash077-spec/aqi-api-server/internal/airquality"
	"github.com/Akash077-spec/aqi-api-server/internal/airquality/memory"
)

var base = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func readingRow(stationID string, at time.Time, aqi int) airquality.Row {
	return airquality.Row(fmt.Sprintf(`{"station_id":%q,"created_at":%q,"aqi":%d,"pm25":null}`,
		stationID, at.Format(time.RFC3339), aqi))
}

func hourlyReadings(stationID string, n int) []airquality.Row {
	rows := make([]airquality.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, readingRow(stationID, base.Add(time.Duration(i)*time.Hour), 50+i%40))
	}
	return rows
}

func newStore(t *testing.T, f memory.Fixtures) *memory.Store {
	t.Helper()
	store, err := memory.NewStore(f)
	require.NoError(t, err)
	return store
}

func TestStore_LatestReadings(t *testing.T) {
	readings := append(hourlyReadings("10705", 5), hourlyReadings("10400", 3)...)
	store := newStore(t, memory.Fixtures{Readings: readings})

	latest, err := store.LatestReadings(context.Background())
	require.NoError(t, err)
	require.Len(t, latest, 2)

	assert.Equal(t, string(readingRow("10400", base.Add(2*time.Hour), 52)), string(latest[0]))
	assert.Equal(t, string(readingRow("10705", base.Add(4*time.Hour), 54)), string(latest[1]))
}

func TestStore_LatestReadings_NumericAndStringStationIDsMatch(t *testing.T) {
	store := newStore(t, memory.Fixtures{Readings: []airquality.Row{
		airquality.Row(`{"station_id":10705,"created_at":"2025-03-01T09:00:00+00:00","aqi":80}`),
		airquality.Row(`{"station_id":"10705","created_at":"2025-03-01T10:00:00+00:00","aqi":90}`),
	}})

	latest, err := store.LatestReadings(context.Background())
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.JSONEq(t, `{"station_id":"10705","created_at":"2025-03-01T10:00:00+00:00","aqi":90}`, string(latest[0]))
}

func TestStore_RowsServedUnchanged(t *testing.T) {
	row := airquality.Row(`{"station_id":10705,"station_name":"Anand Vihar","created_at":"2024-01-15T10:00:00+00:00","aqi":null,"pm25":null}`)
	store := newStore(t, memory.Fixtures{Readings: []airquality.Row{row}})

	rows, err := store.HistoricalReadings(context.Background(), "10705", airquality.HistoryWindow)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, string(row), string(rows[0]))
}

func TestStore_HistoricalReadings_NewestFirstAndCapped(t *testing.T) {
	store := newStore(t, memory.Fixtures{Readings: hourlyReadings("10705", 200)})

	rows, err := store.HistoricalReadings(context.Background(), "10705", airquality.HistoryWindow)
	require.NoError(t, err)
	require.Len(t, rows, airquality.HistoryWindow)

	assert.Equal(t, string(readingRow("10705", base.Add(199*time.Hour), 50+199%40)), string(rows[0]))
	assert.Equal(t, string(readingRow("10705", base.Add(32*time.Hour), 50+32%40)), string(rows[len(rows)-1]))
}

func TestStore_HistoricalReadings_UnknownStation(t *testing.T) {
	store := newStore(t, memory.Fixtures{Readings: hourlyReadings("10705", 3)})

	rows, err := store.HistoricalReadings(context.Background(), "not-a-station", airquality.HistoryWindow)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStore_Forecast_OldestFirst(t *testing.T) {
	store := newStore(t, memory.Fixtures{Forecasts: map[string][]airquality.Row{
		"10705": {
			airquality.Row(`{"forecasted_at":"2025-03-01T03:00:00Z","predicted_aqi":80}`),
			airquality.Row(`{"forecasted_at":"2025-03-01T01:00:00Z","predicted_aqi":60}`),
			airquality.Row(`{"forecasted_at":"2025-03-01T02:00:00Z","predicted_aqi":70}`),
		},
	}})

	rows, err := store.Forecast(context.Background(), "10705")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.JSONEq(t, `{"forecasted_at":"2025-03-01T01:00:00Z","predicted_aqi":60}`, string(rows[0]))
	assert.JSONEq(t, `{"forecasted_at":"2025-03-01T02:00:00Z","predicted_aqi":70}`, string(rows[1]))
	assert.JSONEq(t, `{"forecasted_at":"2025-03-01T03:00:00Z","predicted_aqi":80}`, string(rows[2]))
}

func TestStore_NearestSatellite(t *testing.T) {
	store := newStore(t, memory.Fixtures{Satellite: []airquality.Row{
		airquality.Row(`{"latitude":19.07,"longitude":72.87,"pollutant_value":0.00012}`),
		airquality.Row(`{"latitude":28.61,"longitude":77.20,"pollutant_value":0.00031}`),
		airquality.Row(`{"latitude":12.97,"longitude":77.59,"pollutant_value":0.00008}`),
	}})

	rows, err := store.NearestSatellite(context.Background(), 28.70, 77.10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, `{"latitude":28.61,"longitude":77.20,"pollutant_value":0.00031}`, string(rows[0]))
}

func TestStore_NearestSatellite_Empty(t *testing.T) {
	store := newStore(t, memory.Fixtures{})

	rows, err := store.NearestSatellite(context.Background(), 28.70, 77.10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStore_SatelliteSnapshot_ReturnsEveryRow(t *testing.T) {
	store := newStore(t, memory.Fixtures{Satellite: []airquality.Row{
		airquality.Row(`{"latitude":1,"longitude":2,"pollutant_value":3}`),
		airquality.Row(`{"latitude":4,"longitude":5,"pollutant_value":6}`),
	}})

	rows, err := store.SatelliteSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestNewStore_RejectsBadTimestamp(t *testing.T) {
	_, err := memory.NewStore(memory.Fixtures{Readings: []airquality.Row{
		airquality.Row(`{"station_id":"1","created_at":"yesterday","aqi":1}`),
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode reading 0")
}

func TestLoadFixtures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.json")
	err := os.WriteFile(path, []byte(`{
		"readings": [{"station_id": "10705", "created_at": "2025-03-01T00:00:00Z", "aqi": 42, "pm25": 11.5}],
		"forecasts": {"10705": [{"forecasted_at": "2025-03-02T00:00:00Z", "predicted_aqi": 55}]},
		"satellite": [{"latitude": 28.6, "longitude": 77.2, "pollutant_value": 0.0002}]
	}`), 0o600)
	require.NoError(t, err)

	fixtures, err := memory.LoadFixtures(path)
	require.NoError(t, err)

	require.Len(t, fixtures.Readings, 1)
	assert.JSONEq(t, `{"station_id": "10705", "created_at": "2025-03-01T00:00:00Z", "aqi": 42, "pm25": 11.5}`, string(fixtures.Readings[0]))
	assert.Len(t, fixtures.Forecasts["10705"], 1)
	assert.Len(t, fixtures.Satellite, 1)

	store := newStore(t, fixtures)
	rows, err := store.NearestSatellite(context.Background(), 28.6, 77.2)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestLoadFixtures_MissingFile(t *testing.T) {
	_, err := memory.LoadFixtures(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
