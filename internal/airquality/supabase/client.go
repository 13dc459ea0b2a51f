// Package supabase implements airquality.Store on top of the Supabase
// PostgREST API.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Akash077-spec/aqi-api-server/internal/airquality"
	"github.com/Akash077-spec/aqi-api-server/internal/provider/resilience"
)

const (
	// ProviderName identifies this provider.
	ProviderName = "supabase"

	readingsTable  = "aqi_readings"
	forecastsTable = "forecasts"
	satelliteTable = "satellite_readings"

	latestFunction  = "get_latest_aqi"
	nearestFunction = "nearest_satellite_reading"
)

// ClientConfig holds configuration for the Supabase client.
type ClientConfig struct {
	// URL is the project URL, e.g. https://abcd.supabase.co (required).
	URL string

	// APIKey is the anon or service role key (required).
	APIKey string

	// HTTPClient is the HTTP client to use.
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a Supabase PostgREST client.
type Client struct {
	restURL    string
	apiKey     string
	httpClient HTTPDoer
}

// NewClient creates a new Supabase client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		restURL:    strings.TrimSuffix(cfg.URL, "/") + "/rest/v1",
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}
}

// APIError is an error body returned by PostgREST.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("unexpected status %d from data provider", e.StatusCode)
}

// LatestReadings calls the get_latest_aqi function.
func (c *Client) LatestReadings(ctx context.Context) ([]airquality.Row, error) {
	return c.rpc(ctx, latestFunction, struct{}{})
}

// HistoricalReadings selects the newest readings of a station.
func (c *Client) HistoricalReadings(ctx context.Context, stationID string, limit int) ([]airquality.Row, error) {
	q := url.Values{}
	q.Set("select", "station_id,created_at,aqi,pm25")
	q.Set("station_id", "eq."+stationID)
	q.Set("order", "created_at.desc")
	q.Set("limit", strconv.Itoa(limit))
	return c.get(ctx, readingsTable, q)
}

// Forecast selects the forecast points of a station, oldest first.
func (c *Client) Forecast(ctx context.Context, stationID string) ([]airquality.Row, error) {
	q := url.Values{}
	q.Set("select", "forecasted_at,predicted_aqi")
	q.Set("station_id", "eq."+stationID)
	q.Set("order", "forecasted_at.asc")
	return c.get(ctx, forecastsTable, q)
}

// SatelliteSnapshot selects every satellite sample.
func (c *Client) SatelliteSnapshot(ctx context.Context) ([]airquality.Row, error) {
	q := url.Values{}
	q.Set("select", "latitude,longitude,pollutant_value")
	return c.get(ctx, satelliteTable, q)
}

// NearestSatellite calls the nearest_satellite_reading function.
func (c *Client) NearestSatellite(ctx context.Context, lat, lng float64) ([]airquality.Row, error) {
	return c.rpc(ctx, nearestFunction, map[string]float64{"lat": lat, "lng": lng})
}

func (c *Client) get(ctx context.Context, table string, query url.Values) ([]airquality.Row, error) {
	u := fmt.Sprintf("%s/%s?%s", c.restURL, table, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

func (c *Client) rpc(ctx context.Context, function string, args any) ([]airquality.Row, error) {
	body, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode %s arguments: %w", function, err)
	}

	u := fmt.Sprintf("%s/rpc/%s", c.restURL, function)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// do executes req and splits the JSON array body into rows. Row bytes are
// kept as received.
func (c *Client) do(req *http.Request) ([]airquality.Row, error) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", airquality.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp)
	}

	var rows []airquality.Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: %v", airquality.ErrUnexpectedResponse, err)
	}
	return rows, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(body, apiErr) //nolint:errcheck // non-JSON bodies fall back to the status message
	return apiErr
}
