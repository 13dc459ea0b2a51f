// Package nominatim provides a geocoding.Geocoder backed by an OpenStreetMap
// Nominatim search endpoint.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Akash077-spec/aqi-api-server/internal/geocoding"
	"github.com/Akash077-spec/aqi-api-server/internal/provider/resilience"
)

const (
	ProviderName     = "nominatim"
	DefaultBaseURL   = "https://nominatim.openstreetmap.org/search"
	DefaultUserAgent = "aqi-api-server/1.0"
	defaultLimit     = 5
)

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	BaseURL string

	// CountryCodes restricts results, e.g. "in". Comma separated.
	CountryCodes string

	// UserAgent is required by the public Nominatim usage policy.
	UserAgent string

	HTTPClient HTTPDoer
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries Nominatim.
type Client struct {
	baseURL      string
	countryCodes string
	userAgent    string
	httpClient   HTTPDoer
}

// NewClient creates a new Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:      cfg.BaseURL,
		countryCodes: strings.ToLower(cfg.CountryCodes),
		userAgent:    cfg.UserAgent,
		httpClient:   cfg.HTTPClient,
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode runs a free-form search. Results keep Nominatim's importance ordering.
func (c *Client) Geocode(ctx context.Context, query string) ([]geocoding.Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", strconv.Itoa(defaultLimit))
	params.Set("accept-language", "en")
	if c.countryCodes != "" {
		params.Set("countrycodes", c.countryCodes)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", geocoding.ErrGeocoderUnavailable, resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	candidates := make([]geocoding.Candidate, 0, len(results))
	for _, r := range results {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing lat %q: %w", r.Lat, err)
		}
		lng, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing lon %q: %w", r.Lon, err)
		}
		candidates = append(candidates, geocoding.Candidate{
			FormattedAddress: r.DisplayName,
			Location:         geocoding.Location{Lat: lat, Lng: lng},
		})
	}
	return candidates, nil
}
