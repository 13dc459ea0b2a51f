// Package google provides a geocoding.Geocoder backed by the Google Maps
// Geocoding API.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Akash077-spec/aqi-api-server/internal/geocoding"
	"github.com/Akash077-spec/aqi-api-server/internal/provider/resilience"
)

const (
	// ProviderName identifies this provider.
	ProviderName = "google-geocoding"

	// DefaultBaseURL is the Geocoding API endpoint.
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"
)

// Geocoding API status values.
const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// ClientConfig holds configuration for the Google geocoding client.
type ClientConfig struct {
	// APIKey is the Google Maps API key (required).
	APIKey string

	// Region is the ccTLD region bias applied to every query (e.g. "in").
	Region string

	// BaseURL overrides DefaultBaseURL.
	BaseURL string

	// HTTPClient is the HTTP client to use.
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a Google Geocoding API client.
type Client struct {
	apiKey     string
	region     string
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new Google geocoding client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		region:     strings.ToLower(cfg.Region),
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type geocodeResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
	Results      []geocodeResult `json:"results"`
}

type geocodeResult struct {
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location geocoding.Location `json:"location"`
	} `json:"geometry"`
}

// Geocode resolves the query. ZERO_RESULTS yields an empty slice.
func (c *Client) Geocode(ctx context.Context, query string) ([]geocoding.Candidate, error) {
	params := url.Values{}
	params.Set("address", query)
	params.Set("key", c.apiKey)
	if c.region != "" {
		params.Set("region", c.region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", geocoding.ErrGeocoderUnavailable, resp.StatusCode)
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	switch body.Status {
	case statusOK:
	case statusZeroResults:
		return []geocoding.Candidate{}, nil
	default:
		msg := body.Status
		if body.ErrorMessage != "" {
			msg += ": " + body.ErrorMessage
		}
		return nil, fmt.Errorf("%w: %s", geocoding.ErrGeocoderUnavailable, msg)
	}

	candidates := make([]geocoding.Candidate, 0, len(body.Results))
	for _, r := range body.Results {
		candidates = append(candidates, geocoding.Candidate{
			FormattedAddress: r.FormattedAddress,
			Location:         r.Geometry.Location,
		})
	}
	return candidates, nil
}
