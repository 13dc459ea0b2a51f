// Package geocoding resolves free-text place descriptions into coordinates.
package geocoding

import (
	"context"
	"errors"
)

// ErrGeocoderUnavailable is returned when the geocoding provider cannot be reached
// or rejects the request.
var ErrGeocoderUnavailable = errors.New("geocoding provider unavailable")

// Location is a WGS84 coordinate.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Candidate is one match returned by a geocoder.
type Candidate struct {
	FormattedAddress string   `json:"formattedAddress"`
	Location         Location `json:"location"`
}

// Geocoder resolves a query into zero or more candidates in the provider's
// ranking order. An empty result is not an error.
type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]Candidate, error)
}
