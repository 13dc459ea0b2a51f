// Package search resolves a free-text place query to the nearest satellite
// pollutant sample.
//
// The flow is a short, strictly sequential pipeline:
//
//	geocode(q) -> select first candidate -> nearest satellite sample -> Response
//
// An empty geocode result ends the pipeline with ErrLocationNotFound. Any other
// failure from either collaborator is returned as-is.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Akash077-spec/aqi-api-server/internal/airquality"
	"github.com/Akash077-spec/aqi-api-server/internal/geocoding"
	"github.com/Akash077-spec/aqi-api-server/internal/telemetry"
)

const tracerName = "github.com/Akash077-spec/aqi-api-server/internal/search"

// ErrLocationNotFound is returned when the geocoder yields no candidates.
var ErrLocationNotFound = errors.New("Location not found") //nolint:staticcheck // message is part of the API contract

// Coords is the geocoded coordinate of the selected location.
type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// FoundLocation is the selected geocode candidate.
type FoundLocation struct {
	Name   string `json:"name"`
	Coords Coords `json:"coords"`
}

// Response is the composite search result. SatelliteData is the provider's
// nearest row as returned, or null when there is none.
type Response struct {
	SearchQuery   string         `json:"searchQuery"`
	FoundLocation FoundLocation  `json:"foundLocation"`
	SatelliteData airquality.Row `json:"satelliteData"`
}

// Nearest looks up the satellite row closest to a coordinate.
type Nearest interface {
	NearestSatellite(ctx context.Context, lat, lng float64) (airquality.Row, error)
}

// ServiceConfig holds configuration for the search service.
type ServiceConfig struct {
	Geocoder geocoding.Geocoder

	// GeocoderName labels metrics and spans (e.g. "google-geocoding").
	GeocoderName string

	Nearest Nearest
	Logger  zerolog.Logger

	// Timeout bounds the geocode call (default: 10 seconds). The nearest
	// lookup is bounded by the airquality service.
	Timeout time.Duration

	Metrics *telemetry.ProviderMetrics
}

// Service runs place searches.
type Service struct {
	geocoder     geocoding.Geocoder
	geocoderName string
	nearest      Nearest
	logger       zerolog.Logger
	timeout      time.Duration
	metrics      *telemetry.ProviderMetrics
	tracer       trace.Tracer
}

// NewService creates a new search service.
func NewService(cfg ServiceConfig) *Service {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	name := cfg.GeocoderName
	if name == "" {
		name = "geocoder"
	}

	return &Service{
		geocoder:     cfg.Geocoder,
		geocoderName: name,
		nearest:      cfg.Nearest,
		logger:       cfg.Logger,
		timeout:      timeout,
		metrics:      cfg.Metrics,
		tracer:       otel.Tracer(tracerName),
	}
}

// SelectFirst picks the provider's top-ranked candidate.
// It reports false when there are no candidates.
func SelectFirst(candidates []geocoding.Candidate) (geocoding.Candidate, bool) {
	if len(candidates) == 0 {
		return geocoding.Candidate{}, false
	}
	return candidates[0], true
}

// Search runs the pipeline for query q.
func (s *Service) Search(ctx context.Context, q string) (*Response, error) {
	ctx, span := s.tracer.Start(ctx, "search.Search",
		trace.WithAttributes(attribute.String("search.query", q)),
	)
	defer span.End()

	candidates, err := s.geocode(ctx, q)
	if err != nil {
		return nil, s.fail(span, "geocode", q, err)
	}

	selected, ok := SelectFirst(candidates)
	if !ok {
		span.SetAttributes(attribute.Bool("search.found", false))
		return nil, ErrLocationNotFound
	}
	span.SetAttributes(
		attribute.Bool("search.found", true),
		attribute.Int("search.candidates", len(candidates)),
	)

	loc := selected.Location
	row, err := s.nearest.NearestSatellite(ctx, loc.Lat, loc.Lng)
	if err != nil {
		return nil, s.fail(span, "nearest_satellite", q, err)
	}

	return &Response{
		SearchQuery: q,
		FoundLocation: FoundLocation{
			Name:   selected.FormattedAddress,
			Coords: Coords{Lat: loc.Lat, Lng: loc.Lng},
		},
		SatelliteData: row,
	}, nil
}

func (s *Service) geocode(ctx context.Context, q string) ([]geocoding.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	candidates, err := s.geocoder.Geocode(ctx, q)
	s.metrics.RecordRequest(s.geocoderName, "geocode", time.Since(start), err)
	return candidates, err
}

// fail records which stage broke. The error returned to the caller is unchanged.
func (s *Service) fail(span trace.Span, stage, q string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, fmt.Sprintf("%s: %v", stage, err))
	span.SetAttributes(attribute.String("search.failed_stage", stage))

	s.logger.Warn().
		Err(err).
		Str("stage", stage).
		Str("query", q).
		Msg("search failed")
	return err
}
