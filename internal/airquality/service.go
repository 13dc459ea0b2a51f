package airquality

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Akash077-spec/aqi-api-server/internal/telemetry"
)

const tracerName = "github.com/Akash077-spec/aqi-api-server/internal/airquality"

// ServiceConfig holds configuration for the air quality service.
type ServiceConfig struct {
	// Store is the backend data store.
	Store Store

	// ProviderName labels metrics and spans (e.g. "supabase").
	ProviderName string

	// Logger for service operations.
	Logger zerolog.Logger

	// Timeout bounds every individual store call (default: 10 seconds).
	Timeout time.Duration

	// Metrics records store call latency. Optional.
	Metrics *telemetry.ProviderMetrics
}

// Service applies the gateway's fixed query policies on top of a Store.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	store        Store
	providerName string
	logger       zerolog.Logger
	timeout      time.Duration
	metrics      *telemetry.ProviderMetrics
	tracer       trace.Tracer
}

// NewService creates a new air quality service.
func NewService(cfg ServiceConfig) *Service {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	providerName := cfg.ProviderName
	if providerName == "" {
		providerName = "store"
	}

	return &Service{
		store:        cfg.Store,
		providerName: providerName,
		logger:       cfg.Logger,
		timeout:      timeout,
		metrics:      cfg.Metrics,
		tracer:       otel.Tracer(tracerName),
	}
}

// LatestReadings returns the latest reading of every station.
func (s *Service) LatestReadings(ctx context.Context) ([]Row, error) {
	return s.run(ctx, "latest_readings", s.store.LatestReadings)
}

// HistoricalReadings returns up to HistoryWindow readings for a station, newest first.
func (s *Service) HistoricalReadings(ctx context.Context, stationID string) ([]Row, error) {
	rows, err := s.run(ctx, "historical_readings", func(ctx context.Context) ([]Row, error) {
		return s.store.HistoricalReadings(ctx, stationID, HistoryWindow)
	})
	if err != nil {
		return nil, err
	}
	if len(rows) > HistoryWindow {
		rows = rows[:HistoryWindow]
	}
	return rows, nil
}

// Forecast returns every forecast point for a station, oldest first.
func (s *Service) Forecast(ctx context.Context, stationID string) ([]Row, error) {
	return s.run(ctx, "forecast", func(ctx context.Context) ([]Row, error) {
		return s.store.Forecast(ctx, stationID)
	})
}

// SatelliteSnapshot returns the full current satellite snapshot.
func (s *Service) SatelliteSnapshot(ctx context.Context) ([]Row, error) {
	return s.run(ctx, "satellite_snapshot", s.store.SatelliteSnapshot)
}

// NearestSatellite returns the satellite row closest to the coordinate.
// It returns nil without error when the store has no samples.
func (s *Service) NearestSatellite(ctx context.Context, lat, lng float64) (Row, error) {
	rows, err := s.run(ctx, "nearest_satellite", func(ctx context.Context) ([]Row, error) {
		return s.store.NearestSatellite(ctx, lat, lng)
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// run executes one store call under the per-call timeout, recording a span
// and provider metrics. A nil result is normalized to an empty slice.
func (s *Service) run(ctx context.Context, op string, call func(context.Context) ([]Row, error)) ([]Row, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "airquality."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("provider.name", s.providerName)),
	)
	defer span.End()

	start := time.Now()
	rows, err := call(ctx)
	duration := time.Since(start)
	s.metrics.RecordRequest(s.providerName, op, duration, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Debug().
			Err(err).
			Str("operation", op).
			Dur("duration", duration).
			Msg("data store call failed")
		return nil, err
	}

	if rows == nil {
		rows = []Row{}
	}
	span.SetAttributes(attribute.Int("rows", len(rows)))

	s.logger.Debug().
		Str("operation", op).
		Int("rows", len(rows)).
		Dur("duration", duration).
		Msg("data store call completed")

	return rows, nil
}
