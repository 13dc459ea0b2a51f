package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Akash077-spec/aqi-api-server/internal/airquality"
	"github.com/Akash077-spec/aqi-api-server/internal/airquality/memory"
	"github.com/Akash077-spec/aqi-api-server/internal/airquality/postgres"
	"github.com/Akash077-spec/aqi-api-server/internal/airquality/supabase"
	"github.com/Akash077-spec/aqi-api-server/internal/config"
	"github.com/Akash077-spec/aqi-api-server/internal/database"
	"github.com/Akash077-spec/aqi-api-server/internal/geocoding"
	"github.com/Akash077-spec/aqi-api-server/internal/geocoding/google"
	"github.com/Akash077-spec/aqi-api-server/internal/geocoding/nominatim"
	"github.com/Akash077-spec/aqi-api-server/internal/provider/resilience"
)

// providerClient builds a registered resilient HTTP client for one upstream.
// Circuit breaker transitions are logged.
func providerClient(name string, cfg config.Config, registry *resilience.Registry, log zerolog.Logger) *resilience.Client {
	cbCfg := resilience.DefaultCircuitBreakerConfig(name)
	cbCfg.OnStateChange = resilience.LogStateChange(log)

	clientCfg := resilience.DefaultClientConfig(name)
	clientCfg.Timeout = cfg.ProviderTimeout
	clientCfg.Registry = registry
	clientCfg.CircuitBreaker = &cbCfg
	return resilience.NewClient(clientCfg)
}

// newStore builds the configured data backend. The returned func releases it.
func newStore(ctx context.Context, cfg config.Config, registry *resilience.Registry, log zerolog.Logger) (airquality.Store, func(), error) {
	noop := func() {}

	switch cfg.DataBackend {
	case config.BackendSupabase:
		client := supabase.NewClient(supabase.ClientConfig{
			URL:        cfg.Supabase.URL,
			APIKey:     cfg.Supabase.Key,
			HTTPClient: providerClient(supabase.ProviderName, cfg, registry, log),
		})
		log.Info().Str("url", cfg.Supabase.URL).Msg("using supabase data backend")
		return client, noop, nil

	case config.BackendPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.ProviderTimeout)
		defer cancel()

		pool, err := database.Connect(connectCtx, database.Config{
			URL:             cfg.Postgres.URL,
			MaxConns:        cfg.Postgres.MaxConns,
			ConnMaxLifetime: 30 * time.Minute,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		log.Info().Int32("max_conns", cfg.Postgres.MaxConns).Msg("using postgres data backend")
		return postgres.NewStore(pool), pool.Close, nil

	case config.BackendMemory:
		var fixtures memory.Fixtures
		if cfg.MemoryFixtures != "" {
			f, err := memory.LoadFixtures(cfg.MemoryFixtures)
			if err != nil {
				return nil, noop, err
			}
			fixtures = f
		}
		store, err := memory.NewStore(fixtures)
		if err != nil {
			return nil, noop, fmt.Errorf("load memory fixtures: %w", err)
		}
		log.Warn().
			Str("fixtures", cfg.MemoryFixtures).
			Int("readings", len(fixtures.Readings)).
			Msg("using in-memory data backend")
		return store, noop, nil
	}

	return nil, noop, fmt.Errorf("%w: DATA_BACKEND=%q", config.ErrInvalidEnv, cfg.DataBackend)
}

// newGeocoder builds the configured geocoder and returns its provider name.
func newGeocoder(cfg config.Config, registry *resilience.Registry, log zerolog.Logger) (geocoding.Geocoder, string, error) {
	switch cfg.Geocoder {
	case config.GeocoderGoogle:
		return google.NewClient(google.ClientConfig{
			APIKey:     cfg.Google.APIKey,
			Region:     cfg.Google.Region,
			HTTPClient: providerClient(google.ProviderName, cfg, registry, log),
		}), google.ProviderName, nil

	case config.GeocoderNominatim:
		return nominatim.NewClient(nominatim.ClientConfig{
			BaseURL:      cfg.Nominatim.URL,
			CountryCodes: cfg.Nominatim.CountryCodes,
			UserAgent:    cfg.Nominatim.UserAgent,
			HTTPClient:   providerClient(nominatim.ProviderName, cfg, registry, log),
		}), nominatim.ProviderName, nil
	}

	return nil, "", fmt.Errorf("%w: GEOCODER=%q", config.ErrInvalidEnv, cfg.Geocoder)
}
