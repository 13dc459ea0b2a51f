// Package main provides the entrypoint for the AQI API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Akash077-spec/aqi-api-server/internal/airquality"
	"github.com/Akash077-spec/aqi-api-server/internal/api"
	"github.com/Akash077-spec/aqi-api-server/internal/api/middleware"
	"github.com/Akash077-spec/aqi-api-server/internal/config"
	"github.com/Akash077-spec/aqi-api-server/internal/provider/resilience"
	"github.com/Akash077-spec/aqi-api-server/internal/search"
	"github.com/Akash077-spec/aqi-api-server/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "aqi-api"

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	loaded, err := config.LoadDotEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read .env")
	}
	if !loaded {
		log.Info().Msg("no .env file, using process environment")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	log = log.Level(level).With().Str("env", cfg.Env).Logger()

	log.Info().
		Str("build_time", BuildTime).
		Str("backend", cfg.DataBackend).
		Str("geocoder", cfg.Geocoder).
		Msg("starting AQI API")

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	providerMetrics, err := telemetry.NewProviderMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	registry := resilience.NewRegistry()

	store, closeStore, err := newStore(ctx, cfg, registry, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize data backend")
		os.Exit(1)
	}
	defer closeStore()

	geocoder, geocoderName, err := newGeocoder(cfg, registry, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize geocoder")
		os.Exit(1)
	}

	aqService := airquality.NewService(airquality.ServiceConfig{
		Store:        store,
		ProviderName: cfg.DataBackend,
		Logger:       log,
		Timeout:      cfg.ProviderTimeout,
		Metrics:      providerMetrics,
	})

	searchService := search.NewService(search.ServiceConfig{
		Geocoder:     geocoder,
		GeocoderName: geocoderName,
		Nearest:      aqService,
		Logger:       log,
		Timeout:      cfg.ProviderTimeout,
		Metrics:      providerMetrics,
	})

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		ServiceName: serviceName,
		Backend:     cfg.DataBackend,
		Logger:      log,
		AirQuality:  aqService,
		Search:      searchService,
		Registry:    registry,
		Metrics:     httpMetrics,
		CORS:        middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins},
		RateLimit:   middleware.PerMinute(cfg.RateLimitPerMinute),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
