// Package api provides the HTTP API for the AQI gateway.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Akash077-spec/aqi-api-server/internal/api/handler"
	"github.com/Akash077-spec/aqi-api-server/internal/api/middleware"
	"github.com/Akash077-spec/aqi-api-server/internal/api/models"
	"github.com/Akash077-spec/aqi-api-server/internal/api/response"
)

// AirQualityService is everything the station and satellite endpoints need.
type AirQualityService interface {
	handler.AQIService
	handler.SatelliteService
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	ServiceName string
	Backend     string
	Logger      zerolog.Logger

	AirQuality AirQualityService
	Search     handler.Searcher
	Registry   handler.ProviderRegistry

	// Metrics is optional.
	Metrics *middleware.Metrics

	CORS      middleware.CORSConfig
	RateLimit middleware.RateLimitConfig
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "aqi-api"
	}

	// Order matters: request ID first, so tracing and logging can pick it up.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.ContentTypeJSON)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, req, models.MessageNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		response.Error(w, req, http.StatusMethodNotAllowed, models.MessageMethodNotAllowed)
	})

	aqiHandler := handler.NewAQIHandler(cfg.AirQuality)
	satelliteHandler := handler.NewSatelliteHandler(cfg.AirQuality)
	searchHandler := handler.NewSearchHandler(cfg.Search)
	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Backend:   cfg.Backend,
		Registry:  cfg.Registry,
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(cfg.RateLimit))

			r.Route("/aqi", func(r chi.Router) {
				r.Get("/latest", aqiHandler.Latest)
				r.Get("/historical/{stationId}", aqiHandler.Historical)
				r.Get("/forecast/{stationId}", aqiHandler.Forecast)
			})
			r.Get("/satellite/latest", satelliteHandler.Latest)
			r.Get("/search", searchHandler.Search)
		})
	})

	return r
}
