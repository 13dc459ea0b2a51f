// Package handler provides HTTP handlers for the AQI API.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Akash077-spec/aqi-api-server/internal/airquality"
	"github.com/Akash077-spec/aqi-api-server/internal/api/response"
)

// AQIService is the subset of airquality.Service used by the station endpoints.
type AQIService interface {
	LatestReadings(ctx context.Context) ([]airquality.Row, error)
	HistoricalReadings(ctx context.Context, stationID string) ([]airquality.Row, error)
	Forecast(ctx context.Context, stationID string) ([]airquality.Row, error)
}

// AQIHandler handles the station reading endpoints.
type AQIHandler struct {
	svc AQIService
}

// NewAQIHandler creates a new AQIHandler.
func NewAQIHandler(svc AQIService) *AQIHandler {
	return &AQIHandler{svc: svc}
}

// Latest handles GET /api/aqi/latest.
func (h *AQIHandler) Latest(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.LatestReadings(r.Context())
	if err != nil {
		response.ProviderError(w, r, "latest_readings", err)
		return
	}
	response.JSON(w, r, http.StatusOK, rows)
}

// Historical handles GET /api/aqi/historical/{stationId}.
// The station ID is passed through unvalidated.
func (h *AQIHandler) Historical(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.HistoricalReadings(r.Context(), chi.URLParam(r, "stationId"))
	if err != nil {
		response.ProviderError(w, r, "historical_readings", err)
		return
	}
	response.JSON(w, r, http.StatusOK, rows)
}

// Forecast handles GET /api/aqi/forecast/{stationId}.
func (h *AQIHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Forecast(r.Context(), chi.URLParam(r, "stationId"))
	if err != nil {
		response.ProviderError(w, r, "forecast", err)
		return
	}
	response.JSON(w, r, http.StatusOK, rows)
}
