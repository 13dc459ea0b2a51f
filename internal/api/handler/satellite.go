package handler

import (
	"context"
	"net/http"

	"github.com/Akash077-spec/aqi-api-server/internal/airquality"
	"github.com/Akash077-spec/aqi-api-server/internal/api/response"
)

// SatelliteService returns the current satellite snapshot.
type SatelliteService interface {
	SatelliteSnapshot(ctx context.Context) ([]airquality.Row, error)
}

// SatelliteHandler handles GET /api/satellite/latest.
type SatelliteHandler struct {
	svc SatelliteService
}

// NewSatelliteHandler creates a new SatelliteHandler.
func NewSatelliteHandler(svc SatelliteService) *SatelliteHandler {
	return &SatelliteHandler{svc: svc}
}

// Latest handles GET /api/satellite/latest. Every stored sample is returned.
func (h *SatelliteHandler) Latest(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.SatelliteSnapshot(r.Context())
	if err != nil {
		response.ProviderError(w, r, "satellite_snapshot", err)
		return
	}
	response.JSON(w, r, http.StatusOK, rows)
}
