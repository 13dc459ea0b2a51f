// Package response provides utilities for HTTP response handling.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Akash077-spec/aqi-api-server/internal/api/middleware"
	"github.com/Akash077-spec/aqi-api-server/internal/api/models"
)

// JSON writes data as a JSON response with the given status code.
// Includes X-Request-Id header for correlation. HTML characters are not
// escaped, so provider strings are written as received.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set(middleware.HeaderRequestID, requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		_ = enc.Encode(data)
	}
}

// Error writes the {"error": msg} envelope.
func Error(w http.ResponseWriter, r *http.Request, status int, msg string) {
	JSON(w, r, status, models.NewErrorResponse(msg))
}

// NotFound writes a 404 envelope.
func NotFound(w http.ResponseWriter, r *http.Request, msg string) {
	Error(w, r, http.StatusNotFound, msg)
}

// ProviderError maps a collaborator failure to a 500 envelope carrying the
// error's message. It is the single place handlers report upstream failures.
func ProviderError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()

	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, op)

	zerolog.Ctx(ctx).Error().
		Err(err).
		Str("operation", op).
		Msg("provider call failed")

	Error(w, r, http.StatusInternalServerError, err.Error())
}
