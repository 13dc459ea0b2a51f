// Package models provides response models for the AQI API.
package models

import (
	"encoding/json"
	"net/http"
)

// Fixed error messages.
const (
	MessageNotFound         = "Not found"
	MessageMethodNotAllowed = "Method not allowed"
	MessageInternal         = "Internal server error"
	MessageTooManyRequests  = "Too many requests"
)

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewErrorResponse creates an ErrorResponse with the given message.
func NewErrorResponse(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

// Write writes the envelope with the given status code.
func (e ErrorResponse) Write(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(e)
}
