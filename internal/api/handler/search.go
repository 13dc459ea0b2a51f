package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Akash077-spec/aqi-api-server/internal/api/response"
	"github.com/Akash077-spec/aqi-api-server/internal/search"
)

// Searcher runs a place search.
type Searcher interface {
	Search(ctx context.Context, q string) (*search.Response, error)
}

// SearchHandler handles GET /api/search.
type SearchHandler struct {
	svc Searcher
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(svc Searcher) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// Search resolves ?q= to the nearest satellite sample. A query with no
// geocode match is a 404; every other failure is a 500.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	switch {
	case errors.Is(err, search.ErrLocationNotFound):
		response.NotFound(w, r, err.Error())
	case err != nil:
		response.ProviderError(w, r, "search", err)
	default:
		response.JSON(w, r, http.StatusOK, result)
	}
}
