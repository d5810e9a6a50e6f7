package http

import (
	"log/slog"
	"net/http"

	"github.com/daybookhq/daybook/internal/service"
	"github.com/daybookhq/daybook/pkg/httputil"
	"github.com/daybookhq/daybook/pkg/middleware"
)

// QuoteHandler handles HTTP requests for quotes and bookmarks.
type QuoteHandler struct {
	service *service.QuoteService
	logger  *slog.Logger
}

// NewQuoteHandler creates a new quote HTTP handler.
func NewQuoteHandler(svc *service.QuoteService, logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{service: svc, logger: logger}
}

// Random handles GET /api/v1/quotes/random
func (h *QuoteHandler) Random(w http.ResponseWriter, r *http.Request) {
	quote, err := h.service.Random(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: quote})
}

// Bookmark handles POST /api/v1/quotes/{id}/bookmark
func (h *QuoteHandler) Bookmark(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	quoteID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.service.Bookmark(r.Context(), userID, quoteID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"message": "quote bookmarked"}})
}

// Unbookmark handles DELETE /api/v1/quotes/{id}/bookmark
func (h *QuoteHandler) Unbookmark(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	quoteID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.service.Unbookmark(r.Context(), userID, quoteID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Bookmarks handles GET /api/v1/quotes/bookmarks
func (h *QuoteHandler) Bookmarks(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	quotes, err := h.service.Bookmarks(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: quotes})
}
