package http

import (
	"log/slog"
	"net/http"

	"github.com/daybookhq/daybook/internal/service"
	"github.com/daybookhq/daybook/pkg/httputil"
)

// QuestionHandler handles HTTP requests for writing prompts.
type QuestionHandler struct {
	service *service.QuestionService
	logger  *slog.Logger
}

// NewQuestionHandler creates a new question HTTP handler.
func NewQuestionHandler(svc *service.QuestionService, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{service: svc, logger: logger}
}

// Random handles GET /api/v1/questions/random
func (h *QuestionHandler) Random(w http.ResponseWriter, r *http.Request) {
	question, err := h.service.Random(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: question})
}

// Today handles GET /api/v1/questions/today
func (h *QuestionHandler) Today(w http.ResponseWriter, r *http.Request) {
	question, err := h.service.Today(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: question})
}
