package http

import (
	"log/slog"
	"net/http"

	"github.com/daybookhq/daybook/internal/service"
	apperrors "github.com/daybookhq/daybook/pkg/errors"
	"github.com/daybookhq/daybook/pkg/httputil"
	"github.com/daybookhq/daybook/pkg/middleware"
	"github.com/daybookhq/daybook/pkg/pagination"
)

// maxImageSize caps uploaded post images.
const maxImageSize = 10 << 20 // 10MB

// PostHandler handles HTTP requests for diary entries.
type PostHandler struct {
	service *service.PostService
	logger  *slog.Logger
}

// NewPostHandler creates a new post HTTP handler.
func NewPostHandler(svc *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{service: svc, logger: logger}
}

// CreatePostRequest is the JSON request body for creating a diary entry.
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Date    string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Content string `json:"content" validate:"max=50000"`
}

// UpdatePostRequest is the JSON request body for updating a diary entry.
type UpdatePostRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Date    string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Content string `json:"content" validate:"max=50000"`
}

// Create handles POST /api/v1/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	authorID := middleware.UserIDFromContext(r.Context())

	var req CreatePostRequest
	if err := decodeBody(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	post, err := h.service.Create(r.Context(), authorID, service.CreatePostInput{
		Title:   req.Title,
		Date:    req.Date,
		Content: req.Content,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: post})
}

// Get handles GET /api/v1/posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	authorID := middleware.UserIDFromContext(r.Context())

	postID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	post, err := h.service.Get(r.Context(), authorID, postID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: post})
}

// List handles GET /api/v1/posts
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	authorID := middleware.UserIDFromContext(r.Context())
	params := pagination.FromRequest(r)

	result, err := h.service.List(r.Context(), authorID, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// Update handles PUT /api/v1/posts/{id}
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	authorID := middleware.UserIDFromContext(r.Context())

	postID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var req UpdatePostRequest
	if err := decodeBody(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	post, err := h.service.Update(r.Context(), authorID, postID, service.UpdatePostInput{
		Title:   req.Title,
		Date:    req.Date,
		Content: req.Content,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: post})
}

// Delete handles DELETE /api/v1/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authorID := middleware.UserIDFromContext(r.Context())

	postID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), authorID, postID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles PUT /api/v1/posts/{id}/image with a multipart form
// carrying the image under the "image" field.
func (h *PostHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	authorID := middleware.UserIDFromContext(r.Context())

	postID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("image must be a multipart upload of at most 10MB"), h.logger)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("missing image field"), h.logger)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")

	post, err := h.service.UploadImage(r.Context(), authorID, postID, contentType, file)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: post})
}
