package http

import (
	"log/slog"
	"net/http"

	"github.com/daybookhq/daybook/internal/service"
	"github.com/daybookhq/daybook/pkg/httputil"
	"github.com/daybookhq/daybook/pkg/middleware"
)

// UserHandler handles HTTP requests for the authenticated user's account.
type UserHandler struct {
	users  *service.UserService
	posts  *service.PostService
	logger *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(users *service.UserService, posts *service.PostService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, posts: posts, logger: logger}
}

// ChangePasswordRequest is the JSON request body for a password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

// ChangeUsernameRequest is the JSON request body for a display name change.
type ChangeUsernameRequest struct {
	NewUsername string `json:"new_username" validate:"required,min=1,max=100"`
}

// DeleteAccountRequest is the JSON request body for account deletion.
type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// GetProfile handles GET /api/v1/users/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	user, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

// ChangePassword handles PUT /api/v1/users/me/password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req ChangePasswordRequest
	if err := decodeBody(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.users.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"message": "password updated"}})
}

// ChangeUsername handles PUT /api/v1/users/me/username
func (h *UserHandler) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req ChangeUsernameRequest
	if err := decodeBody(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.users.ChangeUsername(r.Context(), userID, req.NewUsername); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"message": "username updated"}})
}

// DeleteAccount handles DELETE /api/v1/users/me
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req DeleteAccountRequest
	if err := decodeBody(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.users.DeleteAccount(r.Context(), userID, req.Password); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Calendar handles GET /api/v1/users/calendar
func (h *UserHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	days, err := h.posts.Calendar(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: days})
}
