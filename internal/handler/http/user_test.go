package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/daybookhq/daybook/internal/domain"
)

func TestGetProfile_Success(t *testing.T) {
	f := newRouterFixture(t)
	user := sampleUser(t, f.hasher, "Sunrise77")
	f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+f.accessTokenFor(t, user.ID))
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"marisol"`)
	assert.NotContains(t, rec.Body.String(), "password_hash")
}

func TestChangePassword_Success(t *testing.T) {
	f := newRouterFixture(t)
	user := sampleUser(t, f.hasher, "Sunrise77")
	f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.userRepo.On("UpdatePassword", mock.Anything, user.ID, mock.AnythingOfType("string")).Return(nil)

	req := jsonRequest(t, http.MethodPut, "/api/v1/users/me/password", ChangePasswordRequest{
		OldPassword: "Sunrise77",
		NewPassword: "Moonset88",
	})
	req.Header.Set("Authorization", "Bearer "+f.accessTokenFor(t, user.ID))
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	f.userRepo.AssertCalled(t, "UpdatePassword", mock.Anything, user.ID, mock.AnythingOfType("string"))
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	f := newRouterFixture(t)
	user := sampleUser(t, f.hasher, "Sunrise77")
	f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	req := jsonRequest(t, http.MethodPut, "/api/v1/users/me/password", ChangePasswordRequest{
		OldPassword: "NotTheOne1",
		NewPassword: "Moonset88",
	})
	req.Header.Set("Authorization", "Bearer "+f.accessTokenFor(t, user.ID))
	rec := f.do(req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	f.userRepo.AssertNotCalled(t, "UpdatePassword")
}

func TestChangeUsername_Success(t *testing.T) {
	f := newRouterFixture(t)
	user := sampleUser(t, f.hasher, "Sunrise77")
	f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.userRepo.On("UpdateUsername", mock.Anything, user.ID, "new-name").Return(nil)

	req := jsonRequest(t, http.MethodPut, "/api/v1/users/me/username", ChangeUsernameRequest{
		NewUsername: "new-name",
	})
	req.Header.Set("Authorization", "Bearer "+f.accessTokenFor(t, user.ID))
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteAccount_Success(t *testing.T) {
	f := newRouterFixture(t)
	user := sampleUser(t, f.hasher, "Sunrise77")
	f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.userRepo.On("Delete", mock.Anything, user.ID).Return(nil)

	req := jsonRequest(t, http.MethodDelete, "/api/v1/users/me", DeleteAccountRequest{
		Password: "Sunrise77",
	})
	req.Header.Set("Authorization", "Bearer "+f.accessTokenFor(t, user.ID))
	rec := f.do(req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCalendar_Success(t *testing.T) {
	f := newRouterFixture(t)
	user := sampleUser(t, f.hasher, "Sunrise77")
	f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.postRepo.On("Calendar", mock.Anything, user.ID).Return([]domain.CalendarDay{
		{Date: "2026-08-29", PostID: 12, HasImage: true},
		{Date: "2026-08-30", PostID: 13, HasImage: false},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/calendar", nil)
	req.Header.Set("Authorization", "Bearer "+f.accessTokenFor(t, user.ID))
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"2026-08-29"`)
	assert.Contains(t, rec.Body.String(), `"has_image":true`)
}
