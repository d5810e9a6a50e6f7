package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/daybookhq/daybook/internal/auth"
	"github.com/daybookhq/daybook/internal/domain"
	apperrors "github.com/daybookhq/daybook/pkg/errors"
)

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRegister_Success(t *testing.T) {
	f := newRouterFixture(t)

	f.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = 7
		}).
		Return(nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/users", RegisterRequest{
		Username: "marisol",
		LoginID:  "marisol@example.com",
		Password: "Sunrise77",
	})
	rec := f.do(req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data domain.AuthResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(7), resp.Data.User.ID)
	assert.Equal(t, "marisol", resp.Data.User.Username)
	assert.NotEmpty(t, resp.Data.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Data.Tokens.RefreshToken)

	// The stored hash must never appear in the response body.
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegister_ValidationError(t *testing.T) {
	f := newRouterFixture(t)

	req := jsonRequest(t, http.MethodPost, "/api/v1/users", RegisterRequest{
		Username: "marisol",
		LoginID:  "m",
		Password: "short",
	})
	rec := f.do(req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "login_id")
	assert.Contains(t, resp.Error.Fields, "password")
	f.userRepo.AssertNotCalled(t, "Create")
}

func TestRegister_WrongContentType(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader([]byte("username=x")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := f.do(req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestLogin_Success(t *testing.T) {
	f := newRouterFixture(t)
	user := sampleUser(t, f.hasher, "Sunrise77")
	f.userRepo.On("GetByLoginID", mock.Anything, user.LoginID).Return(user, nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/users/login", LoginRequest{
		LoginID:  user.LoginID,
		Password: "Sunrise77",
	})
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.AuthResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "bearer", resp.Data.Tokens.TokenType)
	assert.Equal(t, int64(testAccessTTL.Seconds()), resp.Data.Tokens.ExpiresIn)
	assert.Equal(t, int64(testRefreshTTL.Seconds()), resp.Data.Tokens.RefreshExpiresIn)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newRouterFixture(t)
	user := sampleUser(t, f.hasher, "Sunrise77")
	f.userRepo.On("GetByLoginID", mock.Anything, user.LoginID).Return(user, nil)

	req := jsonRequest(t, http.MethodPost, "/api/v1/users/login", LoginRequest{
		LoginID:  user.LoginID,
		Password: "Moonset88",
	})
	rec := f.do(req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "invalid login ID or password", resp.Error.Message)
}

func TestLogin_UnknownLoginID_SameError(t *testing.T) {
	f := newRouterFixture(t)
	f.userRepo.On("GetByLoginID", mock.Anything, "ghost@example.com").
		Return(nil, apperrors.ErrNotFound)

	req := jsonRequest(t, http.MethodPost, "/api/v1/users/login", LoginRequest{
		LoginID:  "ghost@example.com",
		Password: "Whatever11",
	})
	rec := f.do(req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "invalid login ID or password", resp.Error.Message)
}

func TestRefresh_Success(t *testing.T) {
	f := newRouterFixture(t)
	user := sampleUser(t, f.hasher, "Sunrise77")
	f.userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	refresh, err := f.tokens.IssueRefreshToken(user.ID, []string{"users"})
	require.NoError(t, err)

	req := jsonRequest(t, http.MethodPost, "/api/v1/users/refresh", RefreshRequest{RefreshToken: refresh})
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.AuthResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Data.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Data.Tokens.RefreshToken)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	f := newRouterFixture(t)
	access := f.accessTokenFor(t, 7)

	req := jsonRequest(t, http.MethodPost, "/api/v1/users/refresh", RefreshRequest{RefreshToken: access})
	rec := f.do(req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "invalid token type", resp.Error.Message)
	f.userRepo.AssertNotCalled(t, "GetByID")
}

func TestProtectedRoute_ExpiredToken(t *testing.T) {
	f := newRouterFixture(t)

	// A manager with a negative access lifetime mints already-expired tokens
	// signed with the same secret.
	expiredTokens, err := auth.NewManager("test-secret-key-for-handler-tests", "HS256", -time.Minute, time.Hour)
	require.NoError(t, err)
	expired, err := expiredTokens.IssueAccessToken(7, []string{"users"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec := f.do(req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.Contains(t, rec.Body.String(), "could not validate credentials")
}

func TestProtectedRoute_DeletedUserToken(t *testing.T) {
	f := newRouterFixture(t)

	// Token is valid but the account behind it no longer exists. The
	// response must be the generic 401, not a 404.
	f.userRepo.On("GetByID", mock.Anything, int64(7)).Return(nil, apperrors.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+f.accessTokenFor(t, 7))
	rec := f.do(req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not validate credentials")
	assert.NotContains(t, rec.Body.String(), "not found")
}

func TestProtectedRoute_RefreshTokenRejected(t *testing.T) {
	f := newRouterFixture(t)

	// A refresh token at an access-only route keeps its distinct rejection
	// message instead of the generic one.
	refresh, err := f.tokens.IssueRefreshToken(7, []string{"users"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := f.do(req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "invalid token type", resp.Error.Message)
	f.userRepo.AssertNotCalled(t, "GetByID")
}

func TestProtectedRoute_UserLookupFailure(t *testing.T) {
	f := newRouterFixture(t)

	// A storage failure during identity resolution is a server error, not a
	// credential rejection.
	f.userRepo.On("GetByID", mock.Anything, int64(7)).
		Return(nil, errors.New("connection refused"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+f.accessTokenFor(t, 7))
	rec := f.do(req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.NotContains(t, rec.Body.String(), "could not validate credentials")
}

func TestProtectedRoute_MissingToken(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := f.do(req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}
