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

func TestRandomQuestion_Success(t *testing.T) {
	f, token := authedFixture(t)

	f.qRepo.On("Random", mock.Anything).Return(&domain.Question{
		ID:      5,
		Message: "What surprised you today?",
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/questions/random", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "What surprised you today?")
}

func TestTodayQuestion_StableAcrossRequests(t *testing.T) {
	f, token := authedFixture(t)

	// The repository should be drawn from once; the second request must be
	// served from the day's pinned prompt.
	f.qRepo.On("Random", mock.Anything).Return(&domain.Question{
		ID:      5,
		Message: "What surprised you today?",
	}, nil).Once()
	f.qRepo.On("GetByID", mock.Anything, int64(5)).Return(&domain.Question{
		ID:      5,
		Message: "What surprised you today?",
	}, nil)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/questions/today", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := f.do(req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"id":5`)
	}

	f.qRepo.AssertExpectations(t)
}
