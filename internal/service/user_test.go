package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/daybookhq/daybook/pkg/errors"
	pkgkafka "github.com/daybookhq/daybook/pkg/kafka"

	"github.com/daybookhq/daybook/internal/auth"
	"github.com/daybookhq/daybook/internal/domain"
	"github.com/daybookhq/daybook/internal/event"
)

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByLoginID(ctx context.Context, loginID string) (*domain.User, error) {
	args := m.Called(ctx, loginID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *mockUserRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	args := m.Called(ctx, id, username)
	return args.Error(0)
}

func (m *mockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestTokenManager(t *testing.T) *auth.Manager {
	t.Helper()
	m, err := auth.NewManager("test-secret-key-for-testing-purposes", "HS256", time.Hour, 14*24*time.Hour)
	require.NoError(t, err)
	return m
}

func newTestEventProducer() *event.Producer {
	logger := newTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

var testHasher = auth.NewHasher("test-salt", "test-pepper")

func newTestUserService(t *testing.T, userRepo *mockUserRepository) *UserService {
	t.Helper()
	logger := newTestLogger()
	tokens := newTestTokenManager(t)
	resolver := auth.NewResolver(tokens, userRepo)
	return NewUserService(userRepo, testHasher, tokens, resolver, newTestEventProducer(), logger)
}

func hashForTest(t *testing.T, password string) string {
	t.Helper()
	h, err := testHasher.Hash(password)
	require.NoError(t, err)
	return h
}

// --- Register Tests ---

func TestRegister_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(t, userRepo)
	ctx := context.Background()

	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = 7
		}).
		Return(nil)

	resp, err := svc.Register(ctx, RegisterInput{
		Username: "ella",
		LoginID:  "ella@example.com",
		Password: "Sup3rSecret",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.User.ID)
	assert.NotEqual(t, "Sup3rSecret", resp.User.PasswordHash)
	assert.Equal(t, "bearer", resp.Tokens.TokenType)
	assert.Equal(t, int64(3600), resp.Tokens.ExpiresIn)
	userRepo.AssertExpectations(t)
}

func TestRegister_WeakPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(t, userRepo)

	cases := []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"}
	for _, password := range cases {
		_, err := svc.Register(context.Background(), RegisterInput{
			Username: "ella",
			LoginID:  "ella@example.com",
			Password: password,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "password %q should be rejected", password)
	}
	userRepo.AssertNotCalled(t, "Create")
}

func TestRegister_DuplicateLoginID(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(t, userRepo)
	ctx := context.Background()

	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Return(apperrors.AlreadyExists("user", "login_id", "ella@example.com"))

	_, err := svc.Register(ctx, RegisterInput{
		Username: "ella",
		LoginID:  "ella@example.com",
		Password: "Sup3rSecret",
	})

	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	userRepo.AssertExpectations(t)
}

// --- Login Tests ---

func TestLogin_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(t, userRepo)
	ctx := context.Background()

	user := &domain.User{
		ID:           7,
		Username:     "ella",
		LoginID:      "ella@example.com",
		PasswordHash: hashForTest(t, "Sup3rSecret"),
	}
	userRepo.On("GetByLoginID", ctx, "ella@example.com").Return(user, nil)

	resp, err := svc.Login(ctx, LoginInput{LoginID: "ella@example.com", Password: "Sup3rSecret"})

	require.NoError(t, err)
	assert.Equal(t, user, resp.User)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
	userRepo.AssertExpectations(t)
}

func TestLogin_UnknownLoginID(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(t, userRepo)
	ctx := context.Background()

	userRepo.On("GetByLoginID", ctx, "nobody@example.com").Return(nil, apperrors.ErrNotFound)

	_, err := svc.Login(ctx, LoginInput{LoginID: "nobody@example.com", Password: "Sup3rSecret"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	userRepo.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(t, userRepo)
	ctx := context.Background()

	user := &domain.User{ID: 7, LoginID: "ella@example.com", PasswordHash: hashForTest(t, "Sup3rSecret")}
	userRepo.On("GetByLoginID", ctx, "ella@example.com").Return(user, nil)

	_, err := svc.Login(ctx, LoginInput{LoginID: "ella@example.com", Password: "WrongPass1"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogin_SameMessageForUnknownUserAndWrongPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(t, userRepo)
	ctx := context.Background()

	user := &domain.User{ID: 7, LoginID: "known@example.com", PasswordHash: hashForTest(t, "Sup3rSecret")}
	userRepo.On("GetByLoginID", ctx, "known@example.com").Return(user, nil)
	userRepo.On("GetByLoginID", ctx, "unknown@example.com").Return(nil, apperrors.ErrNotFound)

	_, errWrongPassword := svc.Login(ctx, LoginInput{LoginID: "known@example.com", Password: "WrongPass1"})
	_, errUnknownUser := svc.Login(ctx, LoginInput{LoginID: "unknown@example.com", Password: "Sup3rSecret"})

	require.Error(t, errWrongPassword)
	require.Error(t, errUnknownUser)
	assert.Equal(t, errWrongPassword.Error(), errUnknownUser.Error())
}

func TestLogin_CorruptStoredHash(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(t, userRepo)
	ctx := context.Background()

	user := &domain.User{ID: 7, LoginID: "ella@example.com", PasswordHash: "corrupt"}
	userRepo.On("GetByLoginID", ctx, "ella@example.com").Return(user, nil)

	_, err := svc.Login(ctx, LoginInput{LoginID: "ella@example.com", Password: "Sup3rSecret"})

	// The client sees the generic failure, never the hash problem.
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

// --- Refresh Tests ---

func TestRefresh_Success_CarriesScopes(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(t, userRepo)
	ctx := context.Background()

	user := &domain.User{ID: 7, Username: "ella"}
	userRepo.On("GetByID", mock.Anything, int64(7)).Return(user, nil)

	refresh, err := svc.tokens.IssueRefreshToken(7, []string{"users", "extra"})
	require.NoError(t, err)

	resp, err := svc.Refresh(ctx, refresh)
	require.NoError(t, err)
	assert.Equal(t, user, resp.User)

	payload, err := svc.tokens.Decode(resp.Tokens.AccessToken, auth.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "extra"}, payload.Scopes)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(t, userRepo)
	ctx := context.Background()

	access, err := svc.tokens.IssueAccessToken(7, nil)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, access)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid token type")
	userRepo.AssertNotCalled(t, "GetByID")
}

func TestRefresh_DeletedUser(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(t, userRepo)
	ctx := context.Background()

	userRepo.On("GetByID", mock.Anything, int64(9)).Return(nil, apperrors.ErrNotFound)

	refresh, err := svc.tokens.IssueRefreshToken(9, nil)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, refresh)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

// --- ChangePassword Tests ---

func TestChangePassword_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(t, userRepo)
	ctx := context.Background()

	user := &domain.User{ID: 7, PasswordHash: hashForTest(t, "OldSecret1")}
	userRepo.On("GetByID", ctx, int64(7)).Return(user, nil)
	userRepo.On("UpdatePassword", ctx, int64(7), mock.AnythingOfType("string")).Return(nil)

	err := svc.ChangePassword(ctx, 7, "OldSecret1", "NewSecret2")
	assert.NoError(t, err)
	userRepo.AssertExpectations(t)
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(t, userRepo)
	ctx := context.Background()

	user := &domain.User{ID: 7, PasswordHash: hashForTest(t, "OldSecret1")}
	userRepo.On("GetByID", ctx, int64(7)).Return(user, nil)

	err := svc.ChangePassword(ctx, 7, "NotTheOld1", "NewSecret2")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	userRepo.AssertNotCalled(t, "UpdatePassword")
}

// --- DeleteAccount Tests ---

func TestDeleteAccount_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(t, userRepo)
	ctx := context.Background()

	user := &domain.User{ID: 7, PasswordHash: hashForTest(t, "Sup3rSecret")}
	userRepo.On("GetByID", ctx, int64(7)).Return(user, nil)
	userRepo.On("Delete", ctx, int64(7)).Return(nil)

	err := svc.DeleteAccount(ctx, 7, "Sup3rSecret")
	assert.NoError(t, err)
	userRepo.AssertExpectations(t)
}

func TestDeleteAccount_WrongPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestUserService(t, userRepo)
	ctx := context.Background()

	user := &domain.User{ID: 7, PasswordHash: hashForTest(t, "Sup3rSecret")}
	userRepo.On("GetByID", ctx, int64(7)).Return(user, nil)

	err := svc.DeleteAccount(ctx, 7, "WrongPass1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	userRepo.AssertNotCalled(t, "Delete")
}
