package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/daybookhq/daybook/internal/auth"
	"github.com/daybookhq/daybook/internal/cache"
	"github.com/daybookhq/daybook/internal/domain"
	"github.com/daybookhq/daybook/internal/event"
	"github.com/daybookhq/daybook/internal/service"
	memorystorage "github.com/daybookhq/daybook/internal/storage/memory"
	"github.com/daybookhq/daybook/pkg/health"
	"github.com/daybookhq/daybook/pkg/httputil"
	pkgkafka "github.com/daybookhq/daybook/pkg/kafka"
	"github.com/daybookhq/daybook/pkg/pagination"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByLoginID(ctx context.Context, loginID string) (*domain.User, error) {
	args := m.Called(ctx, loginID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *mockUserRepo) UpdateUsername(ctx context.Context, id int64, username string) error {
	args := m.Called(ctx, id, username)
	return args.Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockPostRepo struct {
	mock.Mock
}

func (m *mockPostRepo) Create(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockPostRepo) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *mockPostRepo) ListByAuthor(ctx context.Context, authorID int64, params pagination.Params) ([]domain.Post, int, error) {
	args := m.Called(ctx, authorID, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Post), args.Int(1), args.Error(2)
}

func (m *mockPostRepo) Update(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockPostRepo) SetImageURL(ctx context.Context, id int64, imageURL string) error {
	args := m.Called(ctx, id, imageURL)
	return args.Error(0)
}

func (m *mockPostRepo) Delete(ctx context.Context, id int64, authorID int64) error {
	args := m.Called(ctx, id, authorID)
	return args.Error(0)
}

func (m *mockPostRepo) Calendar(ctx context.Context, authorID int64) ([]domain.CalendarDay, error) {
	args := m.Called(ctx, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CalendarDay), args.Error(1)
}

type mockQuoteRepo struct {
	mock.Mock
}

func (m *mockQuoteRepo) Random(ctx context.Context) (*domain.Quote, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *mockQuoteRepo) GetByID(ctx context.Context, id int64) (*domain.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *mockQuoteRepo) Bookmark(ctx context.Context, userID, quoteID int64) error {
	args := m.Called(ctx, userID, quoteID)
	return args.Error(0)
}

func (m *mockQuoteRepo) Unbookmark(ctx context.Context, userID, quoteID int64) error {
	args := m.Called(ctx, userID, quoteID)
	return args.Error(0)
}

func (m *mockQuoteRepo) ListBookmarked(ctx context.Context, userID int64) ([]domain.Quote, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Quote), args.Error(1)
}

type mockQuestionRepo struct {
	mock.Mock
}

func (m *mockQuestionRepo) Random(ctx context.Context) (*domain.Question, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Question), args.Error(1)
}

func (m *mockQuestionRepo) GetByID(ctx context.Context, id int64) (*domain.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Question), args.Error(1)
}

// ============================================================================
// Test Fixture
// ============================================================================

const (
	testAccessTTL  = 60 * time.Minute
	testRefreshTTL = 14 * 24 * time.Hour
)

type routerFixture struct {
	router    http.Handler
	userRepo  *mockUserRepo
	postRepo  *mockPostRepo
	quoteRepo *mockQuoteRepo
	qRepo     *mockQuestionRepo
	hasher    *auth.Hasher
	tokens    *auth.Manager
	images    *memorystorage.Storage
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEventProducer() *event.Producer {
	logger := testLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:19092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
}

// newRouterFixture wires the full production router over mock repositories
// with a real token manager and hasher.
func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	logger := testLogger()
	producer := testEventProducer()

	tokens, err := auth.NewManager("test-secret-key-for-handler-tests", "HS256", testAccessTTL, testRefreshTTL)
	require.NoError(t, err)
	hasher := auth.NewHasher("test-salt", "test-pepper")

	userRepo := new(mockUserRepo)
	postRepo := new(mockPostRepo)
	quoteRepo := new(mockQuoteRepo)
	questionRepo := new(mockQuestionRepo)

	resolver := auth.NewResolver(tokens, userRepo)
	images := memorystorage.New("/storage")

	users := service.NewUserService(userRepo, hasher, tokens, resolver, producer, logger)
	posts := service.NewPostService(postRepo, images, producer, logger)
	quotes := service.NewQuoteService(quoteRepo, logger)
	questions := service.NewQuestionService(questionRepo, cache.NewMemory(), logger)

	router := NewRouter(RouterConfig{
		Users:     users,
		Posts:     posts,
		Quotes:    quotes,
		Questions: questions,
		Resolver:  resolver,
		Health:    health.NewHandler(),
		Logger:    logger,
		CORS:      CORSConfig{AllowedOrigins: []string{"*"}, Environment: "development"},
	})

	return &routerFixture{
		router:    router,
		userRepo:  userRepo,
		postRepo:  postRepo,
		quoteRepo: quoteRepo,
		qRepo:     questionRepo,
		hasher:    hasher,
		tokens:    tokens,
		images:    images,
	}
}

func (f *routerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// accessTokenFor issues a valid access token for the given user ID.
func (f *routerFixture) accessTokenFor(t *testing.T, userID int64) string {
	t.Helper()
	token, err := f.tokens.IssueAccessToken(userID, []string{"users"})
	require.NoError(t, err)
	return token
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func sampleUser(t *testing.T, hasher *auth.Hasher, password string) *domain.User {
	t.Helper()
	hash, err := hasher.Hash(password)
	require.NoError(t, err)
	return &domain.User{
		ID:           7,
		Username:     "marisol",
		LoginID:      "marisol@example.com",
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
}
