package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/daybookhq/daybook/internal/auth"
	"github.com/daybookhq/daybook/internal/service"
	"github.com/daybookhq/daybook/pkg/health"
	"github.com/daybookhq/daybook/pkg/middleware"
)

// scopeUsers is the scope granted to every issued token; all authenticated
// routes require it.
const scopeUsers = "users"

// RouterConfig carries the dependencies of the HTTP router.
type RouterConfig struct {
	Users     *service.UserService
	Posts     *service.PostService
	Quotes    *service.QuoteService
	Questions *service.QuestionService
	Resolver  *auth.Resolver
	Health    *health.Handler
	Logger    *slog.Logger
	CORS      CORSConfig

	// StaticDir, when non-empty, is served under /storage/ for the local
	// image backend.
	StaticDir string
}

// NewRouter creates a chi router with all diary routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("daybook"))

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	if cfg.StaticDir != "" {
		fs := http.StripPrefix("/storage/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.With(middleware.CacheControl(86400)).Get("/storage/*", fs.ServeHTTP)
	}

	// Token validator that bridges to the internal resolver.
	tokenValidator := func(ctx context.Context, token string) (*middleware.Identity, error) {
		identity, err := cfg.Resolver.Resolve(ctx, token, auth.KindAccess)
		if err != nil {
			return nil, err
		}
		return &middleware.Identity{
			UserID: identity.User.ID,
			Scopes: identity.Scopes,
		}, nil
	}

	authHandler := NewAuthHandler(cfg.Users, cfg.Logger)
	userHandler := NewUserHandler(cfg.Users, cfg.Posts, cfg.Logger)
	postHandler := NewPostHandler(cfg.Posts, cfg.Logger)
	quoteHandler := NewQuoteHandler(cfg.Quotes, cfg.Logger)
	questionHandler := NewQuestionHandler(cfg.Questions, cfg.Logger)

	// Account creation and token endpoints (public)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)

		// Authenticated account endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequireScope(scopeUsers))

			r.Get("/me", userHandler.GetProfile)
			r.Put("/me/password", userHandler.ChangePassword)
			r.Put("/me/username", userHandler.ChangeUsername)
			r.Delete("/me", userHandler.DeleteAccount)
			r.Get("/calendar", userHandler.Calendar)
		})
	})

	// Diary entries (auth required)
	r.Route("/api/v1/posts", func(r chi.Router) {
		r.Use(middleware.Auth(tokenValidator))
		r.Use(middleware.RequireScope(scopeUsers))

		r.Get("/", postHandler.List)
		r.With(ContentTypeJSON).Post("/", postHandler.Create)
		r.Get("/{id}", postHandler.Get)
		r.With(ContentTypeJSON).Put("/{id}", postHandler.Update)
		r.Delete("/{id}", postHandler.Delete)
		r.Put("/{id}/image", postHandler.UploadImage)
	})

	// Quotes and bookmarks (auth required)
	r.Route("/api/v1/quotes", func(r chi.Router) {
		r.Use(middleware.Auth(tokenValidator))
		r.Use(middleware.RequireScope(scopeUsers))

		r.With(middleware.CacheControl(60)).Get("/random", quoteHandler.Random)
		r.Get("/bookmarks", quoteHandler.Bookmarks)
		r.Post("/{id}/bookmark", quoteHandler.Bookmark)
		r.Delete("/{id}/bookmark", quoteHandler.Unbookmark)
	})

	// Writing prompts (auth required)
	r.Route("/api/v1/questions", func(r chi.Router) {
		r.Use(middleware.Auth(tokenValidator))
		r.Use(middleware.RequireScope(scopeUsers))

		r.Get("/random", questionHandler.Random)
		r.With(middleware.CacheControl(300)).Get("/today", questionHandler.Today)
	})

	return r
}
