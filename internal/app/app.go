package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/daybookhq/daybook/internal/auth"
	"github.com/daybookhq/daybook/internal/cache"
	"github.com/daybookhq/daybook/internal/config"
	"github.com/daybookhq/daybook/internal/event"
	handler "github.com/daybookhq/daybook/internal/handler/http"
	"github.com/daybookhq/daybook/internal/repository/postgres"
	"github.com/daybookhq/daybook/internal/service"
	"github.com/daybookhq/daybook/internal/storage"
	localstorage "github.com/daybookhq/daybook/internal/storage/local"
	memorystorage "github.com/daybookhq/daybook/internal/storage/memory"
	s3storage "github.com/daybookhq/daybook/internal/storage/s3"
	"github.com/daybookhq/daybook/migrations"
	"github.com/daybookhq/daybook/pkg/database"
	"github.com/daybookhq/daybook/pkg/health"
	pkgkafka "github.com/daybookhq/daybook/pkg/kafka"
	"github.com/daybookhq/daybook/pkg/tracing"
)

// App wires together all dependencies and runs the diary server.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "daybook",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "daybook")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Redis backs the question-of-the-day pin. The diary works without it,
	// so a failed connection only downgrades that endpoint.
	var questionCache cache.Cache
	redisCfg := database.DefaultRedisConfig()
	redisCfg.Host = cfg.RedisHost
	redisCfg.Port = cfg.RedisPort
	redisCfg.Password = cfg.RedisPassword
	redisCfg.DB = cfg.RedisDB

	redisClient, err := database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		logger.Warn("redis unavailable, question of the day will not be pinned",
			slog.String("error", err.Error()),
		)
		questionCache = cache.NewMemory()
	} else {
		logger.Info("connected to Redis", slog.String("addr", redisCfg.Addr()))
		questionCache = cache.NewRedis(redisClient)
	}

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Image storage backend.
	images, staticDir, err := newImageStorage(ctx, cfg)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init image storage: %w", err)
	}
	logger.Info("image storage initialized", slog.String("backend", cfg.StorageBackend))

	// Build the dependency graph.
	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init token manager: %w", err)
	}
	hasher := auth.NewHasher(cfg.PasswordSalt, cfg.PasswordSecret)

	userRepo := postgres.NewUserRepository(pool)
	postRepo := postgres.NewPostRepository(pool)
	quoteRepo := postgres.NewQuoteRepository(pool)
	questionRepo := postgres.NewQuestionRepository(pool)

	resolver := auth.NewResolver(tokens, userRepo)
	eventProducer := event.NewProducer(producer, logger)

	userService := service.NewUserService(userRepo, hasher, tokens, resolver, eventProducer, logger)
	postService := service.NewPostService(postRepo, images, eventProducer, logger)
	quoteService := service.NewQuoteService(quoteRepo, logger)
	questionService := service.NewQuestionService(questionRepo, questionCache, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if redisClient != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	router := handler.NewRouter(handler.RouterConfig{
		Users:     userService,
		Posts:     postService,
		Quotes:    quoteService,
		Questions: questionService,
		Resolver:  resolver,
		Health:    healthHandler,
		Logger:    logger,
		CORS: handler.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Environment:    cfg.Environment,
		},
		StaticDir: staticDir,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redisClient:    redisClient,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// newImageStorage builds the configured storage backend. The returned
// staticDir is non-empty only for the local backend, which needs the HTTP
// server to expose the files itself.
func newImageStorage(ctx context.Context, cfg *config.Config) (storage.Storage, string, error) {
	switch cfg.StorageBackend {
	case "local":
		st, err := localstorage.New(cfg.StoragePath, cfg.StorageBaseURL)
		if err != nil {
			return nil, "", err
		}
		return st, cfg.StoragePath, nil
	case "s3":
		st, err := s3storage.New(ctx, s3storage.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, "", err
		}
		return st, "", nil
	case "memory":
		return memorystorage.New(cfg.StorageBaseURL), "", nil
	default:
		return nil, "", fmt.Errorf("unknown storage backend: %q", cfg.StorageBackend)
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components: the HTTP server drains first,
// then the tracer flushes spans from the drained requests, then the brokers
// and the pool close.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
