package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/daybookhq/daybook/pkg/config"
)

// defaultPasswordSecret is the placeholder that ships in example env files.
// It is rejected outside development so deployments cannot silently run with
// a known pepper.
const defaultPasswordSecret = "NOT_SET"

// Config holds all configuration for the daybook server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8000"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"daybook"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"daybook_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"daybook"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// JWT
	JWTSecret            string `env:"JWT_SECRET_KEY" envDefault:"change-this-to-a-secure-secret"`
	JWTAlgorithm         string `env:"JWT_ALGORITHM" envDefault:"HS256"`
	AccessExpireMinutes  int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"60"`
	RefreshExpireMinutes int    `env:"REFRESH_TOKEN_EXPIRE_MINUTES" envDefault:"20160"`

	// Password hashing
	PasswordSalt   string `env:"PASSWORD_SALT" envDefault:""`
	PasswordSecret string `env:"PASSWORD_SECRET" envDefault:"NOT_SET"`

	// Image storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"local"`
	StoragePath    string `env:"STORAGE_PATH" envDefault:"./storage"`
	StorageBaseURL string `env:"STORAGE_BASE_URL" envDefault:"/storage"`

	// S3 (used when STORAGE_BACKEND=s3)
	S3Bucket    string `env:"S3_BUCKET" envDefault:""`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT" envDefault:""`
	S3AccessKey string `env:"S3_ACCESS_KEY" envDefault:""`
	S3SecretKey string `env:"S3_SECRET_KEY" envDefault:""`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.JWTAlgorithm != "HS256" && cfg.JWTAlgorithm != "HS384" && cfg.JWTAlgorithm != "HS512" {
		return nil, fmt.Errorf("unsupported JWT algorithm: %q", cfg.JWTAlgorithm)
	}
	if cfg.AccessExpireMinutes < 1 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", cfg.AccessExpireMinutes)
	}
	if cfg.RefreshExpireMinutes <= cfg.AccessExpireMinutes {
		return nil, fmt.Errorf("REFRESH_TOKEN_EXPIRE_MINUTES (%d) must exceed ACCESS_TOKEN_EXPIRE_MINUTES (%d)",
			cfg.RefreshExpireMinutes, cfg.AccessExpireMinutes)
	}
	if cfg.StorageBackend != "local" && cfg.StorageBackend != "s3" && cfg.StorageBackend != "memory" {
		return nil, fmt.Errorf("unsupported storage backend: %q", cfg.StorageBackend)
	}
	if cfg.StorageBackend == "s3" && cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required when STORAGE_BACKEND=s3")
	}

	// In non-development environments, require explicitly set strong secrets.
	if cfg.Environment != "development" {
		if cfg.JWTSecret == "change-this-to-a-secure-secret" {
			return nil, fmt.Errorf("JWT_SECRET_KEY must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters long, got %d", len(cfg.JWTSecret))
		}
		if cfg.PasswordSecret == defaultPasswordSecret {
			return nil, fmt.Errorf("PASSWORD_SECRET must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
	}

	return cfg, nil
}

// AccessTokenTTL returns the access token lifetime.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessExpireMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime.
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshExpireMinutes) * time.Minute
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}
