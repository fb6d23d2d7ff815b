package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Environment        string
	ServerPort         int
	LogLevel           string
	CORSAllowedOrigins []string
	StaticDir          string
	SessionSecret      string

	Database DatabaseConfig

	RedisURL     string
	AMQPURL      string
	AMQPQueue    string
	OTLPEndpoint string

	FallbackFixtures string
	Store            StoreConfig

	StatsCacheTTL  time.Duration
	LoginRateLimit int
}

// DatabaseConfig selects the Postgres instance. URL wins over the discrete fields.
type DatabaseConfig struct {
	URL          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// StoreConfig tunes the persistence facade.
type StoreConfig struct {
	RetryAttempts           int
	RetryBackoff            time.Duration
	BreakerFailureThreshold int
	BreakerSuccessThreshold int
	BreakerOpenTimeout      time.Duration
}

// IsProduction reports whether cookies must be marked Secure.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first without overriding the real environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	ints := map[string]int{
		"SERVER_PORT":               8080,
		"DB_PORT":                   5432,
		"DB_MAX_OPEN_CONNS":         25,
		"DB_MAX_IDLE_CONNS":         5,
		"STORE_RETRY_ATTEMPTS":      2,
		"STORE_RETRY_BACKOFF_MS":    50,
		"BREAKER_FAILURE_THRESHOLD": 5,
		"BREAKER_SUCCESS_THRESHOLD": 2,
		"BREAKER_OPEN_SECONDS":      30,
		"STATS_CACHE_SECONDS":       30,
		"LOGIN_RATE_LIMIT":          10,
	}
	for key, def := range ints {
		v, err := strconv.Atoi(getEnv(key, strconv.Itoa(def)))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("invalid %s: must not be negative", key)
		}
		ints[key] = v
	}

	env := getEnv("ENVIRONMENT", "development")
	secret := getEnv("SESSION_SECRET", "")
	if secret == "" {
		if strings.EqualFold(env, "production") {
			return nil, fmt.Errorf("SESSION_SECRET is required in production")
		}
		secret = "workshop-dev-session-secret"
	}

	return &Config{
		Environment:        env,
		ServerPort:         ints["SERVER_PORT"],
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		StaticDir:          getEnv("STATIC_DIR", ""),
		SessionSecret:      secret,
		Database: DatabaseConfig{
			URL:          getEnv("DATABASE_URL", ""),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         ints["DB_PORT"],
			User:         getEnv("DB_USER", "workshop"),
			Password:     getEnv("DB_PASSWORD", "dev"),
			Name:         getEnv("DB_NAME", "workshop"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: ints["DB_MAX_OPEN_CONNS"],
			MaxIdleConns: ints["DB_MAX_IDLE_CONNS"],
		},
		RedisURL:         getEnv("REDIS_URL", ""),
		AMQPURL:          getEnv("AMQP_URL", ""),
		AMQPQueue:        getEnv("AMQP_QUEUE", "workshop.events"),
		OTLPEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		FallbackFixtures: getEnv("FALLBACK_FIXTURES", ""),
		Store: StoreConfig{
			RetryAttempts:           ints["STORE_RETRY_ATTEMPTS"],
			RetryBackoff:            time.Duration(ints["STORE_RETRY_BACKOFF_MS"]) * time.Millisecond,
			BreakerFailureThreshold: ints["BREAKER_FAILURE_THRESHOLD"],
			BreakerSuccessThreshold: ints["BREAKER_SUCCESS_THRESHOLD"],
			BreakerOpenTimeout:      time.Duration(ints["BREAKER_OPEN_SECONDS"]) * time.Second,
		},
		StatsCacheTTL:  time.Duration(ints["STATS_CACHE_SECONDS"]) * time.Second,
		LoginRateLimit: ints["LOGIN_RATE_LIMIT"],
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
