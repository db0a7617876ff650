// Package config loads process settings from the environment. A .env file
// in the working directory is read first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by the server, worker and seed commands.
type Config struct {
	Env      string
	LogLevel string

	DatabaseURL string
	DBMaxConns  int
	DBMinConns  int

	HTTPAddr        string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// RedisAddr is optional; the dashboard is cached in process without it.
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	DashboardCacheTTL time.Duration

	IdempotencyEnabled bool
	IdempotencyTTL     time.Duration

	AllocatorPageSize int
	ExpiryWarningDays int
	NearStockMargin   int

	WorkerInterval time.Duration
}

// Load reads the configuration. DATABASE_URL is required.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 10),
		DBMinConns:  getEnvInt("DB_MIN_CONNS", 2),

		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "*")),

		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		DashboardCacheTTL: getEnvDuration("DASHBOARD_CACHE_TTL", 2*time.Minute),

		IdempotencyEnabled: getEnvBool("IDEMPOTENCY_ENABLED", true),
		IdempotencyTTL:     getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		AllocatorPageSize: getEnvInt("ALLOCATOR_PAGE_SIZE", 200),
		ExpiryWarningDays: getEnvInt("EXPIRY_WARNING_DAYS", 30),
		NearStockMargin:   getEnvInt("NEAR_STOCK_MARGIN", 5),

		WorkerInterval: getEnvDuration("WORKER_INTERVAL", time.Hour),
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("required environment variable DATABASE_URL not set")
	}
	return cfg, nil
}

// Development reports whether APP_ENV is development.
func (c *Config) Development() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
