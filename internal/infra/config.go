package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CounterStorePostgres = "postgres"
	CounterStoreRedis    = "redis"

	DemoStoreFile   = "file"
	DemoStoreSQLite = "sqlite"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	CounterStore       string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	JWTIssuer          string
	DemoStore          string
	DemoStoragePath    string
	GeoIPDBPath        string
	CORSAllowedOrigins []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	Quota              QuotaConfig
}

// QuotaConfig carries the tunables of the usage quota pipeline.
type QuotaConfig struct {
	FreeLimit        int
	MaxRetries       int
	IncrementTimeout time.Duration
	BackoffBase      time.Duration
	BackoffMax       time.Duration
}

// LoadDotEnv reads .env files when present. Missing files are not an error.
func LoadDotEnv() {
	_ = godotenv.Load(".env", ".env.local")
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		CounterStore:       strings.ToLower(getEnv("COUNTER_STORE", CounterStorePostgres)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTIssuer:          getEnv("JWT_ISSUER", "marketdesk"),
		DemoStore:          strings.ToLower(getEnv("DEMO_STORE", DemoStoreFile)),
		DemoStoragePath:    getEnv("DEMO_STORAGE_PATH", "./storage/demo"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		Quota: QuotaConfig{
			FreeLimit:        getEnvInt("QUOTA_FREE_LIMIT", 5),
			MaxRetries:       getEnvInt("QUOTA_MAX_RETRIES", 3),
			IncrementTimeout: time.Second * time.Duration(getEnvInt("QUOTA_INCREMENT_TIMEOUT_SECONDS", 10)),
			BackoffBase:      time.Millisecond * time.Duration(getEnvInt("QUOTA_BACKOFF_BASE_MS", 1000)),
			BackoffMax:       time.Millisecond * time.Duration(getEnvInt("QUOTA_BACKOFF_MAX_MS", 5000)),
		},
	}

	switch cfg.CounterStore {
	case CounterStorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	case CounterStoreRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required")
		}
	default:
		return nil, fmt.Errorf("unsupported COUNTER_STORE %q", cfg.CounterStore)
	}

	switch cfg.DemoStore {
	case DemoStoreFile, DemoStoreSQLite:
	default:
		return nil, fmt.Errorf("unsupported DEMO_STORE %q", cfg.DemoStore)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.Quota.FreeLimit <= 0 {
		return nil, fmt.Errorf("QUOTA_FREE_LIMIT must be positive")
	}
	if cfg.Quota.MaxRetries < 0 {
		cfg.Quota.MaxRetries = 0
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
