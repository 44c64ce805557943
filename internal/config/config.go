package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Cache backend constants
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Rate limit store constants
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

type Config struct {
	// Server settings
	ServerAddr   string
	BaseURL      string
	IsProduction bool

	// Session settings
	SessionSecret string
	SessionMaxAge int // seconds

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string // Database connection string (DSN or path)

	// Access guard
	GuardTimeout time.Duration // Bound on session/profile lookups per resolution

	// Telemetry (access event sink)
	TelemetryEnabled    bool
	TelemetryBufferSize int
	TelemetryRetention  int // days, 0 disables cleanup

	// Metrics
	MetricsEnabled bool
	MetricsToken   string

	// Cache (public concept listing)
	CacheBackend string // "memory" or "redis"
	CacheTTL     time.Duration

	// Redis (cache and distributed rate limiting)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitStore    string // "memory" or "redis"
	LoginRateLimit    int    // requests per minute
	SearchRateLimit   int    // requests per minute
	InviteCodeTTL     time.Duration
	SearchResultLimit int
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	// Determine database driver and DSN
	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", "burburiuok.db")
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":8080"),
		BaseURL:      getEnv("BASE_URL", "http://localhost:8080"),
		IsProduction: getEnvBool("PRODUCTION", false),

		SessionSecret: getEnv("SESSION_SECRET", "session-secret-change-in-production"),
		SessionMaxAge: getEnvInt("SESSION_MAX_AGE", 86400*7),

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,

		GuardTimeout: getEnvDuration("GUARD_TIMEOUT", 5*time.Second),

		TelemetryEnabled:    getEnvBool("TELEMETRY_ENABLED", true),
		TelemetryBufferSize: getEnvInt("TELEMETRY_BUFFER_SIZE", 1000),
		TelemetryRetention:  getEnvInt("TELEMETRY_RETENTION_DAYS", 90),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		MetricsToken:   getEnv("METRICS_TOKEN", ""),

		CacheBackend: getEnv("CACHE_BACKEND", CacheBackendMemory),
		CacheTTL:     getEnvDuration("CACHE_TTL", 5*time.Minute),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitEnabled:  getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitStore:    getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		LoginRateLimit:    getEnvInt("LOGIN_RATE_LIMIT", 10),
		SearchRateLimit:   getEnvInt("SEARCH_RATE_LIMIT", 60),
		InviteCodeTTL:     getEnvDuration("INVITE_CODE_TTL", 72*time.Hour),
		SearchResultLimit: getEnvInt("SEARCH_RESULT_LIMIT", 25),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
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
