package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"inventory-dashboard-api/internal/utils"
)

// Storage drivers
const (
	StorageJSON     = "json"
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	Port                            string
	LogLevel                        string
	LogFormat                       string
	Environment                     string
	StorageDriver                   string
	DataDir                         string
	DatabaseDSN                     string
	DBMaxOpenConns                  string
	DBMaxIdleConns                  string
	DBConnMaxLifetime               string
	TransferAutoComplete            string
	IdempotencyCacheTTL             string
	IdempotencyCacheCleanupInterval string
	DashboardCacheTTL               string
	MaxEventsInQueue                string
	EventsFilePath                  string
	RateLimitEnabled                string
	RateLimitType                   string
	RateLimitRequestsPerMinute      string
	RateLimitWriteRequestsPerMinute string
	RateLimitWindowMinutes          string
	MetricsExporter                 string
	MetricsPort                     string
	ShutdownTimeout                 string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() *Config {
	// Existing environment variables win over .env entries
	if err := godotenv.Load(); err != nil {
		slog.Warn("Could not load .env file, continuing with system environment variables only", "error", err)
	} else {
		slog.Info("Successfully loaded .env file")
	}

	cfg := &Config{
		Port:                            getEnvWithDefault("PORT", "8080"),
		LogLevel:                        getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat:                       getEnvWithDefault("LOG_FORMAT", "text"),
		Environment:                     getEnvWithDefault("ENVIRONMENT", "development"),
		StorageDriver:                   getEnvWithDefault("STORAGE_DRIVER", StorageJSON),
		DataDir:                         getEnvWithDefault("DATA_DIR", "./data"),
		DatabaseDSN:                     getEnvWithDefault("DATABASE_DSN", ""),
		DBMaxOpenConns:                  getEnvWithDefault("DB_MAX_OPEN_CONNS", "25"),
		DBMaxIdleConns:                  getEnvWithDefault("DB_MAX_IDLE_CONNS", "5"),
		DBConnMaxLifetime:               getEnvWithDefault("DB_CONN_MAX_LIFETIME", "1h"),
		TransferAutoComplete:            getEnvWithDefault("TRANSFER_AUTO_COMPLETE", "false"),
		IdempotencyCacheTTL:             getEnvWithDefault("IDEMPOTENCY_CACHE_TTL", "10m"),
		IdempotencyCacheCleanupInterval: getEnvWithDefault("IDEMPOTENCY_CACHE_CLEANUP_INTERVAL", "1m"),
		DashboardCacheTTL:               getEnvWithDefault("DASHBOARD_CACHE_TTL", "5s"),
		MaxEventsInQueue:                getEnvWithDefault("MAX_EVENTS_IN_QUEUE", "10000"),
		EventsFilePath:                  getEnvWithDefault("EVENTS_FILE_PATH", "./data/events.json"),
		RateLimitEnabled:                getEnvWithDefault("RATE_LIMIT_ENABLED", "true"),
		RateLimitType:                   getEnvWithDefault("RATE_LIMIT_TYPE", "ip"),
		RateLimitRequestsPerMinute:      getEnvWithDefault("RATE_LIMIT_REQUESTS_PER_MINUTE", "300"),
		RateLimitWriteRequestsPerMinute: getEnvWithDefault("RATE_LIMIT_WRITE_REQUESTS_PER_MINUTE", "60"),
		RateLimitWindowMinutes:          getEnvWithDefault("RATE_LIMIT_WINDOW_MINUTES", "1"),
		MetricsExporter:                 getEnvWithDefault("METRICS_EXPORTER", "scraper"),
		MetricsPort:                     getEnvWithDefault("METRICS_PORT", "9080"),
		ShutdownTimeout:                 getEnvWithDefault("SHUTDOWN_TIMEOUT", "30s"),
	}

	utils.SetupLogging(cfg.LogLevel, cfg.LogFormat)

	slog.Info("Configuration loaded",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"log_level", cfg.LogLevel,
		"log_format", cfg.LogFormat,
		"storage_driver", cfg.StorageDriver,
		"data_dir", cfg.DataDir,
		"database_dsn_set", cfg.DatabaseDSN != "",
		"transfer_auto_complete", cfg.TransferAutoComplete,
		"idempotency_cache_ttl", cfg.IdempotencyCacheTTL,
		"dashboard_cache_ttl", cfg.DashboardCacheTTL,
		"max_events_in_queue", cfg.MaxEventsInQueue,
		"events_file_path", cfg.EventsFilePath,
		"metrics_exporter", cfg.MetricsExporter,
		"shutdown_timeout", cfg.ShutdownTimeout)

	return cfg
}

// getEnvWithDefault gets an environment variable with a default fallback
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// ParseBool parses value, logging and returning defaultValue when it is not a recognised boolean
func ParseBool(value string, defaultValue bool) bool {
	if value == "" {
		return defaultValue
	}

	switch strings.ToLower(value) {
	case "true", "1", "yes", "on", "enabled":
		return true
	case "false", "0", "no", "off", "disabled":
		return false
	default:
		slog.Warn("Invalid boolean value, using default",
			"value", value, "default", defaultValue)
		return defaultValue
	}
}

// ParseInt parses value, logging and returning defaultValue when it is not an integer
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("Invalid integer value, using default",
			"value", value, "default", defaultValue, "error", err)
		return defaultValue
	}
	return parsed
}

// ParseDuration parses value, logging and returning defaultValue when it is not a valid positive duration
func ParseDuration(value string, defaultValue time.Duration) time.Duration {
	if value == "" {
		return defaultValue
	}

	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		slog.Warn("Invalid duration value, using default",
			"value", value, "default", defaultValue.String(), "error", err)
		return defaultValue
	}
	return parsed
}
