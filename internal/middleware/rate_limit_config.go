package middleware

import (
	"log/slog"
	"strings"

	"inventory-dashboard-api/internal/config"
)

// ParseRateLimitConfig parses rate limiting configuration from the config struct
func ParseRateLimitConfig(cfg *config.Config) RateLimitConfig {
	rateLimitConfig := RateLimitConfig{
		Enabled:                config.ParseBool(cfg.RateLimitEnabled, true),
		Type:                   parseRateLimitType(cfg.RateLimitType),
		RequestsPerMinute:      config.ParseInt(cfg.RateLimitRequestsPerMinute, 300),
		WindowMinutes:          config.ParseInt(cfg.RateLimitWindowMinutes, 1),
		WriteRequestsPerMinute: config.ParseInt(cfg.RateLimitWriteRequestsPerMinute, 60),
	}

	if rateLimitConfig.RequestsPerMinute <= 0 {
		slog.Warn("Invalid rate limit requests per minute, using default",
			"configured", cfg.RateLimitRequestsPerMinute, "default", 300)
		rateLimitConfig.RequestsPerMinute = 300
	}

	if rateLimitConfig.WindowMinutes <= 0 {
		slog.Warn("Invalid rate limit window minutes, using default",
			"configured", cfg.RateLimitWindowMinutes, "default", 1)
		rateLimitConfig.WindowMinutes = 1
	}

	if rateLimitConfig.WriteRequestsPerMinute <= 0 {
		slog.Warn("Invalid write rate limit requests per minute, using default",
			"configured", cfg.RateLimitWriteRequestsPerMinute, "default", 60)
		rateLimitConfig.WriteRequestsPerMinute = 60
	}

	slog.Info("Rate limiting configuration parsed",
		"enabled", rateLimitConfig.Enabled,
		"type", rateLimitConfig.Type,
		"requests_per_minute", rateLimitConfig.RequestsPerMinute,
		"window_minutes", rateLimitConfig.WindowMinutes,
		"write_requests_per_minute", rateLimitConfig.WriteRequestsPerMinute)

	return rateLimitConfig
}

func parseRateLimitType(value string) RateLimitType {
	if value == "" {
		return RateLimitTypeIP
	}

	switch strings.ToLower(value) {
	case "ip":
		return RateLimitTypeIP
	case "global":
		return RateLimitTypeGlobal
	case "both":
		return RateLimitTypeBoth
	default:
		slog.Warn("Invalid rate limit type, using default",
			"value", value, "default", "ip")
		return RateLimitTypeIP
	}
}
