package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseBool(t *testing.T) {
	testCases := []struct {
		name         string
		value        string
		defaultValue bool
		expected     bool
	}{
		{"empty uses default", "", true, true},
		{"true", "true", false, true},
		{"yes", "YES", false, true},
		{"enabled", "enabled", false, true},
		{"false", "false", true, false},
		{"off", "off", true, false},
		{"invalid uses default", "maybe", true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act & Assert
			assert.Equal(t, tc.expected, ParseBool(tc.value, tc.defaultValue))
		})
	}
}

func TestParseInt(t *testing.T) {
	testCases := []struct {
		name     string
		value    string
		expected int
	}{
		{"empty uses default", "", 25},
		{"valid", "100", 100},
		{"negative is passed through", "-3", -3},
		{"invalid uses default", "ten", 25},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act & Assert
			assert.Equal(t, tc.expected, ParseInt(tc.value, 25))
		})
	}
}

func TestParseDuration(t *testing.T) {
	testCases := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{"empty uses default", "", time.Minute},
		{"seconds", "30s", 30 * time.Second},
		{"hours", "1h", time.Hour},
		{"zero uses default", "0s", time.Minute},
		{"negative uses default", "-5m", time.Minute},
		{"invalid uses default", "soon", time.Minute},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act & Assert
			assert.Equal(t, tc.expected, ParseDuration(tc.value, time.Minute))
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	// Arrange
	for _, key := range []string{"PORT", "STORAGE_DRIVER", "DATA_DIR", "ENVIRONMENT", "RATE_LIMIT_TYPE", "METRICS_EXPORTER"} {
		t.Setenv(key, "")
	}

	// Act
	cfg := LoadConfig()

	// Assert
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageJSON, cfg.StorageDriver)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "ip", cfg.RateLimitType)
	assert.Equal(t, "scraper", cfg.MetricsExporter)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	// Arrange
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_DRIVER", StoragePostgres)
	t.Setenv("DATABASE_DSN", "postgres://inventory@localhost/inventory")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("TRANSFER_AUTO_COMPLETE", "true")

	// Act
	cfg := LoadConfig()

	// Assert
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, "postgres://inventory@localhost/inventory", cfg.DatabaseDSN)
	assert.Equal(t, "true", cfg.TransferAutoComplete)
	assert.False(t, cfg.IsDevelopment())
}
