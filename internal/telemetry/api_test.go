package telemetry

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEndpointFromPath(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"/products", "/products"},
		{"/products/", "/products"},
		{"/products/12", "/products/{id}"},
		{"/warehouses/3", "/warehouses/{id}"},
		{"/stock", "/stock"},
		{"/transfers/7", "/transfers/{id}"},
		{"/alerts", "/alerts"},
		{"/dashboard", "/dashboard"},
		{"/events", "/events"},
		{"/health", "/health"},
		{"/reports/inventory.xlsx", "/reports/inventory.xlsx"},
		{"/reports/other.csv", "other"},
		{"/products/12/history", "other"},
		{"/", "/"},
		{"/unknown/path", "other"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			// Act
			result := GetEndpointFromPath(tc.input)

			// Assert
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestNormalizeClientIP(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"", "unknown"},
		{"not-an-ip", "invalid"},
		{"127.0.0.1", "localhost"},
		{"::1", "localhost"},
		{"10.1.2.3", "internal"},
		{"192.168.0.10", "internal"},
		{"169.254.1.1", "internal"},
		{"8.8.8.8", "external"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			// Act
			result := NormalizeClientIP(tc.input)

			// Assert
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestCategorizeStatus(t *testing.T) {
	testCases := []struct {
		status   int
		expected string
	}{
		{http.StatusBadRequest, "bad_request"},
		{http.StatusNotFound, "not_found"},
		{http.StatusMethodNotAllowed, "method_not_allowed"},
		{http.StatusTooManyRequests, "rate_limited"},
		{http.StatusServiceUnavailable, "unavailable"},
		{http.StatusInternalServerError, "internal_error"},
		{http.StatusTeapot, "other"},
	}

	for _, tc := range testCases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			// Act & Assert
			assert.Equal(t, tc.expected, categorizeStatus(tc.status))
		})
	}
}
