package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "inventory-dashboard-api"

// ApiTelemetry holds the instruments recorded for every API request
type ApiTelemetry struct {
	meter metric.Meter

	requestCounter    metric.Int64Counter
	errorCounter      metric.Int64Counter
	durationHistogram metric.Float64Histogram

	// domain counters
	transferCounter       metric.Int64Counter
	alertsGeneratedCount  metric.Int64Counter
	eventRetrievalCounter metric.Int64Counter
	reportCounter         metric.Int64Counter
}

// ApiMetrics contains the telemetry data for a request
type ApiMetrics struct {
	Method       string
	Endpoint     string
	StatusCode   int
	Duration     time.Duration
	ErrorMessage string
	// ClientIP is logged only; metrics use the normalized ClientIPType
	ClientIP     string
	ClientIPType string
	EventCount   int
	AlertCount   int
}

func NewApiTelemetry() *ApiTelemetry {
	return &ApiTelemetry{}
}

// InitializeTelemetry creates the instruments on the global meter provider
func (t *ApiTelemetry) InitializeTelemetry(ctx context.Context) error {
	slog.Info("Initializing API telemetry")

	t.meter = otel.Meter(meterName)

	var err error

	t.requestCounter, err = t.meter.Int64Counter(
		"inventory_api_requests_total",
		metric.WithDescription("Total number of API requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create request counter: %w", err)
	}

	t.errorCounter, err = t.meter.Int64Counter(
		"inventory_api_errors_total",
		metric.WithDescription("Total number of API requests answered with an error status"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create error counter: %w", err)
	}

	t.durationHistogram, err = t.meter.Float64Histogram(
		"inventory_api_request_duration_seconds",
		metric.WithDescription("Duration of API requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create duration histogram: %w", err)
	}

	t.transferCounter, err = t.meter.Int64Counter(
		"inventory_transfers_created_total",
		metric.WithDescription("Total number of stock transfers created"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create transfer counter: %w", err)
	}

	t.alertsGeneratedCount, err = t.meter.Int64Counter(
		"inventory_alerts_generated_total",
		metric.WithDescription("Total number of reorder alerts generated"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create alerts counter: %w", err)
	}

	t.eventRetrievalCounter, err = t.meter.Int64Counter(
		"inventory_events_retrieved_total",
		metric.WithDescription("Total number of change events returned to pollers"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create event retrieval counter: %w", err)
	}

	t.reportCounter, err = t.meter.Int64Counter(
		"inventory_reports_generated_total",
		metric.WithDescription("Total number of inventory workbooks downloaded"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create report counter: %w", err)
	}

	slog.Info("API telemetry initialized successfully")
	return nil
}

func baseAttributes(m ApiMetrics) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("method", m.Method),
		attribute.String("endpoint", m.Endpoint),
		attribute.Int("status_code", m.StatusCode),
	}
	if m.ClientIPType != "" {
		attrs = append(attrs, attribute.String("client_ip_type", m.ClientIPType))
	}
	return attrs
}

// RegisterRequestReceived records a successful API request
func (t *ApiTelemetry) RegisterRequestReceived(ctx context.Context, m ApiMetrics) {
	if t.requestCounter == nil {
		slog.Warn("Request counter not initialized")
		return
	}

	t.requestCounter.Add(ctx, 1, metric.WithAttributes(baseAttributes(m)...))
	t.recordEndpointSpecificMetrics(ctx, m)

	slog.Debug("Recorded successful API request",
		"method", m.Method,
		"endpoint", m.Endpoint,
		"status_code", m.StatusCode,
		"client_ip", m.ClientIP,
		"duration_ms", m.Duration.Milliseconds(),
	)
}

// RegisterRequestError records a failed API request
func (t *ApiTelemetry) RegisterRequestError(ctx context.Context, m ApiMetrics) {
	if t.errorCounter == nil {
		slog.Warn("Error counter not initialized")
		return
	}

	attrs := append(baseAttributes(m), attribute.String("error_type", categorizeStatus(m.StatusCode)))
	t.errorCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	slog.Warn("Recorded API request error",
		"method", m.Method,
		"endpoint", m.Endpoint,
		"status_code", m.StatusCode,
		"client_ip", m.ClientIP,
		"error", m.ErrorMessage,
	)
}

// RegisterRequestDuration records the duration of an API request
func (t *ApiTelemetry) RegisterRequestDuration(ctx context.Context, m ApiMetrics) {
	if t.durationHistogram == nil {
		slog.Warn("Duration histogram not initialized")
		return
	}

	t.durationHistogram.Record(ctx, m.Duration.Seconds(), metric.WithAttributes(baseAttributes(m)...))
}

func (t *ApiTelemetry) recordEndpointSpecificMetrics(ctx context.Context, m ApiMetrics) {
	attrs := metric.WithAttributes(attribute.String("client_ip_type", m.ClientIPType))

	switch {
	case m.Endpoint == "/transfers" && m.Method == http.MethodPost:
		if t.transferCounter != nil {
			t.transferCounter.Add(ctx, 1, attrs)
		}
	case m.Endpoint == "/alerts" && m.AlertCount > 0:
		if t.alertsGeneratedCount != nil {
			t.alertsGeneratedCount.Add(ctx, int64(m.AlertCount), attrs)
		}
	case m.Endpoint == "/events":
		if t.eventRetrievalCounter != nil {
			t.eventRetrievalCounter.Add(ctx, int64(m.EventCount), attrs)
		}
	case m.Endpoint == "/reports/inventory.xlsx":
		if t.reportCounter != nil {
			t.reportCounter.Add(ctx, 1, attrs)
		}
	}
}

// categorizeStatus keeps the error_type attribute low cardinality
func categorizeStatus(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusServiceUnavailable:
		return "unavailable"
	}
	if statusCode >= 500 {
		return "internal_error"
	}
	return "other"
}

// GetEndpointFromPath collapses id segments into route templates
func GetEndpointFromPath(path string) string {
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return "/"
	}

	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	switch segments[0] {
	case "products", "warehouses", "stock", "transfers":
		if len(segments) == 1 {
			return "/" + segments[0]
		}
		if len(segments) == 2 {
			return "/" + segments[0] + "/{id}"
		}
	case "alerts", "dashboard", "events", "health":
		if len(segments) == 1 {
			return "/" + segments[0]
		}
	case "reports":
		if path == "/reports/inventory.xlsx" {
			return path
		}
	}
	return "other"
}

// NormalizeClientIP categorizes client IPs to control cardinality
func NormalizeClientIP(clientIP string) string {
	if clientIP == "" {
		return "unknown"
	}

	ip := net.ParseIP(clientIP)
	if ip == nil {
		return "invalid"
	}

	if ip.IsLoopback() {
		return "localhost"
	}
	if ip.IsPrivate() || ip.IsLinkLocalUnicast() {
		return "internal"
	}
	return "external"
}
