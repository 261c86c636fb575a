package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Metrics exporters
const (
	ExporterScraper = "scraper"
	ExporterGRPC    = "grpc"
	ExporterNone    = "none"
)

// Options selects how metrics leave the process
type Options struct {
	MeterName string
	Exporter  string
	// Port serves /metrics when Exporter is "scraper"
	Port string
}

// Telemetry owns the meter provider and, for the scraper exporter, the /metrics server
type Telemetry struct {
	server   *http.Server
	Provider *metric.MeterProvider
	meter    api.Meter
}

// InitMetrics installs a global meter provider for the configured exporter.
// With ExporterNone the otel no-op provider stays in place.
func InitMetrics(ctx context.Context, opts Options) (*Telemetry, error) {
	t := &Telemetry{}

	switch opts.Exporter {
	case ExporterScraper:
		slog.Info("Starting metrics with scraper exporter", "port", opts.Port)
		if err := t.initScrapeMetrics(opts.MeterName, opts.Port); err != nil {
			return nil, err
		}
	case ExporterGRPC:
		slog.Info("Starting metrics with grpc exporter")
		if err := t.initGRPCMetrics(ctx, opts.MeterName); err != nil {
			return nil, err
		}
	case ExporterNone, "":
		slog.Info("Metrics export disabled")
		t.meter = otel.Meter(opts.MeterName)
	default:
		return nil, fmt.Errorf("unknown metrics exporter %q", opts.Exporter)
	}

	return t, nil
}

// Shutdown flushes pending metrics and stops the scraper server
func (t *Telemetry) Shutdown(ctx context.Context) {
	if t.server != nil {
		if err := t.server.Shutdown(ctx); err != nil {
			slog.Error("Metrics server shutdown failed", "error", err)
		} else {
			slog.Info("Shutting down metrics server")
		}
	}
	if t.Provider != nil {
		if err := t.Provider.Shutdown(ctx); err != nil {
			slog.Error("Meter provider shutdown failed", "error", err)
		}
	}
}

// Initialize GRPC metrics exporter. https://opentelemetry.io/docs/languages/go/exporters/#otlp-metrics-over-grpc.
func (t *Telemetry) initGRPCMetrics(ctx context.Context, meterName string) error {
	// OTEL_EXPORTER_OTLP_METRICS_ENDPOINT overrides the default localhost:4317
	exporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		return fmt.Errorf("creating grpc exporter: %w", err)
	}

	t.Provider = metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(exporter)))
	otel.SetMeterProvider(t.Provider)
	t.meter = t.Provider.Meter(meterName)
	return nil
}

// Initialize scrape metrics exporter. https://github.com/open-telemetry/opentelemetry-go/blob/main/example/prometheus/main.go.
func (t *Telemetry) initScrapeMetrics(meterName, port string) error {
	// The exporter is both an otel Reader and a prometheus.Collector
	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("creating scrape exporter: %w", err)
	}

	t.Provider = metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(t.Provider)
	t.meter = t.Provider.Meter(meterName)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	t.server = &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go t.serveMetrics()
	return nil
}

func (t *Telemetry) serveMetrics() {
	slog.Info("Serving metrics", "addr", t.server.Addr, "path", "/metrics")

	if err := t.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("Metrics server closed")
			return
		}
		slog.Error("Metrics ListenAndServe exited with", "error", err)
	}
}
