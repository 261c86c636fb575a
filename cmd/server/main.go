package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-dashboard-api/internal/cache"
	"inventory-dashboard-api/internal/config"
	"inventory-dashboard-api/internal/events"
	"inventory-dashboard-api/internal/handlers"
	"inventory-dashboard-api/internal/middleware"
	"inventory-dashboard-api/internal/models"
	"inventory-dashboard-api/internal/services"
	"inventory-dashboard-api/internal/storage"
	"inventory-dashboard-api/internal/storage/jsonfile"
	"inventory-dashboard-api/internal/storage/memory"
	"inventory-dashboard-api/internal/storage/postgres"
	"inventory-dashboard-api/internal/telemetry"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadConfig()

	slog.Info("Starting Inventory Dashboard API", "version", version)

	ctx := context.Background()

	otelTelemetry, err := telemetry.InitMetrics(ctx, telemetry.Options{
		MeterName: "inventory-dashboard-api",
		Exporter:  cfg.MetricsExporter,
		Port:      cfg.MetricsPort,
	})
	if err != nil {
		return fmt.Errorf("initialize metrics: %w", err)
	}

	apiTelemetry := telemetry.NewApiTelemetry()
	if err := apiTelemetry.InitializeTelemetry(ctx); err != nil {
		return fmt.Errorf("initialize api telemetry: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Error closing store", "error", err)
		}
	}()
	slog.Info("Storage initialized", "driver", store.Driver())

	eventQueue, err := events.NewQueue(events.Config{
		FilePath:  cfg.EventsFilePath,
		MaxEvents: config.ParseInt(cfg.MaxEventsInQueue, 10000),
	})
	if err != nil {
		return fmt.Errorf("initialize event queue: %w", err)
	}

	idempotencyCache := cache.NewTTLCache[models.Transfer]("transfer-idempotency",
		config.ParseDuration(cfg.IdempotencyCacheTTL, 10*time.Minute),
		config.ParseDuration(cfg.IdempotencyCacheCleanupInterval, time.Minute))
	defer idempotencyCache.Stop()

	dashboardTTL := config.ParseDuration(cfg.DashboardCacheTTL, 5*time.Second)
	dashboardCache := cache.NewTTLCache[models.DashboardMetrics]("dashboard", dashboardTTL, dashboardTTL)
	defer dashboardCache.Stop()

	dashboardService := services.NewDashboardService(store, dashboardCache)
	publisher := services.Publishers{eventQueue, services.PublisherFunc(dashboardService.Invalidate)}

	routerCfg := handlers.RouterConfig{
		Catalog: services.NewCatalogService(store, publisher),
		Transfers: services.NewTransferService(store, publisher, services.TransferOptions{
			AutoComplete: config.ParseBool(cfg.TransferAutoComplete, false),
			Idempotency:  idempotencyCache,
		}),
		Alerts:    services.NewAlertService(store, publisher),
		Dashboard: dashboardService,
		Reports:   services.NewReportService(store),
		Events:    eventQueue,
		Health:    store,
		Version:   version,
		Telemetry: apiTelemetry,
	}

	rateLimitConfig := middleware.ParseRateLimitConfig(cfg)
	if rateLimitConfig.Enabled {
		rateLimiter := middleware.NewRateLimiter(rateLimitConfig)
		defer rateLimiter.Stop()
		routerCfg.RateLimiter = rateLimiter
		slog.Info("Rate limiting middleware enabled")
	} else {
		slog.Info("Rate limiting middleware disabled")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
		// long polls on /events wait up to a minute
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server ready to accept connections",
			"address", server.Addr,
			"environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("Shutting down server...", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		config.ParseDuration(cfg.ShutdownTimeout, 30*time.Second))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	if err := eventQueue.Close(); err != nil {
		slog.Error("Error closing event queue", "error", err)
	} else {
		slog.Info("Event queue closed", "next_offset", eventQueue.CurrentOffset())
	}

	otelTelemetry.Shutdown(shutdownCtx)

	slog.Info("Server exited")
	return nil
}

// openStore builds the storage backend selected by STORAGE_DRIVER
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case config.StorageJSON:
		store, err := jsonfile.Open(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open json store: %w", err)
		}
		return store, nil
	case config.StorageMemory:
		return memory.NewStore(), nil
	case config.StoragePostgres:
		if cfg.DatabaseDSN == "" {
			return nil, errors.New("DATABASE_DSN is required for the postgres storage driver")
		}
		store, err := postgres.Open(postgres.Config{
			DSN:             cfg.DatabaseDSN,
			MaxOpenConns:    config.ParseInt(cfg.DBMaxOpenConns, 25),
			MaxIdleConns:    config.ParseInt(cfg.DBMaxIdleConns, 5),
			ConnMaxLifetime: config.ParseDuration(cfg.DBConnMaxLifetime, time.Hour),
			LogQueries:      cfg.IsDevelopment() && cfg.LogLevel == "debug",
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
