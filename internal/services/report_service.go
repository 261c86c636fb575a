package services

import (
	"context"
	"fmt"
	"io"

	"inventory-dashboard-api/internal/reports"
	"inventory-dashboard-api/internal/storage"
)

// ReportService renders downloadable inventory reports
type ReportService struct {
	store storage.Store
}

func NewReportService(store storage.Store) *ReportService {
	return &ReportService{store: store}
}

// WriteInventoryWorkbook writes the xlsx inventory report for the current state to w
func (s *ReportService) WriteInventoryWorkbook(ctx context.Context, w io.Writer) error {
	var report reports.InventoryReport

	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		products, err := tx.Products().List(ctx)
		if err != nil {
			return err
		}
		stock, err := tx.Stock().List(ctx)
		if err != nil {
			return err
		}
		alerts, err := tx.Alerts().List(ctx)
		if err != nil {
			return err
		}

		names := make(map[int]string, len(products))
		for _, p := range products {
			names[p.ID] = ProductLabel(products, p.ID)
		}

		report = reports.InventoryReport{
			Statuses:     ComputeStockStatuses(products, stock),
			Overview:     ComputeDashboardMetrics(products, nil, stock, nil, alerts).InventoryOverview,
			Alerts:       alerts,
			ProductNames: names,
		}
		return nil
	})
	if err != nil {
		return storageErr("inventory report", err)
	}

	if err := reports.WriteInventoryWorkbook(w, report); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}
