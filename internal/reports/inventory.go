package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"inventory-dashboard-api/internal/models"
)

const (
	InventorySheet = "Inventory"
	AlertsSheet    = "Alerts"
)

var (
	inventoryHeader = []interface{}{"Product", "SKU", "Category", "Total Stock", "Reorder Point", "Status", "Recommended Order", "Value"}
	alertsHeader    = []interface{}{"ID", "Product", "Type", "Status", "Current Stock", "Recommended Order", "Created At", "Acknowledged By", "Notes"}
)

// InventoryReport is the data rendered into the workbook
type InventoryReport struct {
	Statuses []models.StockStatus
	Overview []models.InventoryOverview
	Alerts   []models.Alert
	// ProductNames maps product id to its display label
	ProductNames map[int]string
}

// WriteInventoryWorkbook renders the report as an xlsx workbook into w
func WriteInventoryWorkbook(w io.Writer, report InventoryReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", InventorySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(AlertsSheet); err != nil {
		return fmt.Errorf("create alerts sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeRow(f, InventorySheet, 1, inventoryHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(InventorySheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style inventory header: %w", err)
	}

	values := make(map[int]string, len(report.Overview))
	for _, item := range report.Overview {
		values[item.ID] = item.UnitCost.Mul(decimal.NewFromInt(int64(item.TotalQuantity))).StringFixed(2)
	}

	for i, status := range report.Statuses {
		row := []interface{}{
			status.ProductName,
			status.SKU,
			status.Category,
			status.TotalStock,
			status.ReorderPoint,
			status.Status,
			status.RecommendedOrder,
			values[status.ProductID],
		}
		if err := writeRow(f, InventorySheet, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, AlertsSheet, 1, alertsHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(AlertsSheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style alerts header: %w", err)
	}

	for i, alert := range report.Alerts {
		row := []interface{}{
			alert.ID,
			productName(report.ProductNames, alert.ProductID),
			alert.AlertType,
			alert.Status,
			alert.CurrentStock,
			alert.RecommendedOrder,
			alert.CreatedAt.UTC().Format(time.RFC3339),
			derefString(alert.AcknowledgedBy),
			derefString(alert.Notes),
		}
		if err := writeRow(f, AlertsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(InventorySheet, "A", "A", 32); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func productName(names map[int]string, id int) string {
	if name, ok := names[id]; ok {
		return name
	}
	return "Unknown"
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
