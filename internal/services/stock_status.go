package services

import (
	"inventory-dashboard-api/internal/models"
)

// ComputeStockStatuses returns one status per product, in product order.
// It has no side effects.
func ComputeStockStatuses(products []models.Product, stock []models.Stock) []models.StockStatus {
	totals := totalStockByProduct(stock)

	statuses := make([]models.StockStatus, 0, len(products))
	for _, product := range products {
		total := totals[product.ID]
		status, recommended := classifyStock(total, product.ReorderPoint)

		statuses = append(statuses, models.StockStatus{
			ProductID:        product.ID,
			ProductName:      product.Name,
			SKU:              product.SKU,
			Category:         product.Category,
			TotalStock:       total,
			ReorderPoint:     product.ReorderPoint,
			Status:           status,
			StockPercentage:  stockPercentage(total, product.ReorderPoint),
			RecommendedOrder: recommended,
		})
	}
	return statuses
}

// classifyStock applies the reorder rules in priority order. Zero stock must be
// tested before the half-reorder-point rule so it gets the larger order.
func classifyStock(total, reorderPoint int) (string, float64) {
	t := float64(total)
	rp := float64(reorderPoint)

	switch {
	case total == 0:
		return models.StockStatusCritical, rp * 2
	case t < rp*0.5:
		return models.StockStatusCritical, rp * 1.5
	case total < reorderPoint:
		return models.StockStatusLow, rp
	case t > rp*2:
		return models.StockStatusOverstocked, 0
	default:
		return models.StockStatusAdequate, 0
	}
}

// stockPercentage is nil for a zero reorder point, where the ratio is undefined
func stockPercentage(total, reorderPoint int) *float64 {
	if reorderPoint == 0 {
		return nil
	}
	pct := float64(total) / float64(reorderPoint) * 100
	return &pct
}

func totalStockByProduct(stock []models.Stock) map[int]int {
	totals := make(map[int]int)
	for _, row := range stock {
		totals[row.ProductID] += row.Quantity
	}
	return totals
}
