package services

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"inventory-dashboard-api/internal/cache"
	"inventory-dashboard-api/internal/models"
	"inventory-dashboard-api/internal/storage"
)

const (
	dashboardCacheKey  = "dashboard"
	topInventoryValues = 5
)

// DashboardService aggregates the summary metrics shown on the dashboard
type DashboardService struct {
	store storage.Store
	cache *cache.TTLCache[models.DashboardMetrics]

	// generation counts invalidations so a computation that raced a write is not cached
	mu         sync.Mutex
	generation uint64
}

// NewDashboardService creates the service. A nil cache computes metrics on every call.
func NewDashboardService(store storage.Store, metricsCache *cache.TTLCache[models.DashboardMetrics]) *DashboardService {
	return &DashboardService{
		store: store,
		cache: metricsCache,
	}
}

// Invalidate drops the cached metrics. It is wired as an EventPublisher so any write clears it.
func (s *DashboardService) Invalidate(string, int, any) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.cache.Delete(dashboardCacheKey)
}

func (s *DashboardService) Metrics(ctx context.Context) (models.DashboardMetrics, error) {
	if s.cache != nil {
		if metrics, ok := s.cache.Get(dashboardCacheKey); ok {
			return metrics, nil
		}
	}

	s.mu.Lock()
	generation := s.generation
	s.mu.Unlock()

	var metrics models.DashboardMetrics
	// read every collection from one consistent state
	err := s.store.Atomic(ctx, func(tx storage.Store) error {
		products, err := tx.Products().List(ctx)
		if err != nil {
			return err
		}
		warehouses, err := tx.Warehouses().List(ctx)
		if err != nil {
			return err
		}
		stock, err := tx.Stock().List(ctx)
		if err != nil {
			return err
		}
		transfers, err := tx.Transfers().List(ctx)
		if err != nil {
			return err
		}
		alerts, err := tx.Alerts().List(ctx)
		if err != nil {
			return err
		}

		metrics = ComputeDashboardMetrics(products, warehouses, stock, transfers, alerts)
		return nil
	})
	if err != nil {
		return models.DashboardMetrics{}, storageErr("dashboard metrics", err)
	}

	if s.cache != nil {
		s.mu.Lock()
		if s.generation == generation {
			s.cache.Set(dashboardCacheKey, metrics)
		}
		s.mu.Unlock()
	}
	return metrics, nil
}

// ComputeDashboardMetrics is the pure aggregation behind Metrics
func ComputeDashboardMetrics(
	products []models.Product,
	warehouses []models.Warehouse,
	stock []models.Stock,
	transfers []models.Transfer,
	alerts []models.Alert,
) models.DashboardMetrics {
	totals := totalStockByProduct(stock)
	unitCosts := make(map[int]decimal.Decimal, len(products))
	for _, p := range products {
		unitCosts[p.ID] = p.UnitCost
	}

	metrics := models.DashboardMetrics{
		TotalProducts:      len(products),
		TotalWarehouses:    len(warehouses),
		TotalValue:         decimal.Zero,
		InventoryOverview:  make([]models.InventoryOverview, 0, len(products)),
		CategoryData:       make([]models.CategoryCount, 0),
		WarehouseStockData: make([]models.WarehouseStock, 0, len(warehouses)),
		InventoryValueData: make([]models.InventoryValue, 0, len(products)),
		CriticalAlerts:     make([]models.Alert, 0),
	}

	// rows whose product no longer exists contribute nothing
	for _, row := range stock {
		if cost, ok := unitCosts[row.ProductID]; ok {
			metrics.TotalValue = metrics.TotalValue.Add(cost.Mul(decimal.NewFromInt(int64(row.Quantity))))
		}
	}

	categoryIndex := make(map[string]int)
	for _, p := range products {
		total := totals[p.ID]
		lowStock := total < p.ReorderPoint
		if lowStock {
			metrics.LowStockItems++
		}

		metrics.InventoryOverview = append(metrics.InventoryOverview, models.InventoryOverview{
			Product:       p,
			TotalQuantity: total,
			IsLowStock:    lowStock,
		})

		if i, ok := categoryIndex[p.Category]; ok {
			metrics.CategoryData[i].Count++
		} else {
			categoryIndex[p.Category] = len(metrics.CategoryData)
			metrics.CategoryData = append(metrics.CategoryData, models.CategoryCount{Category: p.Category, Count: 1})
		}

		metrics.InventoryValueData = append(metrics.InventoryValueData, models.InventoryValue{
			Name:     p.Name,
			Value:    p.UnitCost.Mul(decimal.NewFromInt(int64(total))),
			Quantity: total,
		})
	}

	sort.SliceStable(metrics.InventoryValueData, func(i, j int) bool {
		return metrics.InventoryValueData[i].Value.GreaterThan(metrics.InventoryValueData[j].Value)
	})
	if len(metrics.InventoryValueData) > topInventoryValues {
		metrics.InventoryValueData = metrics.InventoryValueData[:topInventoryValues]
	}

	warehouseTotals := make(map[int]int, len(warehouses))
	for _, row := range stock {
		warehouseTotals[row.WarehouseID] += row.Quantity
	}
	for _, w := range warehouses {
		metrics.WarehouseStockData = append(metrics.WarehouseStockData, models.WarehouseStock{
			Name:     w.Name,
			Location: w.Location,
			Stock:    warehouseTotals[w.ID],
		})
	}

	for _, alert := range alerts {
		if alert.Status != models.AlertStatusActive {
			continue
		}
		metrics.ActiveAlerts++
		if alert.AlertType == models.AlertTypeCritical {
			metrics.CriticalAlerts = append(metrics.CriticalAlerts, alert)
		}
	}

	for _, t := range transfers {
		if t.Status == models.TransferStatusPending {
			metrics.PendingTransfers++
		}
	}

	return metrics
}
