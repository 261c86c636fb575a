package models

import "github.com/shopspring/decimal"

// DashboardMetrics is the aggregate served by GET /dashboard
type DashboardMetrics struct {
	TotalProducts      int                 `json:"totalProducts"`
	TotalWarehouses    int                 `json:"totalWarehouses"`
	TotalValue         decimal.Decimal     `json:"totalValue"`
	LowStockItems      int                 `json:"lowStockItems"`
	ActiveAlerts       int                 `json:"activeAlerts"`
	PendingTransfers   int                 `json:"pendingTransfers"`
	InventoryOverview  []InventoryOverview `json:"inventoryOverview"`
	CategoryData       []CategoryCount     `json:"categoryData"`
	WarehouseStockData []WarehouseStock    `json:"warehouseStockData"`
	InventoryValueData []InventoryValue    `json:"inventoryValueData"`
	CriticalAlerts     []Alert             `json:"criticalAlerts"`
}

type InventoryOverview struct {
	Product
	TotalQuantity int  `json:"totalQuantity"`
	IsLowStock    bool `json:"isLowStock"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type WarehouseStock struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Stock    int    `json:"stock"`
}

type InventoryValue struct {
	Name     string          `json:"name"`
	Value    decimal.Decimal `json:"value"`
	Quantity int             `json:"quantity"`
}
