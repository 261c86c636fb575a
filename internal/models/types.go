package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// unitCost and values travel as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// Transfer statuses
const (
	TransferStatusPending   = "pending"
	TransferStatusCompleted = "completed"
	TransferStatusCancelled = "cancelled"
)

// Alert types mirror the stock status classification they were raised for
const (
	AlertTypeCritical    = "critical"
	AlertTypeLow         = "low"
	AlertTypeOverstocked = "overstocked"
)

// Alert statuses
const (
	AlertStatusActive       = "active"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusResolved     = "resolved"
)

// Stock status classifications
const (
	StockStatusCritical    = "critical"
	StockStatusLow         = "low"
	StockStatusAdequate    = "adequate"
	StockStatusOverstocked = "overstocked"
)

// Product is a catalog item; ReorderPoint drives every stock status decision.
type Product struct {
	ID           int             `json:"id" gorm:"primaryKey;autoIncrement:false"`
	SKU          string          `json:"sku" gorm:"size:64;index"`
	Name         string          `json:"name" gorm:"size:255;not null"`
	Category     string          `json:"category" gorm:"size:128;index"`
	UnitCost     decimal.Decimal `json:"unitCost" gorm:"type:numeric(14,4);not null;default:0"`
	ReorderPoint int             `json:"reorderPoint" gorm:"not null;default:0"`
}

func (Product) TableName() string { return "products" }

func (p Product) EntityID() int { return p.ID }

func (p Product) WithID(id int) Product {
	p.ID = id
	return p
}

type Warehouse struct {
	ID       int    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name     string `json:"name" gorm:"size:255;not null"`
	Location string `json:"location" gorm:"size:255"`
	Code     string `json:"code" gorm:"size:32;index"`
}

func (Warehouse) TableName() string { return "warehouses" }

func (w Warehouse) EntityID() int { return w.ID }

func (w Warehouse) WithID(id int) Warehouse {
	w.ID = id
	return w
}

// Stock is the quantity of one product held in one warehouse.
// One row per (product, warehouse) pair is a convention, not a constraint.
type Stock struct {
	ID          int `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ProductID   int `json:"productId" gorm:"not null;index:idx_stock_product_warehouse"`
	WarehouseID int `json:"warehouseId" gorm:"not null;index:idx_stock_product_warehouse"`
	Quantity    int `json:"quantity" gorm:"not null;default:0"`
}

func (Stock) TableName() string { return "stock" }

func (s Stock) EntityID() int { return s.ID }

func (s Stock) WithID(id int) Stock {
	s.ID = id
	return s
}

type Transfer struct {
	ID              int        `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ProductID       int        `json:"productId" gorm:"not null;index"`
	FromWarehouseID int        `json:"fromWarehouseId" gorm:"not null"`
	ToWarehouseID   int        `json:"toWarehouseId" gorm:"not null"`
	Quantity        int        `json:"quantity" gorm:"not null"`
	Status          string     `json:"status" gorm:"size:16;not null;index"`
	RequestedBy     string     `json:"requestedBy" gorm:"size:255;not null"`
	RequestedAt     time.Time  `json:"requestedAt" gorm:"not null"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	Notes           *string    `json:"notes,omitempty" gorm:"type:text"`
}

func (Transfer) TableName() string { return "transfers" }

func (t Transfer) EntityID() int { return t.ID }

func (t Transfer) WithID(id int) Transfer {
	t.ID = id
	return t
}

type Alert struct {
	ID               int        `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ProductID        int        `json:"productId" gorm:"not null;index"`
	AlertType        string     `json:"alertType" gorm:"size:16;not null"`
	CurrentStock     int        `json:"currentStock"`
	ReorderPoint     int        `json:"reorderPoint"`
	RecommendedOrder float64    `json:"recommendedOrder"`
	Status           string     `json:"status" gorm:"size:16;not null;index"`
	CreatedAt        time.Time  `json:"createdAt" gorm:"autoCreateTime:false"`
	AcknowledgedAt   *time.Time `json:"acknowledgedAt,omitempty"`
	ResolvedAt       *time.Time `json:"resolvedAt,omitempty"`
	AcknowledgedBy   *string    `json:"acknowledgedBy,omitempty" gorm:"size:255"`
	Notes            *string    `json:"notes,omitempty" gorm:"type:text"`
}

func (Alert) TableName() string { return "alerts" }

func (a Alert) EntityID() int { return a.ID }

func (a Alert) WithID(id int) Alert {
	a.ID = id
	return a
}

// StockStatus is the derived per-product classification. It is never persisted.
// StockPercentage is nil when the product has no reorder point to compare against.
type StockStatus struct {
	ProductID        int      `json:"productId"`
	ProductName      string   `json:"productName"`
	SKU              string   `json:"sku"`
	Category         string   `json:"category"`
	TotalStock       int      `json:"totalStock"`
	ReorderPoint     int      `json:"reorderPoint"`
	Status           string   `json:"status"`
	StockPercentage  *float64 `json:"stockPercentage"`
	RecommendedOrder float64  `json:"recommendedOrder"`
}
