package models

import "github.com/shopspring/decimal"

// ProductPatch carries the fields of a PUT /products/{id} body. Absent fields keep their stored value.
type ProductPatch struct {
	SKU          *string          `json:"sku"`
	Name         *string          `json:"name"`
	Category     *string          `json:"category"`
	UnitCost     *decimal.Decimal `json:"unitCost"`
	ReorderPoint *int             `json:"reorderPoint"`
}

// Apply merges the patch into product. The id is never changed.
func (p ProductPatch) Apply(product Product) Product {
	if p.SKU != nil {
		product.SKU = *p.SKU
	}
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.UnitCost != nil {
		product.UnitCost = *p.UnitCost
	}
	if p.ReorderPoint != nil {
		product.ReorderPoint = *p.ReorderPoint
	}
	return product
}

type WarehousePatch struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	Code     *string `json:"code"`
}

func (p WarehousePatch) Apply(warehouse Warehouse) Warehouse {
	if p.Name != nil {
		warehouse.Name = *p.Name
	}
	if p.Location != nil {
		warehouse.Location = *p.Location
	}
	if p.Code != nil {
		warehouse.Code = *p.Code
	}
	return warehouse
}

type StockPatch struct {
	ProductID   *int `json:"productId"`
	WarehouseID *int `json:"warehouseId"`
	Quantity    *int `json:"quantity"`
}

func (p StockPatch) Apply(stock Stock) Stock {
	if p.ProductID != nil {
		stock.ProductID = *p.ProductID
	}
	if p.WarehouseID != nil {
		stock.WarehouseID = *p.WarehouseID
	}
	if p.Quantity != nil {
		stock.Quantity = *p.Quantity
	}
	return stock
}

// CreateTransferRequest is the body of POST /transfers.
// Quantity is a pointer so an absent quantity is told apart from an explicit zero.
type CreateTransferRequest struct {
	ProductID       int     `json:"productId"`
	FromWarehouseID int     `json:"fromWarehouseId"`
	ToWarehouseID   int     `json:"toWarehouseId"`
	Quantity        *int    `json:"quantity"`
	RequestedBy     string  `json:"requestedBy"`
	Notes           *string `json:"notes,omitempty"`
	IdempotencyKey  string  `json:"-"`
}

// UpdateTransferRequest is the body of PUT /transfers/{id}
type UpdateTransferRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

// TransferView is a transfer decorated with display labels for list responses
type TransferView struct {
	Transfer
	ProductName       string `json:"productName"`
	FromWarehouseName string `json:"fromWarehouseName"`
	ToWarehouseName   string `json:"toWarehouseName"`
}

// UpdateAlertRequest is the body of PUT /alerts
type UpdateAlertRequest struct {
	ID             int     `json:"id"`
	Status         string  `json:"status"`
	AcknowledgedBy *string `json:"acknowledgedBy,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

// AlertFilter narrows GET /alerts. Empty fields match everything.
type AlertFilter struct {
	Status    string
	AlertType string
}

func (f AlertFilter) Matches(alert Alert) bool {
	if f.Status != "" && alert.Status != f.Status {
		return false
	}
	if f.AlertType != "" && alert.AlertType != f.AlertType {
		return false
	}
	return true
}

type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Version string `json:"version"`
}
