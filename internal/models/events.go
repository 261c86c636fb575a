package models

// Change feed event types
const (
	EventProductCreated   = "product.created"
	EventProductUpdated   = "product.updated"
	EventProductDeleted   = "product.deleted"
	EventWarehouseCreated = "warehouse.created"
	EventWarehouseUpdated = "warehouse.updated"
	EventWarehouseDeleted = "warehouse.deleted"
	EventStockCreated     = "stock.created"
	EventStockUpdated     = "stock.updated"
	EventStockDeleted     = "stock.deleted"
	EventTransferCreated  = "transfer.created"
	EventTransferUpdated  = "transfer.updated"
	EventAlertCreated     = "alert.created"
	EventAlertUpdated     = "alert.updated"
)

// Event is one entry of the change feed. Offsets are dense and increasing; ID is unique across restarts.
type Event struct {
	Offset    int64  `json:"offset"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	EventType string `json:"eventType"`
	EntityID  int    `json:"entityId"`
	Data      any    `json:"data,omitempty"`
}

type EventsResponse struct {
	Events     []Event `json:"events"`
	NextOffset int64   `json:"nextOffset"`
	HasMore    bool    `json:"hasMore"`
	Count      int     `json:"count"`
}
