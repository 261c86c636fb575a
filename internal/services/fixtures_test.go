package services

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"inventory-dashboard-api/internal/models"
	"inventory-dashboard-api/internal/storage/memory"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

// seedData is a small catalog:
// Widget total 8 of reorder point 10 (low), Gadget 50 of 20 (overstocked), Gizmo 0 of 5 (critical)
func seedData() memory.Data {
	return memory.Data{
		Products: []models.Product{
			{ID: 1, SKU: "W-1", Name: "Widget", Category: "Tools", UnitCost: decimal.RequireFromString("2.50"), ReorderPoint: 10},
			{ID: 2, SKU: "G-1", Name: "Gadget", Category: "Electronics", UnitCost: decimal.RequireFromString("10.00"), ReorderPoint: 20},
			{ID: 3, SKU: "Z-1", Name: "Gizmo", Category: "Tools", UnitCost: decimal.RequireFromString("1.00"), ReorderPoint: 5},
		},
		Warehouses: []models.Warehouse{
			{ID: 1, Name: "Main", Location: "Madrid", Code: "MAIN"},
			{ID: 2, Name: "East", Location: "Valencia", Code: "EAST"},
			{ID: 3, Name: "West", Location: "Lisbon", Code: "WEST"},
		},
		Stock: []models.Stock{
			{ID: 1, ProductID: 1, WarehouseID: 1, Quantity: 5},
			{ID: 2, ProductID: 1, WarehouseID: 2, Quantity: 3},
			{ID: 3, ProductID: 2, WarehouseID: 1, Quantity: 50},
		},
	}
}

func newSeededStore() *memory.Store {
	return memory.NewStore(memory.WithData(seedData()))
}

type publishedEvent struct {
	eventType string
	entityID  int
}

// recordingPublisher captures every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(eventType string, entityID int, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType: eventType, entityID: entityID})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.eventType)
	}
	return types
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
