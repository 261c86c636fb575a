package services

import (
	"fmt"

	"inventory-dashboard-api/internal/models"
)

const unknownLabel = "Unknown"

// ProductLabel renders "Name (SKU)" for the product with id, or "Unknown"
func ProductLabel(products []models.Product, id int) string {
	for _, p := range products {
		if p.ID == id {
			return fmt.Sprintf("%s (%s)", p.Name, p.SKU)
		}
	}
	return unknownLabel
}

// WarehouseLabel renders "Name (Code)" for the warehouse with id, or "Unknown"
func WarehouseLabel(warehouses []models.Warehouse, id int) string {
	for _, w := range warehouses {
		if w.ID == id {
			return fmt.Sprintf("%s (%s)", w.Name, w.Code)
		}
	}
	return unknownLabel
}
