package models

import (
	"time"

	"github.com/google/uuid"
)

// Resource is a raw ingredient tracked by quantity. Quantity is unit-dependent
// (slices of bread vs ounces of cheese), so it is stored as a fractional amount.
// The quantity is never negative at any observable time.
type Resource struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	Unit        string    `json:"unit" db:"unit"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

// ResourceUpdate carries a partial update. A nil field means the caller did not
// mention it, which is distinct from asking for a zero value.
type ResourceUpdate struct {
	Name     *string  `json:"name,omitempty"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     *string  `json:"unit,omitempty"`
}

// StockReport aggregates current stock levels for the report endpoint.
type StockReport struct {
	Resources     []*Resource `json:"resources"`
	TotalKinds    int         `json:"total_kinds"`
	LowStockCount int         `json:"low_stock_count"`
	Threshold     float64     `json:"threshold"`
}
