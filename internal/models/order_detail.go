package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderDetail is one line item of an order: a sandwich and how many of it.
type OrderDetail struct {
	ID         uuid.UUID `json:"id" db:"id"`
	OrderID    uuid.UUID `json:"order_id" db:"order_id"`
	SandwichID uuid.UUID `json:"sandwich_id" db:"sandwich_id"`
	Amount     int       `json:"amount" db:"amount"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type OrderDetailUpdate struct {
	OrderID    *uuid.UUID `json:"order_id,omitempty"`
	SandwichID *uuid.UUID `json:"sandwich_id,omitempty"`
	Amount     *int       `json:"amount,omitempty"`
}
