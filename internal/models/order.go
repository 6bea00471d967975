package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is a customer purchase event. CustomerName and Description are opaque
// session context; the core never interprets them.
type Order struct {
	ID           uuid.UUID `json:"id" db:"id"`
	CustomerName *string   `json:"customer_name" db:"customer_name"`
	Description  *string   `json:"description" db:"description"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type OrderUpdate struct {
	CustomerName *string `json:"customer_name,omitempty"`
	Description  *string `json:"description,omitempty"`
}
