package models

import (
	"github.com/google/uuid"
)

// Recipe maps one resource requirement of a sandwich variant. The
// (sandwich_id, resource_id) pair is unique and both references must resolve.
type Recipe struct {
	ID         uuid.UUID `json:"id" db:"id"`
	SandwichID uuid.UUID `json:"sandwich_id" db:"sandwich_id"`
	ResourceID uuid.UUID `json:"resource_id" db:"resource_id"`
	Amount     float64   `json:"amount" db:"amount"`
}

type RecipeUpdate struct {
	SandwichID *uuid.UUID `json:"sandwich_id,omitempty"`
	ResourceID *uuid.UUID `json:"resource_id,omitempty"`
	Amount     *float64   `json:"amount,omitempty"`
}

// RecipeItem is one (resource, amount) entry of a sandwich's full recipe, in
// catalog order.
type RecipeItem struct {
	ResourceID uuid.UUID `json:"resource_id"`
	Amount     float64   `json:"amount"`
}
