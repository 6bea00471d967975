// Package validate holds the stateless referential-integrity checks run before
// entity writes. Every check takes the same DB handle the subsequent write will
// use, so checking and writing observe one transactional view.
package validate

import (
	"context"

	"sandwichworks/internal/common"
	"sandwichworks/internal/repositories"

	"github.com/google/uuid"
)

const (
	EntitySandwich    = "Sandwich"
	EntityResource    = "Resource"
	EntityOrder       = "Order"
	EntityOrderDetail = "OrderDetail"
	EntityRecipe      = "Recipe"
)

func requireExists(ctx context.Context, db repositories.DB, table, entity string, id uuid.UUID) error {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM ` + table + ` WHERE id = $1)`
	if err := db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return &common.ReferenceNotFoundError{Entity: entity, ID: id}
	}
	return nil
}

func RequireSandwich(ctx context.Context, db repositories.DB, id uuid.UUID) error {
	return requireExists(ctx, db, "sandwiches", EntitySandwich, id)
}

func RequireResource(ctx context.Context, db repositories.DB, id uuid.UUID) error {
	return requireExists(ctx, db, "resources", EntityResource, id)
}

func RequireOrder(ctx context.Context, db repositories.DB, id uuid.UUID) error {
	return requireExists(ctx, db, "orders", EntityOrder, id)
}

func RequireOrderDetail(ctx context.Context, db repositories.DB, id uuid.UUID) error {
	return requireExists(ctx, db, "order_details", EntityOrderDetail, id)
}

func RequireRecipe(ctx context.Context, db repositories.DB, id uuid.UUID) error {
	return requireExists(ctx, db, "recipes", EntityRecipe, id)
}

// RequireRecipeUnique enforces the natural key on recipes: one entry per
// (sandwich, resource) pair. excludeID skips the row being updated; pass
// uuid.Nil on create.
func RequireRecipeUnique(ctx context.Context, db repositories.DB, sandwichID, resourceID, excludeID uuid.UUID) error {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM recipes WHERE sandwich_id = $1 AND resource_id = $2 AND id != $3)`
	if err := db.QueryRow(ctx, query, sandwichID, resourceID, excludeID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return &common.ConflictError{
			Entity: EntityRecipe,
			Key:    sandwichID.String() + "/" + resourceID.String(),
		}
	}
	return nil
}
