package services

import (
	"context"
	"errors"
	"sort"

	"sandwichworks/internal/common"
	"sandwichworks/internal/repositories"

	"github.com/google/uuid"
)

// InventoryService owns all stock mutations. Check and deduct always happen in
// one guarded statement per resource inside a single transaction, so a
// consumption either lands completely or not at all.
type InventoryService interface {
	CanFulfill(ctx context.Context, items map[uuid.UUID]float64) (bool, error)
	Consume(ctx context.Context, items map[uuid.UUID]float64) error
	ConsumeIn(ctx context.Context, db repositories.DB, items map[uuid.UUID]float64) error
	Restock(ctx context.Context, resourceID uuid.UUID, amount float64) error
}

type inventoryService struct {
	pool repositories.Pool
}

func NewInventoryService(pool repositories.Pool) InventoryService {
	return &inventoryService{pool: pool}
}

func validateItems(items map[uuid.UUID]float64) error {
	if len(items) == 0 {
		return &common.InvalidInputError{Field: "items", Reason: "at least one resource is required"}
	}
	for id, amount := range items {
		if amount <= 0 {
			return &common.InvalidInputError{Field: "amount", Reason: "must be positive for resource " + id.String()}
		}
	}
	return nil
}

func sortedResourceIDs(items map[uuid.UUID]float64) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	// Deterministic order keeps concurrent consumers from deadlocking on
	// overlapping resource sets.
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// CanFulfill reports whether every requested amount is covered by current
// stock. All quantities come from one snapshot query, not per-item re-reads.
func (s *inventoryService) CanFulfill(ctx context.Context, items map[uuid.UUID]float64) (bool, error) {
	if err := validateItems(items); err != nil {
		return false, err
	}

	ids := sortedResourceIDs(items)
	quantities, err := repositories.NewResourceRepo(s.pool).GetQuantities(ctx, ids)
	if err != nil {
		return false, err
	}

	for _, id := range ids {
		available, ok := quantities[id]
		if !ok {
			return false, &common.ReferenceNotFoundError{Entity: "Resource", ID: id}
		}
		if available < items[id] {
			return false, nil
		}
	}
	return true, nil
}

// Consume atomically checks and deducts every requested amount. If any single
// resource falls short the whole transaction rolls back and stock is unchanged.
func (s *inventoryService) Consume(ctx context.Context, items map[uuid.UUID]float64) error {
	if err := validateItems(items); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.ConsumeIn(ctx, tx, items); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ConsumeIn runs the deduction on a caller-owned transaction so order
// fulfillment can combine stock consumption and record writes atomically. The
// caller commits or rolls back.
func (s *inventoryService) ConsumeIn(ctx context.Context, db repositories.DB, items map[uuid.UUID]float64) error {
	if err := validateItems(items); err != nil {
		return err
	}

	repo := repositories.NewResourceRepo(db)
	for _, id := range sortedResourceIDs(items) {
		needed := items[id]
		affected, err := repo.DeductQuantity(ctx, id, needed)
		if err != nil {
			return common.MapStorageError(err, "Resource")
		}
		if affected == 0 {
			// Guard rejected the row: either the resource is gone or the
			// stock fell short. Re-read inside the same transaction to tell.
			resource, getErr := repo.GetByID(ctx, id)
			if getErr != nil {
				if errors.Is(getErr, common.ErrNotFound) {
					return &common.ReferenceNotFoundError{Entity: "Resource", ID: id}
				}
				return getErr
			}
			return &common.InsufficientStockError{
				ResourceID: id,
				Needed:     needed,
				Available:  resource.Quantity,
			}
		}
	}
	return nil
}

// Restock adds a positive amount to a resource.
func (s *inventoryService) Restock(ctx context.Context, resourceID uuid.UUID, amount float64) error {
	if amount <= 0 {
		return &common.InvalidInputError{Field: "amount", Reason: "must be positive"}
	}

	affected, err := repositories.NewResourceRepo(s.pool).AddQuantity(ctx, resourceID, amount)
	if err != nil {
		return common.MapStorageError(err, "Resource")
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
