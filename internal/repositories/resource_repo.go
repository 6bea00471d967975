package repositories

import (
	"context"
	"errors"
	"fmt"

	"sandwichworks/internal/common"
	"sandwichworks/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ResourceRepository interface {
	Create(ctx context.Context, resource *models.Resource) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	GetQuantities(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]float64, error)
	Update(ctx context.Context, id uuid.UUID, update *models.ResourceUpdate) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Resource, error)
	DeductQuantity(ctx context.Context, id uuid.UUID, amount float64) (int64, error)
	AddQuantity(ctx context.Context, id uuid.UUID, amount float64) (int64, error)
}

type resourceRepo struct {
	db DB
}

func NewResourceRepo(db DB) ResourceRepository {
	return &resourceRepo{db: db}
}

func (r *resourceRepo) Create(ctx context.Context, resource *models.Resource) error {
	query := `
		INSERT INTO resources (id, name, quantity, unit, last_updated)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.db.Exec(ctx, query, resource.ID, resource.Name, resource.Quantity, resource.Unit)
	return err
}

func (r *resourceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	resource := &models.Resource{}
	query := `
		SELECT id, name, quantity, unit, last_updated
		FROM resources
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&resource.ID, &resource.Name, &resource.Quantity, &resource.Unit, &resource.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return resource, nil
}

// GetQuantities reads the quantities for a set of resources in one statement,
// so the caller sees a single consistent snapshot rather than per-id re-reads.
func (r *resourceRepo) GetQuantities(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]float64, error) {
	query := `
		SELECT id, quantity
		FROM resources
		WHERE id = ANY($1)
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quantities := make(map[uuid.UUID]float64, len(ids))
	for rows.Next() {
		var id uuid.UUID
		var quantity float64
		if err := rows.Scan(&id, &quantity); err != nil {
			return nil, err
		}
		quantities[id] = quantity
	}
	return quantities, rows.Err()
}

func (r *resourceRepo) Update(ctx context.Context, id uuid.UUID, update *models.ResourceUpdate) (int64, error) {
	sets := ""
	args := []interface{}{}
	argCount := 0

	if update.Name != nil {
		argCount++
		sets += fmt.Sprintf("name = $%d, ", argCount)
		args = append(args, *update.Name)
	}
	if update.Quantity != nil {
		argCount++
		sets += fmt.Sprintf("quantity = $%d, ", argCount)
		args = append(args, *update.Quantity)
	}
	if update.Unit != nil {
		argCount++
		sets += fmt.Sprintf("unit = $%d, ", argCount)
		args = append(args, *update.Unit)
	}
	if argCount == 0 {
		return 0, &common.InvalidInputError{Field: "update", Reason: "no fields supplied"}
	}

	argCount++
	query := fmt.Sprintf(`UPDATE resources SET %slast_updated = NOW() WHERE id = $%d`, sets, argCount)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *resourceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM resources WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *resourceRepo) List(ctx context.Context, limit, offset int) ([]*models.Resource, error) {
	query := `
		SELECT id, name, quantity, unit, last_updated
		FROM resources
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []*models.Resource
	for rows.Next() {
		resource := &models.Resource{}
		if err := rows.Scan(&resource.ID, &resource.Name, &resource.Quantity, &resource.Unit, &resource.LastUpdated); err != nil {
			return nil, err
		}
		resources = append(resources, resource)
	}
	return resources, rows.Err()
}

// DeductQuantity applies a guarded deduction. The quantity check and the write
// are one statement, so a row is only affected when stock suffices; the caller
// inspects the affected count to distinguish success from shortfall.
func (r *resourceRepo) DeductQuantity(ctx context.Context, id uuid.UUID, amount float64) (int64, error) {
	query := `
		UPDATE resources
		SET quantity = quantity - $2, last_updated = NOW()
		WHERE id = $1 AND quantity >= $2
	`
	tag, err := r.db.Exec(ctx, query, id, amount)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *resourceRepo) AddQuantity(ctx context.Context, id uuid.UUID, amount float64) (int64, error) {
	query := `
		UPDATE resources
		SET quantity = quantity + $2, last_updated = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, amount)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
