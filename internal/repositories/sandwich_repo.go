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

type SandwichRepository interface {
	Create(ctx context.Context, sandwich *models.Sandwich) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Sandwich, error)
	Update(ctx context.Context, id uuid.UUID, update *models.SandwichUpdate) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Sandwich, error)
}

type sandwichRepo struct {
	db DB
}

func NewSandwichRepo(db DB) SandwichRepository {
	return &sandwichRepo{db: db}
}

func (r *sandwichRepo) Create(ctx context.Context, sandwich *models.Sandwich) error {
	query := `
		INSERT INTO sandwiches (id, name, price, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, sandwich.ID, sandwich.Name, sandwich.Price)
	return err
}

func (r *sandwichRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Sandwich, error) {
	sandwich := &models.Sandwich{}
	query := `
		SELECT id, name, price, created_at, updated_at
		FROM sandwiches
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&sandwich.ID, &sandwich.Name, &sandwich.Price, &sandwich.CreatedAt, &sandwich.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return sandwich, nil
}

func (r *sandwichRepo) Update(ctx context.Context, id uuid.UUID, update *models.SandwichUpdate) (int64, error) {
	sets := ""
	args := []interface{}{}
	argCount := 0

	if update.Name != nil {
		argCount++
		sets += fmt.Sprintf("name = $%d, ", argCount)
		args = append(args, *update.Name)
	}
	if update.Price != nil {
		argCount++
		sets += fmt.Sprintf("price = $%d, ", argCount)
		args = append(args, *update.Price)
	}
	if argCount == 0 {
		return 0, &common.InvalidInputError{Field: "update", Reason: "no fields supplied"}
	}

	argCount++
	query := fmt.Sprintf(`UPDATE sandwiches SET %supdated_at = NOW() WHERE id = $%d`, sets, argCount)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *sandwichRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM sandwiches WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *sandwichRepo) List(ctx context.Context, limit, offset int) ([]*models.Sandwich, error) {
	query := `
		SELECT id, name, price, created_at, updated_at
		FROM sandwiches
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sandwiches []*models.Sandwich
	for rows.Next() {
		sandwich := &models.Sandwich{}
		if err := rows.Scan(&sandwich.ID, &sandwich.Name, &sandwich.Price, &sandwich.CreatedAt, &sandwich.UpdatedAt); err != nil {
			return nil, err
		}
		sandwiches = append(sandwiches, sandwich)
	}
	return sandwiches, rows.Err()
}
