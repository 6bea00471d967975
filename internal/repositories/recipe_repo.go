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

type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	GetItemsBySandwich(ctx context.Context, sandwichID uuid.UUID) ([]models.RecipeItem, error)
	Update(ctx context.Context, id uuid.UUID, update *models.RecipeUpdate) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Recipe, error)
}

type recipeRepo struct {
	db DB
}

func NewRecipeRepo(db DB) RecipeRepository {
	return &recipeRepo{db: db}
}

func (r *recipeRepo) Create(ctx context.Context, recipe *models.Recipe) error {
	query := `
		INSERT INTO recipes (id, sandwich_id, resource_id, amount)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, recipe.ID, recipe.SandwichID, recipe.ResourceID, recipe.Amount)
	return err
}

func (r *recipeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	recipe := &models.Recipe{}
	query := `
		SELECT id, sandwich_id, resource_id, amount
		FROM recipes
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&recipe.ID, &recipe.SandwichID, &recipe.ResourceID, &recipe.Amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return recipe, nil
}

// GetItemsBySandwich returns the full ingredient list of a sandwich in a
// stable order. An empty result means the sandwich has no recipe.
func (r *recipeRepo) GetItemsBySandwich(ctx context.Context, sandwichID uuid.UUID) ([]models.RecipeItem, error) {
	query := `
		SELECT resource_id, amount
		FROM recipes
		WHERE sandwich_id = $1
		ORDER BY resource_id ASC
	`
	rows, err := r.db.Query(ctx, query, sandwichID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.RecipeItem
	for rows.Next() {
		var item models.RecipeItem
		if err := rows.Scan(&item.ResourceID, &item.Amount); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *recipeRepo) Update(ctx context.Context, id uuid.UUID, update *models.RecipeUpdate) (int64, error) {
	sets := ""
	args := []interface{}{}
	argCount := 0

	if update.SandwichID != nil {
		argCount++
		sets += fmt.Sprintf("sandwich_id = $%d, ", argCount)
		args = append(args, *update.SandwichID)
	}
	if update.ResourceID != nil {
		argCount++
		sets += fmt.Sprintf("resource_id = $%d, ", argCount)
		args = append(args, *update.ResourceID)
	}
	if update.Amount != nil {
		argCount++
		sets += fmt.Sprintf("amount = $%d, ", argCount)
		args = append(args, *update.Amount)
	}
	if argCount == 0 {
		return 0, &common.InvalidInputError{Field: "update", Reason: "no fields supplied"}
	}

	argCount++
	query := fmt.Sprintf(`UPDATE recipes SET %s WHERE id = $%d`, sets[:len(sets)-2], argCount)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *recipeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM recipes WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *recipeRepo) List(ctx context.Context, limit, offset int) ([]*models.Recipe, error) {
	query := `
		SELECT id, sandwich_id, resource_id, amount
		FROM recipes
		ORDER BY sandwich_id ASC, resource_id ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []*models.Recipe
	for rows.Next() {
		recipe := &models.Recipe{}
		if err := rows.Scan(&recipe.ID, &recipe.SandwichID, &recipe.ResourceID, &recipe.Amount); err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}
	return recipes, rows.Err()
}
