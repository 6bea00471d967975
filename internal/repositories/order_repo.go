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

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, id uuid.UUID, update *models.OrderUpdate) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Order, error)
}

type orderRepo struct {
	db DB
}

func NewOrderRepo(db DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, customer_name, description, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	_, err := r.db.Exec(ctx, query, order.ID, order.CustomerName, order.Description)
	return err
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order := &models.Order{}
	query := `
		SELECT id, customer_name, description, created_at
		FROM orders
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&order.ID, &order.CustomerName, &order.Description, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) Update(ctx context.Context, id uuid.UUID, update *models.OrderUpdate) (int64, error) {
	sets := ""
	args := []interface{}{}
	argCount := 0

	if update.CustomerName != nil {
		argCount++
		sets += fmt.Sprintf("customer_name = $%d, ", argCount)
		args = append(args, *update.CustomerName)
	}
	if update.Description != nil {
		argCount++
		sets += fmt.Sprintf("description = $%d, ", argCount)
		args = append(args, *update.Description)
	}
	if argCount == 0 {
		return 0, &common.InvalidInputError{Field: "update", Reason: "no fields supplied"}
	}

	argCount++
	query := fmt.Sprintf(`UPDATE orders SET %s WHERE id = $%d`, sets[:len(sets)-2], argCount)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *orderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM orders WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *orderRepo) List(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT id, customer_name, description, created_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.CustomerName, &order.Description, &order.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
