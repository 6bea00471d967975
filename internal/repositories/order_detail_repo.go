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

type OrderDetailRepository interface {
	Create(ctx context.Context, detail *models.OrderDetail) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.OrderDetail, error)
	Update(ctx context.Context, id uuid.UUID, update *models.OrderDetailUpdate) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.OrderDetail, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*models.OrderDetail, error)
}

type orderDetailRepo struct {
	db DB
}

func NewOrderDetailRepo(db DB) OrderDetailRepository {
	return &orderDetailRepo{db: db}
}

func (r *orderDetailRepo) Create(ctx context.Context, detail *models.OrderDetail) error {
	query := `
		INSERT INTO order_details (id, order_id, sandwich_id, amount, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.db.Exec(ctx, query, detail.ID, detail.OrderID, detail.SandwichID, detail.Amount)
	return err
}

func (r *orderDetailRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.OrderDetail, error) {
	detail := &models.OrderDetail{}
	query := `
		SELECT id, order_id, sandwich_id, amount, created_at
		FROM order_details
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&detail.ID, &detail.OrderID, &detail.SandwichID, &detail.Amount, &detail.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return detail, nil
}

func (r *orderDetailRepo) Update(ctx context.Context, id uuid.UUID, update *models.OrderDetailUpdate) (int64, error) {
	sets := ""
	args := []interface{}{}
	argCount := 0

	if update.OrderID != nil {
		argCount++
		sets += fmt.Sprintf("order_id = $%d, ", argCount)
		args = append(args, *update.OrderID)
	}
	if update.SandwichID != nil {
		argCount++
		sets += fmt.Sprintf("sandwich_id = $%d, ", argCount)
		args = append(args, *update.SandwichID)
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
	query := fmt.Sprintf(`UPDATE order_details SET %s WHERE id = $%d`, sets[:len(sets)-2], argCount)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *orderDetailRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM order_details WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *orderDetailRepo) List(ctx context.Context, limit, offset int) ([]*models.OrderDetail, error) {
	query := `
		SELECT id, order_id, sandwich_id, amount, created_at
		FROM order_details
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []*models.OrderDetail
	for rows.Next() {
		detail := &models.OrderDetail{}
		if err := rows.Scan(&detail.ID, &detail.OrderID, &detail.SandwichID, &detail.Amount, &detail.CreatedAt); err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, rows.Err()
}

func (r *orderDetailRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*models.OrderDetail, error) {
	query := `
		SELECT id, order_id, sandwich_id, amount, created_at
		FROM order_details
		WHERE order_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []*models.OrderDetail
	for rows.Next() {
		detail := &models.OrderDetail{}
		if err := rows.Scan(&detail.ID, &detail.OrderID, &detail.SandwichID, &detail.Amount, &detail.CreatedAt); err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, rows.Err()
}
