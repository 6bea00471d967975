package handlers

import (
	"net/http"

	"sandwichworks/internal/common"
	"sandwichworks/internal/models"
	"sandwichworks/internal/services"

	"github.com/labstack/echo/v4"
)

// OrderHandlers handles HTTP requests for customer orders
type OrderHandlers struct {
	ledger services.LedgerService
}

// NewOrderHandlers creates a new order handlers instance
func NewOrderHandlers(ledger services.LedgerService) *OrderHandlers {
	return &OrderHandlers{ledger: ledger}
}

// CreateOrder handles POST /orders
func (h *OrderHandlers) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		CustomerName *string `json:"customer_name"`
		Description  *string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := common.ValidateOptionalString(req.CustomerName, "customer_name", 255); err != nil {
		return common.SendValidationError(c, "customer_name", err.Error())
	}
	if err := common.ValidateOptionalString(req.Description, "description", 2000); err != nil {
		return common.SendValidationError(c, "description", err.Error())
	}

	order := &models.Order{
		CustomerName: req.CustomerName,
		Description:  req.Description,
	}
	if err := h.ledger.CreateOrder(ctx, order); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, order)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "order_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	order, err := h.ledger.GetOrder(ctx, id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// ListOrders handles GET /orders
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset := parsePagination(c)
	orders, err := h.ledger.ListOrders(ctx, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"limit":  limit,
		"offset": offset,
	})
}

// ListOrderItems handles GET /orders/:id/details
func (h *OrderHandlers) ListOrderItems(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "order_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	details, err := h.ledger.ListOrderDetailsByOrder(ctx, id)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"order_id": id,
		"details":  details,
	})
}

// UpdateOrder handles PUT /orders/:id
func (h *OrderHandlers) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "order_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var update models.OrderUpdate
	if err := c.Bind(&update); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	order, err := h.ledger.UpdateOrder(ctx, id, &update)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// DeleteOrder handles DELETE /orders/:id
func (h *OrderHandlers) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "order_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.ledger.DeleteOrder(ctx, id); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
