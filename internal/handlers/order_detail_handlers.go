package handlers

import (
	"net/http"

	"sandwichworks/internal/common"
	"sandwichworks/internal/models"
	"sandwichworks/internal/services"

	"github.com/labstack/echo/v4"
)

// OrderDetailHandlers handles HTTP requests for order line items
type OrderDetailHandlers struct {
	ledger services.LedgerService
}

// NewOrderDetailHandlers creates a new order detail handlers instance
func NewOrderDetailHandlers(ledger services.LedgerService) *OrderDetailHandlers {
	return &OrderDetailHandlers{ledger: ledger}
}

// CreateOrderDetail handles POST /order-details
//
// This records a line item without touching stock. Fulfillment that
// consumes ingredients goes through POST /orders/:id/fulfill instead.
func (h *OrderDetailHandlers) CreateOrderDetail(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		OrderID    string `json:"order_id"`
		SandwichID string `json:"sandwich_id"`
		Amount     int    `json:"amount"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	orderID, err := common.ValidateUUID(req.OrderID, "order_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	sandwichID, err := common.ValidateUUID(req.SandwichID, "sandwich_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	if err := common.ValidatePositiveInteger(req.Amount, "amount", 1000); err != nil {
		return common.SendValidationError(c, "amount", err.Error())
	}

	detail := &models.OrderDetail{
		OrderID:    orderID,
		SandwichID: sandwichID,
		Amount:     req.Amount,
	}
	if err := h.ledger.CreateOrderDetail(ctx, detail); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, detail)
}

// GetOrderDetail handles GET /order-details/:id
func (h *OrderDetailHandlers) GetOrderDetail(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "order_detail_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	detail, err := h.ledger.GetOrderDetail(ctx, id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// ListOrderDetails handles GET /order-details
func (h *OrderDetailHandlers) ListOrderDetails(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset := parsePagination(c)
	details, err := h.ledger.ListOrderDetails(ctx, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"order_details": details,
		"limit":         limit,
		"offset":        offset,
	})
}

// UpdateOrderDetail handles PUT /order-details/:id
func (h *OrderDetailHandlers) UpdateOrderDetail(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "order_detail_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var update models.OrderDetailUpdate
	if err := c.Bind(&update); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	detail, err := h.ledger.UpdateOrderDetail(ctx, id, &update)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// DeleteOrderDetail handles DELETE /order-details/:id
func (h *OrderDetailHandlers) DeleteOrderDetail(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "order_detail_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.ledger.DeleteOrderDetail(ctx, id); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
