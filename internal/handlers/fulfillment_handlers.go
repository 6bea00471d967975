package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"sandwichworks/internal/common"
	"sandwichworks/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func parsePositiveInt(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("value must be positive")
	}
	return n, nil
}

// FulfillmentHandlers handles stock checks and order fulfillment
type FulfillmentHandlers struct {
	ledger    services.LedgerService
	inventory services.InventoryService
	catalog   services.CatalogService
}

// NewFulfillmentHandlers creates a new fulfillment handlers instance
func NewFulfillmentHandlers(ledger services.LedgerService, inventory services.InventoryService, catalog services.CatalogService) *FulfillmentHandlers {
	return &FulfillmentHandlers{
		ledger:    ledger,
		inventory: inventory,
		catalog:   catalog,
	}
}

// FulfillOrder handles POST /orders/:id/fulfill
//
// Deducts every ingredient of the requested sandwich and records the
// line item in one transaction. Any shortage or missing reference rolls
// the whole thing back.
func (h *FulfillmentHandlers) FulfillOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := common.ValidateUUID(c.Param("id"), "order_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		SandwichID string `json:"sandwich_id"`
		Quantity   int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	sandwichID, err := common.ValidateUUID(req.SandwichID, "sandwich_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	if err := common.ValidatePositiveInteger(req.Quantity, "quantity", 1000); err != nil {
		return common.SendValidationError(c, "quantity", err.Error())
	}

	detail, err := h.ledger.Fulfill(ctx, orderID, sandwichID, req.Quantity)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, detail)
}

// CheckStock handles GET /sandwiches/:id/availability
//
// Advisory only: a positive answer can go stale before a later fulfill,
// which re-checks under its own transaction.
func (h *FulfillmentHandlers) CheckStock(c echo.Context) error {
	ctx := c.Request().Context()

	sandwichID, err := common.ValidateUUID(c.Param("id"), "sandwich_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	quantity := 1
	if quantityParam := c.QueryParam("quantity"); quantityParam != "" {
		q, parseErr := parsePositiveInt(quantityParam)
		if parseErr != nil {
			return common.SendValidationError(c, "quantity", "quantity must be a positive integer")
		}
		quantity = q
	}

	items, err := h.catalog.IngredientsFor(ctx, sandwichID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	needed := make(map[uuid.UUID]float64, len(items))
	for _, item := range items {
		needed[item.ResourceID] += item.Amount * float64(quantity)
	}

	available, err := h.inventory.CanFulfill(ctx, needed)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"sandwich_id": sandwichID,
		"quantity":    quantity,
		"available":   available,
	})
}
