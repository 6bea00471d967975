package handlers

import (
	"net/http"
	"strconv"

	"sandwichworks/internal/common"
	"sandwichworks/internal/models"
	"sandwichworks/internal/services"

	"github.com/labstack/echo/v4"
)

// ResourceHandlers handles HTTP requests for ingredient resources
type ResourceHandlers struct {
	ledger    services.LedgerService
	inventory services.InventoryService
}

// NewResourceHandlers creates a new resource handlers instance
func NewResourceHandlers(ledger services.LedgerService, inventory services.InventoryService) *ResourceHandlers {
	return &ResourceHandlers{
		ledger:    ledger,
		inventory: inventory,
	}
}

// CreateResource handles POST /resources
func (h *ResourceHandlers) CreateResource(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Name     string  `json:"name"`
		Quantity float64 `json:"quantity"`
		Unit     string  `json:"unit"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if err := common.ValidateRequiredString(req.Unit, "unit"); err != nil {
		return common.SendValidationError(c, "unit", err.Error())
	}
	if req.Quantity < 0 {
		return common.SendValidationError(c, "quantity", "quantity cannot be negative")
	}

	resource := &models.Resource{
		Name:     req.Name,
		Quantity: req.Quantity,
		Unit:     req.Unit,
	}
	if err := h.ledger.CreateResource(ctx, resource); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, resource)
}

// GetResource handles GET /resources/:id
func (h *ResourceHandlers) GetResource(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "resource_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	resource, err := h.ledger.GetResource(ctx, id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, resource)
}

// ListResources handles GET /resources
func (h *ResourceHandlers) ListResources(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset := parsePagination(c)
	resources, err := h.ledger.ListResources(ctx, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"resources": resources,
		"limit":     limit,
		"offset":    offset,
	})
}

// UpdateResource handles PUT /resources/:id
func (h *ResourceHandlers) UpdateResource(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "resource_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var update models.ResourceUpdate
	if err := c.Bind(&update); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	resource, err := h.ledger.UpdateResource(ctx, id, &update)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, resource)
}

// DeleteResource handles DELETE /resources/:id
func (h *ResourceHandlers) DeleteResource(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "resource_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.ledger.DeleteResource(ctx, id); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RestockResource handles POST /resources/:id/restock
func (h *ResourceHandlers) RestockResource(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "resource_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidatePositiveFloat(req.Amount, "amount", 1000000.0); err != nil {
		return common.SendValidationError(c, "amount", err.Error())
	}

	if err := h.inventory.Restock(ctx, id, req.Amount); err != nil {
		return common.SendDomainError(c, err)
	}

	resource, err := h.ledger.GetResource(ctx, id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, resource)
}

// StockReport handles GET /resources/report
func (h *ResourceHandlers) StockReport(c echo.Context) error {
	ctx := c.Request().Context()

	threshold := 10.0
	if thresholdParam := c.QueryParam("threshold"); thresholdParam != "" {
		if t, err := strconv.ParseFloat(thresholdParam, 64); err == nil && t >= 0 {
			threshold = t
		}
	}

	report, err := h.ledger.StockReport(ctx, threshold)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

func parsePagination(c echo.Context) (int, int) {
	limit := 50
	offset := 0

	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 {
			limit = l
		}
	}
	if offsetParam := c.QueryParam("offset"); offsetParam != "" {
		if o, err := strconv.Atoi(offsetParam); err == nil && o >= 0 {
			offset = o
		}
	}

	limit, offset, _ = common.ValidatePaginationParams(limit, offset)
	return limit, offset
}
