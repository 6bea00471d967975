package handlers

import (
	"net/http"

	"sandwichworks/internal/common"
	"sandwichworks/internal/models"
	"sandwichworks/internal/services"

	"github.com/labstack/echo/v4"
)

// SandwichHandlers handles HTTP requests for sandwich variants
type SandwichHandlers struct {
	ledger services.LedgerService
}

// NewSandwichHandlers creates a new sandwich handlers instance
func NewSandwichHandlers(ledger services.LedgerService) *SandwichHandlers {
	return &SandwichHandlers{ledger: ledger}
}

// CreateSandwich handles POST /sandwiches
func (h *SandwichHandlers) CreateSandwich(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if err := common.ValidatePositiveFloat(req.Price, "price", 10000.0); err != nil {
		return common.SendValidationError(c, "price", err.Error())
	}

	sandwich := &models.Sandwich{
		Name:  req.Name,
		Price: req.Price,
	}
	if err := h.ledger.CreateSandwich(ctx, sandwich); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, sandwich)
}

// GetSandwich handles GET /sandwiches/:id
func (h *SandwichHandlers) GetSandwich(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "sandwich_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	sandwich, err := h.ledger.GetSandwich(ctx, id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, sandwich)
}

// ListSandwiches handles GET /sandwiches
func (h *SandwichHandlers) ListSandwiches(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset := parsePagination(c)
	sandwiches, err := h.ledger.ListSandwiches(ctx, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"sandwiches": sandwiches,
		"limit":      limit,
		"offset":     offset,
	})
}

// UpdateSandwich handles PUT /sandwiches/:id
func (h *SandwichHandlers) UpdateSandwich(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "sandwich_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var update models.SandwichUpdate
	if err := c.Bind(&update); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	sandwich, err := h.ledger.UpdateSandwich(ctx, id, &update)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, sandwich)
}

// DeleteSandwich handles DELETE /sandwiches/:id
func (h *SandwichHandlers) DeleteSandwich(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "sandwich_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.ledger.DeleteSandwich(ctx, id); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
