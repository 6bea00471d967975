package handlers

import (
	"net/http"

	"sandwichworks/internal/common"
	"sandwichworks/internal/models"
	"sandwichworks/internal/services"

	"github.com/labstack/echo/v4"
)

// RecipeHandlers handles HTTP requests for recipes
type RecipeHandlers struct {
	ledger  services.LedgerService
	catalog services.CatalogService
}

// NewRecipeHandlers creates a new recipe handlers instance
func NewRecipeHandlers(ledger services.LedgerService, catalog services.CatalogService) *RecipeHandlers {
	return &RecipeHandlers{
		ledger:  ledger,
		catalog: catalog,
	}
}

// CreateRecipe handles POST /recipes
func (h *RecipeHandlers) CreateRecipe(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		SandwichID string  `json:"sandwich_id"`
		ResourceID string  `json:"resource_id"`
		Amount     float64 `json:"amount"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	sandwichID, err := common.ValidateUUID(req.SandwichID, "sandwich_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	resourceID, err := common.ValidateUUID(req.ResourceID, "resource_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	if err := common.ValidatePositiveFloat(req.Amount, "amount", 10000.0); err != nil {
		return common.SendValidationError(c, "amount", err.Error())
	}

	recipe := &models.Recipe{
		SandwichID: sandwichID,
		ResourceID: resourceID,
		Amount:     req.Amount,
	}
	if err := h.ledger.CreateRecipe(ctx, recipe); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, recipe)
}

// GetRecipe handles GET /recipes/:id
func (h *RecipeHandlers) GetRecipe(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "recipe_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	recipe, err := h.ledger.GetRecipe(ctx, id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, recipe)
}

// ListRecipes handles GET /recipes
func (h *RecipeHandlers) ListRecipes(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset := parsePagination(c)
	recipes, err := h.ledger.ListRecipes(ctx, limit, offset)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"recipes": recipes,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetIngredients handles GET /sandwiches/:id/ingredients
func (h *RecipeHandlers) GetIngredients(c echo.Context) error {
	ctx := c.Request().Context()

	sandwichID, err := common.ValidateUUID(c.Param("id"), "sandwich_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	items, err := h.catalog.IngredientsFor(ctx, sandwichID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"sandwich_id": sandwichID,
		"ingredients": items,
	})
}

// UpdateRecipe handles PUT /recipes/:id
func (h *RecipeHandlers) UpdateRecipe(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "recipe_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var update models.RecipeUpdate
	if err := c.Bind(&update); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	recipe, err := h.ledger.UpdateRecipe(ctx, id, &update)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, recipe)
}

// DeleteRecipe handles DELETE /recipes/:id
func (h *RecipeHandlers) DeleteRecipe(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "recipe_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.ledger.DeleteRecipe(ctx, id); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
