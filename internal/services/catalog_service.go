package services

import (
	"context"
	"log"
	"time"

	"sandwichworks/internal/caching"
	"sandwichworks/internal/common"
	"sandwichworks/internal/models"
	"sandwichworks/internal/repositories"

	"github.com/google/uuid"
)

// Recipes change rarely compared to how often fulfillment reads them.
const recipeItemsTTL = 10 * time.Minute

// CatalogService is the read-mostly view of sandwich recipes.
type CatalogService interface {
	// IngredientsFor returns the ordered (resource, amount) pairs a sandwich
	// consumes, or ErrNotFound when the sandwich has no recipe.
	IngredientsFor(ctx context.Context, sandwichID uuid.UUID) ([]models.RecipeItem, error)
	// InvalidateRecipe drops the cached ingredient list after a mutation.
	InvalidateRecipe(ctx context.Context, sandwichID uuid.UUID)
}

type catalogService struct {
	pool         repositories.Pool
	cacheService caching.CacheService
}

func NewCatalogService(pool repositories.Pool, cacheService caching.CacheService) CatalogService {
	return &catalogService{
		pool:         pool,
		cacheService: cacheService,
	}
}

func (s *catalogService) IngredientsFor(ctx context.Context, sandwichID uuid.UUID) ([]models.RecipeItem, error) {
	if cached, err := s.cacheService.GetRecipeItems(ctx, sandwichID); cached != nil {
		return cached, nil
	} else if err != nil {
		// Cache errors never fail the read; fall through to the database.
		log.Printf("Cache error for recipe items %s: %v", sandwichID.String(), err)
	}

	items, err := repositories.NewRecipeRepo(s.pool).GetItemsBySandwich(ctx, sandwichID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, common.ErrNotFound
	}

	if cacheErr := s.cacheService.SetRecipeItems(ctx, sandwichID, items, recipeItemsTTL); cacheErr != nil {
		log.Printf("Failed to cache recipe items %s: %v", sandwichID.String(), cacheErr)
	}

	return items, nil
}

func (s *catalogService) InvalidateRecipe(ctx context.Context, sandwichID uuid.UUID) {
	if err := s.cacheService.DeleteRecipeItems(ctx, sandwichID); err != nil {
		log.Printf("Failed to invalidate recipe items %s: %v", sandwichID.String(), err)
	}
}
