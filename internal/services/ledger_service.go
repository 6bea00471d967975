package services

import (
	"context"
	"errors"
	"log"
	"time"

	"sandwichworks/internal/caching"
	"sandwichworks/internal/common"
	"sandwichworks/internal/models"
	"sandwichworks/internal/repositories"
	"sandwichworks/internal/validate"

	"github.com/google/uuid"
)

const sandwichTTL = 30 * time.Minute

// LedgerService orchestrates all entity writes. Reference and uniqueness
// checks run on the same transaction as the write they guard; constraint
// violations the storage layer still surfaces (a lost race) roll back and map
// to the same typed kinds the pre-checks return.
type LedgerService interface {
	// Resources
	CreateResource(ctx context.Context, resource *models.Resource) error
	GetResource(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	ListResources(ctx context.Context, limit, offset int) ([]*models.Resource, error)
	UpdateResource(ctx context.Context, id uuid.UUID, update *models.ResourceUpdate) (*models.Resource, error)
	DeleteResource(ctx context.Context, id uuid.UUID) error
	StockReport(ctx context.Context, threshold float64) (*models.StockReport, error)

	// Sandwiches
	CreateSandwich(ctx context.Context, sandwich *models.Sandwich) error
	GetSandwich(ctx context.Context, id uuid.UUID) (*models.Sandwich, error)
	ListSandwiches(ctx context.Context, limit, offset int) ([]*models.Sandwich, error)
	UpdateSandwich(ctx context.Context, id uuid.UUID, update *models.SandwichUpdate) (*models.Sandwich, error)
	DeleteSandwich(ctx context.Context, id uuid.UUID) error

	// Recipes
	CreateRecipe(ctx context.Context, recipe *models.Recipe) error
	GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	ListRecipes(ctx context.Context, limit, offset int) ([]*models.Recipe, error)
	UpdateRecipe(ctx context.Context, id uuid.UUID, update *models.RecipeUpdate) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, id uuid.UUID) error

	// Orders
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, limit, offset int) ([]*models.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, update *models.OrderUpdate) (*models.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error

	// Order details
	CreateOrderDetail(ctx context.Context, detail *models.OrderDetail) error
	GetOrderDetail(ctx context.Context, id uuid.UUID) (*models.OrderDetail, error)
	ListOrderDetails(ctx context.Context, limit, offset int) ([]*models.OrderDetail, error)
	ListOrderDetailsByOrder(ctx context.Context, orderID uuid.UUID) ([]*models.OrderDetail, error)
	UpdateOrderDetail(ctx context.Context, id uuid.UUID, update *models.OrderDetailUpdate) (*models.OrderDetail, error)
	DeleteOrderDetail(ctx context.Context, id uuid.UUID) error

	// Fulfill consumes a sandwich's ingredients and records the line item in
	// one transaction. On InsufficientStock no record is created.
	Fulfill(ctx context.Context, orderID, sandwichID uuid.UUID, quantity int) (*models.OrderDetail, error)
}

type ledgerService struct {
	pool         repositories.Pool
	inventory    InventoryService
	catalog      CatalogService
	cacheService caching.CacheService
}

func NewLedgerService(pool repositories.Pool, inventory InventoryService, catalog CatalogService, cacheService caching.CacheService) LedgerService {
	return &ledgerService{
		pool:         pool,
		inventory:    inventory,
		catalog:      catalog,
		cacheService: cacheService,
	}
}

// --- Resources ---

func (s *ledgerService) CreateResource(ctx context.Context, resource *models.Resource) error {
	if resource.Name == "" {
		return &common.InvalidInputError{Field: "name", Reason: "is required"}
	}
	if resource.Quantity < 0 {
		return &common.InvalidInputError{Field: "quantity", Reason: "cannot be negative"}
	}
	if resource.ID == uuid.Nil {
		resource.ID = uuid.New()
	}

	if err := repositories.NewResourceRepo(s.pool).Create(ctx, resource); err != nil {
		return common.MapStorageError(err, validate.EntityResource)
	}
	return nil
}

func (s *ledgerService) GetResource(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	return repositories.NewResourceRepo(s.pool).GetByID(ctx, id)
}

func (s *ledgerService) ListResources(ctx context.Context, limit, offset int) ([]*models.Resource, error) {
	resources, err := repositories.NewResourceRepo(s.pool).List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if resources == nil {
		resources = []*models.Resource{}
	}
	return resources, nil
}

func (s *ledgerService) UpdateResource(ctx context.Context, id uuid.UUID, update *models.ResourceUpdate) (*models.Resource, error) {
	if update.Quantity != nil && *update.Quantity < 0 {
		return nil, &common.InvalidInputError{Field: "quantity", Reason: "cannot be negative"}
	}
	if update.Name != nil && *update.Name == "" {
		return nil, &common.InvalidInputError{Field: "name", Reason: "cannot be empty"}
	}

	repo := repositories.NewResourceRepo(s.pool)
	affected, err := repo.Update(ctx, id, update)
	if err != nil {
		return nil, common.MapStorageError(err, validate.EntityResource)
	}
	if affected == 0 {
		return nil, common.ErrNotFound
	}
	return repo.GetByID(ctx, id)
}

func (s *ledgerService) DeleteResource(ctx context.Context, id uuid.UUID) error {
	// Deleting a resource still referenced by a recipe is rejected by the
	// foreign key, mapped to Conflict. Deleting a missing id succeeds.
	if err := repositories.NewResourceRepo(s.pool).Delete(ctx, id); err != nil {
		return common.MapStorageError(err, validate.EntityResource)
	}
	return nil
}

func (s *ledgerService) StockReport(ctx context.Context, threshold float64) (*models.StockReport, error) {
	resources, err := s.ListResources(ctx, 1000, 0)
	if err != nil {
		return nil, err
	}

	report := &models.StockReport{
		Resources:  resources,
		TotalKinds: len(resources),
		Threshold:  threshold,
	}
	for _, resource := range resources {
		if resource.Quantity <= threshold {
			report.LowStockCount++
		}
	}
	return report, nil
}

// --- Sandwiches ---

func (s *ledgerService) CreateSandwich(ctx context.Context, sandwich *models.Sandwich) error {
	if sandwich.Name == "" {
		return &common.InvalidInputError{Field: "name", Reason: "is required"}
	}
	if sandwich.Price <= 0 {
		return &common.InvalidInputError{Field: "price", Reason: "must be positive"}
	}
	if sandwich.ID == uuid.Nil {
		sandwich.ID = uuid.New()
	}

	if err := repositories.NewSandwichRepo(s.pool).Create(ctx, sandwich); err != nil {
		return common.MapStorageError(err, validate.EntitySandwich)
	}
	return nil
}

func (s *ledgerService) GetSandwich(ctx context.Context, id uuid.UUID) (*models.Sandwich, error) {
	if cached, err := s.cacheService.GetSandwich(ctx, id); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("Cache error for sandwich %s: %v", id.String(), err)
	}

	sandwich, err := repositories.NewSandwichRepo(s.pool).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cacheService.SetSandwich(ctx, sandwich, sandwichTTL); cacheErr != nil {
		log.Printf("Failed to cache sandwich %s: %v", id.String(), cacheErr)
	}
	return sandwich, nil
}

func (s *ledgerService) ListSandwiches(ctx context.Context, limit, offset int) ([]*models.Sandwich, error) {
	sandwiches, err := repositories.NewSandwichRepo(s.pool).List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if sandwiches == nil {
		sandwiches = []*models.Sandwich{}
	}
	return sandwiches, nil
}

func (s *ledgerService) UpdateSandwich(ctx context.Context, id uuid.UUID, update *models.SandwichUpdate) (*models.Sandwich, error) {
	if update.Name != nil && *update.Name == "" {
		return nil, &common.InvalidInputError{Field: "name", Reason: "cannot be empty"}
	}
	if update.Price != nil && *update.Price <= 0 {
		return nil, &common.InvalidInputError{Field: "price", Reason: "must be positive"}
	}

	repo := repositories.NewSandwichRepo(s.pool)
	affected, err := repo.Update(ctx, id, update)
	if err != nil {
		return nil, common.MapStorageError(err, validate.EntitySandwich)
	}
	if affected == 0 {
		return nil, common.ErrNotFound
	}

	if cacheErr := s.cacheService.DeleteSandwich(ctx, id); cacheErr != nil {
		log.Printf("Failed to invalidate sandwich %s: %v", id.String(), cacheErr)
	}
	return repo.GetByID(ctx, id)
}

func (s *ledgerService) DeleteSandwich(ctx context.Context, id uuid.UUID) error {
	if err := repositories.NewSandwichRepo(s.pool).Delete(ctx, id); err != nil {
		return common.MapStorageError(err, validate.EntitySandwich)
	}
	if cacheErr := s.cacheService.DeleteSandwich(ctx, id); cacheErr != nil {
		log.Printf("Failed to invalidate sandwich %s: %v", id.String(), cacheErr)
	}
	return nil
}

// --- Recipes ---

func (s *ledgerService) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	if recipe.Amount <= 0 {
		return &common.InvalidInputError{Field: "amount", Reason: "must be positive"}
	}
	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := validate.RequireSandwich(ctx, tx, recipe.SandwichID); err != nil {
		return err
	}
	if err := validate.RequireResource(ctx, tx, recipe.ResourceID); err != nil {
		return err
	}
	if err := validate.RequireRecipeUnique(ctx, tx, recipe.SandwichID, recipe.ResourceID, uuid.Nil); err != nil {
		return err
	}

	if err := repositories.NewRecipeRepo(tx).Create(ctx, recipe); err != nil {
		return common.MapStorageError(err, validate.EntityRecipe)
	}
	if err := tx.Commit(ctx); err != nil {
		return common.MapStorageError(err, validate.EntityRecipe)
	}

	s.catalog.InvalidateRecipe(ctx, recipe.SandwichID)
	return nil
}

func (s *ledgerService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	return repositories.NewRecipeRepo(s.pool).GetByID(ctx, id)
}

func (s *ledgerService) ListRecipes(ctx context.Context, limit, offset int) ([]*models.Recipe, error) {
	recipes, err := repositories.NewRecipeRepo(s.pool).List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if recipes == nil {
		recipes = []*models.Recipe{}
	}
	return recipes, nil
}

func (s *ledgerService) UpdateRecipe(ctx context.Context, id uuid.UUID, update *models.RecipeUpdate) (*models.Recipe, error) {
	if update.Amount != nil && *update.Amount <= 0 {
		return nil, &common.InvalidInputError{Field: "amount", Reason: "must be positive"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	repo := repositories.NewRecipeRepo(tx)
	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Changed references are revalidated exactly as on create; untouched
	// fields keep their current values for the uniqueness check.
	sandwichID := existing.SandwichID
	resourceID := existing.ResourceID
	if update.SandwichID != nil {
		sandwichID = *update.SandwichID
		if err := validate.RequireSandwich(ctx, tx, sandwichID); err != nil {
			return nil, err
		}
	}
	if update.ResourceID != nil {
		resourceID = *update.ResourceID
		if err := validate.RequireResource(ctx, tx, resourceID); err != nil {
			return nil, err
		}
	}
	if update.SandwichID != nil || update.ResourceID != nil {
		if err := validate.RequireRecipeUnique(ctx, tx, sandwichID, resourceID, id); err != nil {
			return nil, err
		}
	}

	affected, err := repo.Update(ctx, id, update)
	if err != nil {
		return nil, common.MapStorageError(err, validate.EntityRecipe)
	}
	if affected == 0 {
		return nil, common.ErrNotFound
	}

	updated, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, common.MapStorageError(err, validate.EntityRecipe)
	}

	s.catalog.InvalidateRecipe(ctx, existing.SandwichID)
	if sandwichID != existing.SandwichID {
		s.catalog.InvalidateRecipe(ctx, sandwichID)
	}
	return updated, nil
}

func (s *ledgerService) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	repo := repositories.NewRecipeRepo(s.pool)

	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil // idempotent: deleting a missing recipe succeeds
		}
		return err
	}

	if err := repo.Delete(ctx, id); err != nil {
		return common.MapStorageError(err, validate.EntityRecipe)
	}
	s.catalog.InvalidateRecipe(ctx, existing.SandwichID)
	return nil
}

// --- Orders ---

func (s *ledgerService) CreateOrder(ctx context.Context, order *models.Order) error {
	if err := common.ValidateOptionalString(order.CustomerName, "customer_name", 200); err != nil {
		return &common.InvalidInputError{Field: "customer_name", Reason: err.Error()}
	}
	if err := common.ValidateOptionalString(order.Description, "description", 1000); err != nil {
		return &common.InvalidInputError{Field: "description", Reason: err.Error()}
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	// Orders without an explicit customer name are attributed to the
	// session that placed them, when the session record carries one.
	if order.CustomerName == nil {
		if sessionID, ok := common.GetSessionIDFromContext(ctx); ok {
			customerRef, err := s.cacheService.GetSession(ctx, sessionID.String())
			if err != nil {
				log.Printf("Failed to read session %s: %v", sessionID.String(), err)
			} else if customerRef != "" {
				order.CustomerName = &customerRef
			}
		}
	}

	if err := repositories.NewOrderRepo(s.pool).Create(ctx, order); err != nil {
		return common.MapStorageError(err, validate.EntityOrder)
	}
	log.Printf("Order %s created for %q", order.ID.String(), common.SafeString(order.CustomerName))
	return nil
}

func (s *ledgerService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return repositories.NewOrderRepo(s.pool).GetByID(ctx, id)
}

func (s *ledgerService) ListOrders(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	orders, err := repositories.NewOrderRepo(s.pool).List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return orders, nil
}

func (s *ledgerService) UpdateOrder(ctx context.Context, id uuid.UUID, update *models.OrderUpdate) (*models.Order, error) {
	repo := repositories.NewOrderRepo(s.pool)
	affected, err := repo.Update(ctx, id, update)
	if err != nil {
		return nil, common.MapStorageError(err, validate.EntityOrder)
	}
	if affected == 0 {
		return nil, common.ErrNotFound
	}
	return repo.GetByID(ctx, id)
}

func (s *ledgerService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if err := repositories.NewOrderRepo(s.pool).Delete(ctx, id); err != nil {
		return common.MapStorageError(err, validate.EntityOrder)
	}
	return nil
}

// --- Order details ---

func (s *ledgerService) CreateOrderDetail(ctx context.Context, detail *models.OrderDetail) error {
	if detail.Amount <= 0 {
		return &common.InvalidInputError{Field: "amount", Reason: "must be positive"}
	}
	if detail.ID == uuid.Nil {
		detail.ID = uuid.New()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := validate.RequireOrder(ctx, tx, detail.OrderID); err != nil {
		return err
	}
	if err := validate.RequireSandwich(ctx, tx, detail.SandwichID); err != nil {
		return err
	}

	if err := repositories.NewOrderDetailRepo(tx).Create(ctx, detail); err != nil {
		return common.MapStorageError(err, validate.EntityOrderDetail)
	}
	if err := tx.Commit(ctx); err != nil {
		return common.MapStorageError(err, validate.EntityOrderDetail)
	}
	return nil
}

func (s *ledgerService) GetOrderDetail(ctx context.Context, id uuid.UUID) (*models.OrderDetail, error) {
	return repositories.NewOrderDetailRepo(s.pool).GetByID(ctx, id)
}

func (s *ledgerService) ListOrderDetails(ctx context.Context, limit, offset int) ([]*models.OrderDetail, error) {
	details, err := repositories.NewOrderDetailRepo(s.pool).List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if details == nil {
		details = []*models.OrderDetail{}
	}
	return details, nil
}

func (s *ledgerService) ListOrderDetailsByOrder(ctx context.Context, orderID uuid.UUID) ([]*models.OrderDetail, error) {
	details, err := repositories.NewOrderDetailRepo(s.pool).ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if details == nil {
		details = []*models.OrderDetail{}
	}
	return details, nil
}

func (s *ledgerService) UpdateOrderDetail(ctx context.Context, id uuid.UUID, update *models.OrderDetailUpdate) (*models.OrderDetail, error) {
	if update.Amount != nil && *update.Amount <= 0 {
		return nil, &common.InvalidInputError{Field: "amount", Reason: "must be positive"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	repo := repositories.NewOrderDetailRepo(tx)
	if _, err := repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if update.OrderID != nil {
		if err := validate.RequireOrder(ctx, tx, *update.OrderID); err != nil {
			return nil, err
		}
	}
	if update.SandwichID != nil {
		if err := validate.RequireSandwich(ctx, tx, *update.SandwichID); err != nil {
			return nil, err
		}
	}

	affected, err := repo.Update(ctx, id, update)
	if err != nil {
		return nil, common.MapStorageError(err, validate.EntityOrderDetail)
	}
	if affected == 0 {
		return nil, common.ErrNotFound
	}

	updated, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, common.MapStorageError(err, validate.EntityOrderDetail)
	}
	return updated, nil
}

func (s *ledgerService) DeleteOrderDetail(ctx context.Context, id uuid.UUID) error {
	if err := repositories.NewOrderDetailRepo(s.pool).Delete(ctx, id); err != nil {
		return common.MapStorageError(err, validate.EntityOrderDetail)
	}
	return nil
}

// --- Fulfillment ---

// Fulfill checks the order and sandwich exist, consumes the recipe's
// ingredients scaled by quantity, and records the line item. Everything runs
// on one transaction: an insufficient resource rolls the whole attempt back.
func (s *ledgerService) Fulfill(ctx context.Context, orderID, sandwichID uuid.UUID, quantity int) (*models.OrderDetail, error) {
	if quantity <= 0 {
		return nil, &common.InvalidInputError{Field: "quantity", Reason: "must be positive"}
	}

	items, err := s.catalog.IngredientsFor(ctx, sandwichID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, &common.ReferenceNotFoundError{Entity: validate.EntitySandwich, ID: sandwichID}
		}
		return nil, err
	}

	needed := make(map[uuid.UUID]float64, len(items))
	for _, item := range items {
		needed[item.ResourceID] += item.Amount * float64(quantity)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := validate.RequireOrder(ctx, tx, orderID); err != nil {
		return nil, err
	}
	if err := validate.RequireSandwich(ctx, tx, sandwichID); err != nil {
		return nil, err
	}

	if err := s.inventory.ConsumeIn(ctx, tx, needed); err != nil {
		return nil, err
	}

	detail := &models.OrderDetail{
		ID:         uuid.New(),
		OrderID:    orderID,
		SandwichID: sandwichID,
		Amount:     quantity,
	}
	if err := repositories.NewOrderDetailRepo(tx).Create(ctx, detail); err != nil {
		return nil, common.MapStorageError(err, validate.EntityOrderDetail)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, common.MapStorageError(err, validate.EntityOrderDetail)
	}
	return detail, nil
}
