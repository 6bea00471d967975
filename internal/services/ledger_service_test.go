package services

import (
	"context"
	"testing"
	"time"

	"sandwichworks/internal/common"
	"sandwichworks/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// Mock cache and catalog services

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetSandwich(ctx context.Context, sandwichID uuid.UUID) (*models.Sandwich, error) {
	args := m.Called(ctx, sandwichID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sandwich), args.Error(1)
}

func (m *MockCacheService) SetSandwich(ctx context.Context, sandwich *models.Sandwich, ttl time.Duration) error {
	args := m.Called(ctx, sandwich, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteSandwich(ctx context.Context, sandwichID uuid.UUID) error {
	args := m.Called(ctx, sandwichID)
	return args.Error(0)
}

func (m *MockCacheService) GetRecipeItems(ctx context.Context, sandwichID uuid.UUID) ([]models.RecipeItem, error) {
	args := m.Called(ctx, sandwichID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RecipeItem), args.Error(1)
}

func (m *MockCacheService) SetRecipeItems(ctx context.Context, sandwichID uuid.UUID, items []models.RecipeItem, ttl time.Duration) error {
	args := m.Called(ctx, sandwichID, items, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteRecipeItems(ctx context.Context, sandwichID uuid.UUID) error {
	args := m.Called(ctx, sandwichID)
	return args.Error(0)
}

func (m *MockCacheService) SetSession(ctx context.Context, sessionID, customerRef string, ttl time.Duration) error {
	args := m.Called(ctx, sessionID, customerRef, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetSession(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateAllCache(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) IngredientsFor(ctx context.Context, sandwichID uuid.UUID) ([]models.RecipeItem, error) {
	args := m.Called(ctx, sandwichID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RecipeItem), args.Error(1)
}

func (m *MockCatalogService) InvalidateRecipe(ctx context.Context, sandwichID uuid.UUID) {
	m.Called(ctx, sandwichID)
}

type LedgerServiceTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	cache   *MockCacheService
	catalog *MockCatalogService
	svc     LedgerService
	context context.Context
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.cache = new(MockCacheService)
	suite.catalog = new(MockCatalogService)
	suite.svc = NewLedgerService(mock, NewInventoryService(mock), suite.catalog, suite.cache)
	suite.context = context.Background()
}

func (suite *LedgerServiceTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

const sandwichExistsQuery = `SELECT EXISTS \(SELECT 1 FROM sandwiches WHERE id = \$1\)`
const resourceExistsQuery = `SELECT EXISTS \(SELECT 1 FROM resources WHERE id = \$1\)`
const orderExistsQuery = `SELECT EXISTS \(SELECT 1 FROM orders WHERE id = \$1\)`
const recipePairQuery = `SELECT EXISTS \(SELECT 1 FROM recipes WHERE sandwich_id = \$1 AND resource_id = \$2 AND id != \$3\)`

const orderDetailByIDQuery = `
		SELECT id, order_id, sandwich_id, amount, created_at
		FROM order_details
		WHERE id = \$1
	`

func existsRow(exists bool) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"exists"}).AddRow(exists)
}

func (suite *LedgerServiceTestSuite) TestCreateRecipe_Success() {
	recipe := &models.Recipe{
		SandwichID: uuid.New(),
		ResourceID: uuid.New(),
		Amount:     2,
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(sandwichExistsQuery).
		WithArgs(recipe.SandwichID).WillReturnRows(existsRow(true))
	suite.mock.ExpectQuery(resourceExistsQuery).
		WithArgs(recipe.ResourceID).WillReturnRows(existsRow(true))
	suite.mock.ExpectQuery(recipePairQuery).
		WithArgs(recipe.SandwichID, recipe.ResourceID, uuid.Nil).WillReturnRows(existsRow(false))
	suite.mock.ExpectExec(`
		INSERT INTO recipes \(id, sandwich_id, resource_id, amount\)
		VALUES \(\$1, \$2, \$3, \$4\)
	`).WithArgs(pgxmock.AnyArg(), recipe.SandwichID, recipe.ResourceID, recipe.Amount).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	suite.catalog.On("InvalidateRecipe", mock.Anything, recipe.SandwichID).Return()

	err := suite.svc.CreateRecipe(suite.context, recipe)
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), uuid.Nil, recipe.ID)
	suite.catalog.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCreateRecipe_MissingSandwich() {
	recipe := &models.Recipe{
		SandwichID: uuid.New(),
		ResourceID: uuid.New(),
		Amount:     1,
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(sandwichExistsQuery).
		WithArgs(recipe.SandwichID).WillReturnRows(existsRow(false))
	suite.mock.ExpectRollback()

	err := suite.svc.CreateRecipe(suite.context, recipe)
	assert.Error(suite.T(), err)

	var refErr *common.ReferenceNotFoundError
	assert.ErrorAs(suite.T(), err, &refErr)
	assert.Equal(suite.T(), "Sandwich", refErr.Entity)
	suite.catalog.AssertNotCalled(suite.T(), "InvalidateRecipe", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCreateRecipe_DuplicatePair() {
	recipe := &models.Recipe{
		SandwichID: uuid.New(),
		ResourceID: uuid.New(),
		Amount:     1,
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(sandwichExistsQuery).
		WithArgs(recipe.SandwichID).WillReturnRows(existsRow(true))
	suite.mock.ExpectQuery(resourceExistsQuery).
		WithArgs(recipe.ResourceID).WillReturnRows(existsRow(true))
	suite.mock.ExpectQuery(recipePairQuery).
		WithArgs(recipe.SandwichID, recipe.ResourceID, uuid.Nil).WillReturnRows(existsRow(true))
	suite.mock.ExpectRollback()

	err := suite.svc.CreateRecipe(suite.context, recipe)
	assert.Error(suite.T(), err)

	var conflictErr *common.ConflictError
	assert.ErrorAs(suite.T(), err, &conflictErr)
}

func (suite *LedgerServiceTestSuite) TestCreateRecipe_NonPositiveAmount() {
	err := suite.svc.CreateRecipe(suite.context, &models.Recipe{
		SandwichID: uuid.New(),
		ResourceID: uuid.New(),
		Amount:     0,
	})
	assert.Error(suite.T(), err)

	var invalidErr *common.InvalidInputError
	assert.ErrorAs(suite.T(), err, &invalidErr)
}

func (suite *LedgerServiceTestSuite) TestUpdateResource_PartialPreservesOtherFields() {
	id := uuid.New()
	now := time.Now()

	suite.mock.ExpectExec(`UPDATE resources SET quantity = \$1, last_updated = NOW\(\) WHERE id = \$2`).
		WithArgs(8.0, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectQuery(`
		SELECT id, name, quantity, unit, last_updated
		FROM resources
		WHERE id = \$1
	`).WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "quantity", "unit", "last_updated"}).
			AddRow(id, "bread", 8.0, "slice", now))

	quantity := 8.0
	result, err := suite.svc.UpdateResource(suite.context, id, &models.ResourceUpdate{Quantity: &quantity})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "bread", result.Name)
	assert.Equal(suite.T(), "slice", result.Unit)
	assert.Equal(suite.T(), 8.0, result.Quantity)
}

func (suite *LedgerServiceTestSuite) TestUpdateResource_NotFound() {
	id := uuid.New()

	suite.mock.ExpectExec(`UPDATE resources SET quantity = \$1, last_updated = NOW\(\) WHERE id = \$2`).
		WithArgs(8.0, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	quantity := 8.0
	result, err := suite.svc.UpdateResource(suite.context, id, &models.ResourceUpdate{Quantity: &quantity})
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	assert.Nil(suite.T(), result)
}

func (suite *LedgerServiceTestSuite) TestDeleteRecipe_Idempotent() {
	id := uuid.New()

	suite.mock.ExpectQuery(`
		SELECT id, sandwich_id, resource_id, amount
		FROM recipes
		WHERE id = \$1
	`).WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	err := suite.svc.DeleteRecipe(suite.context, id)
	assert.NoError(suite.T(), err)
	suite.catalog.AssertNotCalled(suite.T(), "InvalidateRecipe", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestDeleteRecipe_Success() {
	id := uuid.New()
	sandwichID := uuid.New()

	suite.mock.ExpectQuery(`
		SELECT id, sandwich_id, resource_id, amount
		FROM recipes
		WHERE id = \$1
	`).WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "sandwich_id", "resource_id", "amount"}).
			AddRow(id, sandwichID, uuid.New(), 2.0))
	suite.mock.ExpectExec(`DELETE FROM recipes WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	suite.catalog.On("InvalidateRecipe", mock.Anything, sandwichID).Return()

	err := suite.svc.DeleteRecipe(suite.context, id)
	assert.NoError(suite.T(), err)
	suite.catalog.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestDeleteResource_StillReferenced() {
	id := uuid.New()

	suite.mock.ExpectExec(`DELETE FROM resources WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "recipes_resource_id_fkey"})

	err := suite.svc.DeleteResource(suite.context, id)
	assert.Error(suite.T(), err)

	var conflictErr *common.ConflictError
	assert.ErrorAs(suite.T(), err, &conflictErr)
}

func (suite *LedgerServiceTestSuite) TestDeleteResource_MissingIsNoop() {
	id := uuid.New()

	suite.mock.ExpectExec(`DELETE FROM resources WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := suite.svc.DeleteResource(suite.context, id)
	assert.NoError(suite.T(), err)
}

func (suite *LedgerServiceTestSuite) TestCreateOrderDetail_MissingOrder() {
	detail := &models.OrderDetail{
		OrderID:    uuid.New(),
		SandwichID: uuid.New(),
		Amount:     1,
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(orderExistsQuery).
		WithArgs(detail.OrderID).WillReturnRows(existsRow(false))
	suite.mock.ExpectRollback()

	err := suite.svc.CreateOrderDetail(suite.context, detail)
	assert.Error(suite.T(), err)

	var refErr *common.ReferenceNotFoundError
	assert.ErrorAs(suite.T(), err, &refErr)
	assert.Equal(suite.T(), "Order", refErr.Entity)
}

func (suite *LedgerServiceTestSuite) TestCreateOrder_CustomerNameFromSession() {
	sessionID := uuid.New()
	ctx := context.WithValue(suite.context, common.SessionIDKey, sessionID)
	name := "walk-in 7"

	suite.cache.On("GetSession", mock.Anything, sessionID.String()).Return(name, nil)
	suite.mock.ExpectExec(`
		INSERT INTO orders \(id, customer_name, description, created_at\)
		VALUES \(\$1, \$2, \$3, NOW\(\)\)
	`).WithArgs(pgxmock.AnyArg(), &name, (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	order := &models.Order{}
	err := suite.svc.CreateOrder(ctx, order)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), order.CustomerName)
	assert.Equal(suite.T(), name, *order.CustomerName)
	suite.cache.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCreateOrder_ExplicitNameSkipsSession() {
	sessionID := uuid.New()
	ctx := context.WithValue(suite.context, common.SessionIDKey, sessionID)
	name := "Ada"

	suite.mock.ExpectExec(`
		INSERT INTO orders \(id, customer_name, description, created_at\)
		VALUES \(\$1, \$2, \$3, NOW\(\)\)
	`).WithArgs(pgxmock.AnyArg(), &name, (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.svc.CreateOrder(ctx, &models.Order{CustomerName: &name})
	assert.NoError(suite.T(), err)
	suite.cache.AssertNotCalled(suite.T(), "GetSession", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestUpdateOrderDetail_AmountOnlyPreservesReferences() {
	id := uuid.New()
	orderID := uuid.New()
	sandwichID := uuid.New()
	now := time.Now()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(orderDetailByIDQuery).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "sandwich_id", "amount", "created_at"}).
			AddRow(id, orderID, sandwichID, 1, now))
	suite.mock.ExpectExec(`UPDATE order_details SET amount = \$1 WHERE id = \$2`).
		WithArgs(3, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectQuery(orderDetailByIDQuery).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "sandwich_id", "amount", "created_at"}).
			AddRow(id, orderID, sandwichID, 3, now))
	suite.mock.ExpectCommit()

	amount := 3
	result, err := suite.svc.UpdateOrderDetail(suite.context, id, &models.OrderDetailUpdate{Amount: &amount})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), orderID, result.OrderID)
	assert.Equal(suite.T(), sandwichID, result.SandwichID)
	assert.Equal(suite.T(), 3, result.Amount)
}

func (suite *LedgerServiceTestSuite) TestUpdateOrderDetail_MovedToOtherOrderRevalidates() {
	id := uuid.New()
	sandwichID := uuid.New()
	newOrderID := uuid.New()
	now := time.Now()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(orderDetailByIDQuery).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "sandwich_id", "amount", "created_at"}).
			AddRow(id, uuid.New(), sandwichID, 2, now))
	suite.mock.ExpectQuery(orderExistsQuery).
		WithArgs(newOrderID).WillReturnRows(existsRow(true))
	suite.mock.ExpectExec(`UPDATE order_details SET order_id = \$1 WHERE id = \$2`).
		WithArgs(newOrderID, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectQuery(orderDetailByIDQuery).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "sandwich_id", "amount", "created_at"}).
			AddRow(id, newOrderID, sandwichID, 2, now))
	suite.mock.ExpectCommit()

	result, err := suite.svc.UpdateOrderDetail(suite.context, id, &models.OrderDetailUpdate{OrderID: &newOrderID})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), newOrderID, result.OrderID)
	assert.Equal(suite.T(), sandwichID, result.SandwichID)
}

func (suite *LedgerServiceTestSuite) TestUpdateOrderDetail_MovedToMissingSandwich() {
	id := uuid.New()
	newSandwichID := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(orderDetailByIDQuery).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "sandwich_id", "amount", "created_at"}).
			AddRow(id, uuid.New(), uuid.New(), 2, time.Now()))
	suite.mock.ExpectQuery(sandwichExistsQuery).
		WithArgs(newSandwichID).WillReturnRows(existsRow(false))
	suite.mock.ExpectRollback()

	result, err := suite.svc.UpdateOrderDetail(suite.context, id, &models.OrderDetailUpdate{SandwichID: &newSandwichID})
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), result)

	var refErr *common.ReferenceNotFoundError
	assert.ErrorAs(suite.T(), err, &refErr)
	assert.Equal(suite.T(), "Sandwich", refErr.Entity)
}

func (suite *LedgerServiceTestSuite) TestGetSandwich_CacheHit() {
	sandwich := &models.Sandwich{ID: uuid.New(), Name: "club", Price: 7.5}

	suite.cache.On("GetSandwich", mock.Anything, sandwich.ID).Return(sandwich, nil)

	result, err := suite.svc.GetSandwich(suite.context, sandwich.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), sandwich, result)
	suite.cache.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestFulfill_Success() {
	orderID := uuid.New()
	sandwichID := uuid.New()
	ids := sortedTestIDs(2)
	items := []models.RecipeItem{
		{ResourceID: ids[0], Amount: 2},
		{ResourceID: ids[1], Amount: 1},
	}

	suite.catalog.On("IngredientsFor", mock.Anything, sandwichID).Return(items, nil)

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(orderExistsQuery).
		WithArgs(orderID).WillReturnRows(existsRow(true))
	suite.mock.ExpectQuery(sandwichExistsQuery).
		WithArgs(sandwichID).WillReturnRows(existsRow(true))
	suite.mock.ExpectExec(deductQuery).
		WithArgs(ids[0], 4.0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(deductQuery).
		WithArgs(ids[1], 2.0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`
		INSERT INTO order_details \(id, order_id, sandwich_id, amount, created_at\)
		VALUES \(\$1, \$2, \$3, \$4, NOW\(\)\)
	`).WithArgs(pgxmock.AnyArg(), orderID, sandwichID, 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	detail, err := suite.svc.Fulfill(suite.context, orderID, sandwichID, 2)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), orderID, detail.OrderID)
	assert.Equal(suite.T(), sandwichID, detail.SandwichID)
	assert.Equal(suite.T(), 2, detail.Amount)
}

func (suite *LedgerServiceTestSuite) TestFulfill_InsufficientStockRollsBack() {
	orderID := uuid.New()
	sandwichID := uuid.New()
	ids := sortedTestIDs(2)
	items := []models.RecipeItem{
		{ResourceID: ids[0], Amount: 2},
		{ResourceID: ids[1], Amount: 1},
	}

	suite.catalog.On("IngredientsFor", mock.Anything, sandwichID).Return(items, nil)

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(orderExistsQuery).
		WithArgs(orderID).WillReturnRows(existsRow(true))
	suite.mock.ExpectQuery(sandwichExistsQuery).
		WithArgs(sandwichID).WillReturnRows(existsRow(true))
	suite.mock.ExpectExec(deductQuery).
		WithArgs(ids[0], 2.0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectQuery(getByIDQuery).
		WithArgs(ids[0]).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "quantity", "unit", "last_updated"}).
			AddRow(ids[0], "bread", 1.0, "slice", time.Now()))
	suite.mock.ExpectRollback()

	detail, err := suite.svc.Fulfill(suite.context, orderID, sandwichID, 1)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), detail)

	var stockErr *common.InsufficientStockError
	assert.ErrorAs(suite.T(), err, &stockErr)
	assert.Equal(suite.T(), 2.0, stockErr.Needed)
	assert.Equal(suite.T(), 1.0, stockErr.Available)
}

func (suite *LedgerServiceTestSuite) TestFulfill_NoRecipe() {
	orderID := uuid.New()
	sandwichID := uuid.New()

	suite.catalog.On("IngredientsFor", mock.Anything, sandwichID).Return(nil, common.ErrNotFound)

	detail, err := suite.svc.Fulfill(suite.context, orderID, sandwichID, 1)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), detail)

	var refErr *common.ReferenceNotFoundError
	assert.ErrorAs(suite.T(), err, &refErr)
	assert.Equal(suite.T(), "Sandwich", refErr.Entity)
}

func (suite *LedgerServiceTestSuite) TestFulfill_NonPositiveQuantity() {
	detail, err := suite.svc.Fulfill(suite.context, uuid.New(), uuid.New(), 0)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), detail)

	var invalidErr *common.InvalidInputError
	assert.ErrorAs(suite.T(), err, &invalidErr)
}
