package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"sandwichworks/internal/common"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type InventoryServiceTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	svc     InventoryService
	context context.Context
}

func (suite *InventoryServiceTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.svc = NewInventoryService(mock)
	suite.context = context.Background()
}

func (suite *InventoryServiceTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestInventoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InventoryServiceTestSuite))
}

// sortedTestIDs returns n fresh UUIDs already in deduction order, so
// expectations line up with the order the service issues statements.
func sortedTestIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

const deductQuery = `
		UPDATE resources
		SET quantity = quantity - \$2, last_updated = NOW\(\)
		WHERE id = \$1 AND quantity >= \$2
	`

const getByIDQuery = `
		SELECT id, name, quantity, unit, last_updated
		FROM resources
		WHERE id = \$1
	`

const snapshotQuery = `
		SELECT id, quantity
		FROM resources
		WHERE id = ANY\(\$1\)
	`

func (suite *InventoryServiceTestSuite) expectDeduct(id uuid.UUID, amount float64, affected int64) {
	suite.mock.ExpectExec(deductQuery).
		WithArgs(id, amount).
		WillReturnResult(pgxmock.NewResult("UPDATE", affected))
}

func (suite *InventoryServiceTestSuite) TestCanFulfill_EnoughStock() {
	ids := sortedTestIDs(2)
	items := map[uuid.UUID]float64{ids[0]: 2, ids[1]: 1}

	suite.mock.ExpectQuery(snapshotQuery).
		WithArgs(ids).
		WillReturnRows(pgxmock.NewRows([]string{"id", "quantity"}).
			AddRow(ids[0], 4.0).
			AddRow(ids[1], 2.0))

	ok, err := suite.svc.CanFulfill(suite.context, items)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), ok)
}

func (suite *InventoryServiceTestSuite) TestCanFulfill_Shortfall() {
	ids := sortedTestIDs(2)
	items := map[uuid.UUID]float64{ids[0]: 2, ids[1]: 3}

	suite.mock.ExpectQuery(snapshotQuery).
		WithArgs(ids).
		WillReturnRows(pgxmock.NewRows([]string{"id", "quantity"}).
			AddRow(ids[0], 4.0).
			AddRow(ids[1], 2.0))

	ok, err := suite.svc.CanFulfill(suite.context, items)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), ok)
}

func (suite *InventoryServiceTestSuite) TestCanFulfill_MissingResource() {
	ids := sortedTestIDs(2)
	items := map[uuid.UUID]float64{ids[0]: 1, ids[1]: 1}

	// Second resource has no row at all: that is a broken reference, not a
	// plain "no".
	suite.mock.ExpectQuery(snapshotQuery).
		WithArgs(ids).
		WillReturnRows(pgxmock.NewRows([]string{"id", "quantity"}).
			AddRow(ids[0], 4.0))

	ok, err := suite.svc.CanFulfill(suite.context, items)
	assert.Error(suite.T(), err)
	assert.False(suite.T(), ok)

	var refErr *common.ReferenceNotFoundError
	assert.ErrorAs(suite.T(), err, &refErr)
	assert.Equal(suite.T(), ids[1], refErr.ID)
}

func (suite *InventoryServiceTestSuite) TestCanFulfill_EmptyItems() {
	ok, err := suite.svc.CanFulfill(suite.context, map[uuid.UUID]float64{})
	assert.Error(suite.T(), err)
	assert.False(suite.T(), ok)

	var invalidErr *common.InvalidInputError
	assert.ErrorAs(suite.T(), err, &invalidErr)
}

func (suite *InventoryServiceTestSuite) TestConsume_Success() {
	ids := sortedTestIDs(3)
	items := map[uuid.UUID]float64{ids[0]: 2, ids[1]: 1, ids[2]: 1}

	suite.mock.ExpectBegin()
	suite.expectDeduct(ids[0], 2, 1)
	suite.expectDeduct(ids[1], 1, 1)
	suite.expectDeduct(ids[2], 1, 1)
	suite.mock.ExpectCommit()

	err := suite.svc.Consume(suite.context, items)
	assert.NoError(suite.T(), err)
}

// Stock bread 4, ham 2, cheese 2 with a sandwich needing 2/1/1 supports
// exactly two orders; the third attempt must fail without touching anything.
func (suite *InventoryServiceTestSuite) TestConsume_ThirdOrderRunsDry() {
	ids := sortedTestIDs(3)
	items := map[uuid.UUID]float64{ids[0]: 2, ids[1]: 1, ids[2]: 1}

	for i := 0; i < 2; i++ {
		suite.mock.ExpectBegin()
		suite.expectDeduct(ids[0], 2, 1)
		suite.expectDeduct(ids[1], 1, 1)
		suite.expectDeduct(ids[2], 1, 1)
		suite.mock.ExpectCommit()
	}

	// Third round: the first guarded deduction affects no rows, the re-read
	// shows the shelf is empty, and the transaction rolls back.
	suite.mock.ExpectBegin()
	suite.expectDeduct(ids[0], 2, 0)
	suite.mock.ExpectQuery(getByIDQuery).
		WithArgs(ids[0]).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "quantity", "unit", "last_updated"}).
			AddRow(ids[0], "bread", 0.0, "slice", time.Now()))
	suite.mock.ExpectRollback()

	assert.NoError(suite.T(), suite.svc.Consume(suite.context, items))
	assert.NoError(suite.T(), suite.svc.Consume(suite.context, items))

	err := suite.svc.Consume(suite.context, items)
	assert.Error(suite.T(), err)

	var stockErr *common.InsufficientStockError
	assert.ErrorAs(suite.T(), err, &stockErr)
	assert.Equal(suite.T(), ids[0], stockErr.ResourceID)
	assert.Equal(suite.T(), 2.0, stockErr.Needed)
	assert.Equal(suite.T(), 0.0, stockErr.Available)
}

func (suite *InventoryServiceTestSuite) TestConsume_PartialShortfallRollsBack() {
	ids := sortedTestIDs(2)
	items := map[uuid.UUID]float64{ids[0]: 1, ids[1]: 5}

	suite.mock.ExpectBegin()
	suite.expectDeduct(ids[0], 1, 1)
	suite.expectDeduct(ids[1], 5, 0)
	suite.mock.ExpectQuery(getByIDQuery).
		WithArgs(ids[1]).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "quantity", "unit", "last_updated"}).
			AddRow(ids[1], "cheese", 2.0, "slice", time.Now()))
	suite.mock.ExpectRollback()

	err := suite.svc.Consume(suite.context, items)
	assert.Error(suite.T(), err)

	var stockErr *common.InsufficientStockError
	assert.ErrorAs(suite.T(), err, &stockErr)
	assert.Equal(suite.T(), 5.0, stockErr.Needed)
	assert.Equal(suite.T(), 2.0, stockErr.Available)
}

func (suite *InventoryServiceTestSuite) TestConsume_MissingResource() {
	ids := sortedTestIDs(1)
	items := map[uuid.UUID]float64{ids[0]: 1}

	suite.mock.ExpectBegin()
	suite.expectDeduct(ids[0], 1, 0)
	suite.mock.ExpectQuery(getByIDQuery).
		WithArgs(ids[0]).
		WillReturnError(pgx.ErrNoRows)
	suite.mock.ExpectRollback()

	err := suite.svc.Consume(suite.context, items)
	assert.Error(suite.T(), err)

	var refErr *common.ReferenceNotFoundError
	assert.ErrorAs(suite.T(), err, &refErr)
	assert.Equal(suite.T(), ids[0], refErr.ID)
}

func (suite *InventoryServiceTestSuite) TestConsume_NonPositiveAmount() {
	items := map[uuid.UUID]float64{uuid.New(): -1}

	err := suite.svc.Consume(suite.context, items)
	assert.Error(suite.T(), err)

	var invalidErr *common.InvalidInputError
	assert.ErrorAs(suite.T(), err, &invalidErr)
}

func (suite *InventoryServiceTestSuite) TestRestock_Success() {
	id := uuid.New()

	suite.mock.ExpectExec(`
		UPDATE resources
		SET quantity = quantity \+ \$2, last_updated = NOW\(\)
		WHERE id = \$1
	`).WithArgs(id, 5.0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.svc.Restock(suite.context, id, 5)
	assert.NoError(suite.T(), err)
}

func (suite *InventoryServiceTestSuite) TestRestock_UnknownResource() {
	id := uuid.New()

	suite.mock.ExpectExec(`
		UPDATE resources
		SET quantity = quantity \+ \$2, last_updated = NOW\(\)
		WHERE id = \$1
	`).WithArgs(id, 5.0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.svc.Restock(suite.context, id, 5)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *InventoryServiceTestSuite) TestRestock_NonPositiveAmount() {
	err := suite.svc.Restock(suite.context, uuid.New(), 0)
	assert.Error(suite.T(), err)

	var invalidErr *common.InvalidInputError
	assert.ErrorAs(suite.T(), err, &invalidErr)
}
