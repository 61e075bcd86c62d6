package queries_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	postgres_adapter "dispatch/internal/adapters/out/postgres"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/ledger"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ReadModelsTestSuite runs the raw SQL read models against a real Postgres schema.
type ReadModelsTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

func (suite *ReadModelsTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(ctx, db))
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

func (suite *ReadModelsTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *ReadModelsTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders, order_changes, wallets, transactions").Error)
}

func (suite *ReadModelsTestSuite) addOrder(created time.Time, advance func(o *order.Order)) *order.Order {
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), 1000, created)
	suite.Require().NoError(err)
	if advance != nil {
		advance(o)
	}
	suite.Require().NoError(suite.factory.Create().OrderRepository().Add(context.Background(), o))
	return o
}

func (suite *ReadModelsTestSuite) credit(id wallet.ID, amounts ...int64) {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	defer func() { _ = uow.Rollback(ctx) }()

	w, err := wallet.NewWallet(id, fixedNow)
	suite.Require().NoError(err)
	suite.Require().NoError(uow.WalletRepository().Add(ctx, w))

	for i, amount := range amounts {
		before, after, applyErr := w.ApplyDelta(amount, fixedNow.Add(time.Duration(i)*time.Second))
		suite.Require().NoError(applyErr)
		e, entryErr := ledger.NewEntry(kernel.NewUUID(), ledger.Movement{
			WalletID:      id,
			Key:           ledger.Key("adjustment_" + strconv.Itoa(i)),
			Type:          ledger.Adjustment,
			Amount:        amount,
			BalanceBefore: before,
			BalanceAfter:  after,
		}, fixedNow.Add(time.Duration(i)*time.Second))
		suite.Require().NoError(entryErr)
		suite.Require().NoError(uow.LedgerRepository().Add(ctx, e))
	}
	suite.Require().NoError(uow.WalletRepository().Update(ctx, w))
	suite.Require().NoError(uow.Commit(ctx))
}

func (suite *ReadModelsTestSuite) TestActiveOrders_OnlyLiveStatusesOldestFirst() {
	driver := kernel.NewUUID()
	onRoute := suite.addOrder(fixedNow.Add(-time.Hour), func(o *order.Order) {
		suite.Require().NoError(o.Accept(driver, fixedNow.Add(-50*time.Minute)))
		suite.Require().NoError(o.StartTrip(fixedNow.Add(-40 * time.Minute)))
	})
	matching := suite.addOrder(fixedNow.Add(-time.Minute), nil)
	suite.addOrder(fixedNow.Add(-2*time.Hour), func(o *order.Order) {
		suite.Require().NoError(o.Expire(fixedNow.Add(-time.Hour)))
	})

	query, err := queries.NewGetActiveOrdersQuery(mustActor(true), 0)
	suite.Require().NoError(err)

	got, err := queries.NewGetActiveOrdersQueryHandler(suite.db).Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(got, 2)
	suite.Equal(onRoute.ID(), got[0].ID)
	suite.Equal(order.OnRoute, got[0].Status)
	suite.True(got[0].Locked)
	suite.Require().NotNil(got[0].DriverID)
	suite.Equal(driver, *got[0].DriverID)
	suite.Equal(matching.ID(), got[1].ID)
	suite.Nil(got[1].DriverID)
	suite.False(got[1].Locked)
}

func (suite *ReadModelsTestSuite) TestActiveOrders_RequiresAdmin() {
	query, err := queries.NewGetActiveOrdersQuery(mustActor(false), 10)
	suite.Require().NoError(err)

	_, err = queries.NewGetActiveOrdersQueryHandler(suite.db).Handle(context.Background(), query)

	suite.Equal(errs.CodePermissionDenied, errs.CodeOf(err))
}

func (suite *ReadModelsTestSuite) TestWalletStatement_NewestLinesFirst() {
	driver := mustActor(false)
	id := wallet.DriverWalletID(driver.ID())
	suite.credit(id, 1000, -100, 50)

	query, err := queries.NewGetWalletStatementQuery(driver, id, 2)
	suite.Require().NoError(err)

	got, err := queries.NewGetWalletStatementQueryHandler(suite.db).Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.EqualValues(950, got.Balance)
	suite.EqualValues(950, got.Available)
	suite.Equal(wallet.Currency, got.Currency)
	suite.Require().Len(got.Lines, 2)
	suite.EqualValues(50, got.Lines[0].Amount)
	suite.EqualValues(950, got.Lines[0].BalanceAfter)
	suite.EqualValues(-100, got.Lines[1].Amount)
	suite.Greater(got.Lines[0].Seq, got.Lines[1].Seq)
}

func (suite *ReadModelsTestSuite) TestWalletStatement_UnknownWalletIsEmpty() {
	driver := mustActor(false)
	query, err := queries.NewGetWalletStatementQuery(driver, wallet.DriverWalletID(driver.ID()), 0)
	suite.Require().NoError(err)

	got, err := queries.NewGetWalletStatementQueryHandler(suite.db).Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Zero(got.Balance)
	suite.Empty(got.Lines)
}

func (suite *ReadModelsTestSuite) TestWalletStatement_OtherDriversWalletIsDenied() {
	query, err := queries.NewGetWalletStatementQuery(mustActor(false), wallet.DriverWalletID(kernel.NewUUID()), 0)
	suite.Require().NoError(err)

	_, err = queries.NewGetWalletStatementQueryHandler(suite.db).Handle(context.Background(), query)

	suite.Equal(errs.CodePermissionDenied, errs.CodeOf(err))
}

func TestReadModelsTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(ReadModelsTestSuite))
}

func TestNewGetActiveOrdersQuery_LimitOutOfRange(t *testing.T) {
	_, err := queries.NewGetActiveOrdersQuery(mustActor(true), queries.MaxActiveOrdersLimit+1)
	assert.Equal(t, errs.CodeInvalidArgument, errs.CodeOf(err))
}
