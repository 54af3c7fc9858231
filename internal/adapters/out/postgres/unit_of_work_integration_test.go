package postgres_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/artifactrepo"
	"fulfillment/internal/adapters/out/postgres/deliveryrepo"
	"fulfillment/internal/adapters/out/postgres/eventrepo"
	"fulfillment/internal/adapters/out/postgres/jobrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/revisionrepo"
	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/job"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/revision"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite verifies that the unit of work commits and
// rolls back changes across all fulfillment repositories atomically.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *pgcontainer.PostgresContainer
	db        *gorm.DB
	factory   *postgres.GormUnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:15-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("testuser"),
		pgcontainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&jobrepo.JobDTO{},
		&artifactrepo.ArtifactDTO{},
		&deliveryrepo.DeliveryDTO{},
		&revisionrepo.RevisionDTO{},
		&eventrepo.EventDTO{},
	))

	suite.factory = postgres.NewGormUnitOfWorkFactory(db)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(
		"TRUNCATE TABLE orders, jobs, artifacts, deliveries, revisions, events").Error)
}

func (suite *UnitOfWorkIntegrationTestSuite) newPaidOrder(paymentID string) *order.Order {
	contact, err := order.NewContact("customer@example.com", "")
	suite.Require().NoError(err)

	o, err := order.NewOrder(kernel.NewUUID(), paymentID, order.TierStarter, order.TierStarter.Price(), contact)
	suite.Require().NoError(err)
	suite.Require().NoError(o.MarkPaid())
	return o
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_PersistsAcrossRepositories() {
	ctx := context.Background()
	o := suite.newPaidOrder("pay_commit")

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))

	jb, err := job.NewJob(kernel.NewUUID(), o.ID(), o.Tier())
	suite.Require().NoError(err)
	suite.Require().NoError(uow.JobRepository().Add(ctx, jb))

	e, err := event.NewEvent(kernel.NewUUID(), o.ID(), event.JobQueued, map[string]any{"job_id": jb.ID().String()})
	suite.Require().NoError(err)
	suite.Require().NoError(uow.EventRepository().Add(ctx, e))

	suite.Require().NoError(uow.Commit(ctx))

	// Verify through a fresh unit of work outside any transaction.
	check := suite.factory.Create()
	loaded, err := check.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.True(loaded.IsEqual(o))

	loadedJob, err := check.JobRepository().Get(ctx, jb.ID())
	suite.Require().NoError(err)
	suite.Equal(job.StatusQueued, loadedJob.Status())

	events, err := check.EventRepository().GetAllByOrder(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Require().Len(events, 1)
	suite.Equal(event.JobQueued, events[0].Name())
	suite.Equal(jb.ID().String(), events[0].Payload()["job_id"])
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollback_DiscardsAcrossRepositories() {
	ctx := context.Background()
	o := suite.newPaidOrder("pay_rollback")

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))

	jb, err := job.NewJob(kernel.NewUUID(), o.ID(), o.Tier())
	suite.Require().NoError(err)
	suite.Require().NoError(uow.JobRepository().Add(ctx, jb))

	suite.Require().NoError(uow.Rollback(ctx))

	check := suite.factory.Create()
	_, err = check.OrderRepository().Get(ctx, o.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	_, err = check.JobRepository().Get(ctx, jb.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollbackAfterCommit_IsInvalidTransaction() {
	ctx := context.Background()
	o := suite.newPaidOrder("pay_twice")

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Commit(ctx))

	err := uow.Rollback(ctx)
	suite.Require().ErrorIs(err, gorm.ErrInvalidTransaction)

	// The committed row survives the late rollback attempt.
	check := suite.factory.Create()
	_, err = check.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRevisionRepository_WithinTransaction() {
	ctx := context.Background()
	o := suite.newPaidOrder("pay_revision")

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))

	rev, err := revision.NewRevision(
		kernel.NewUUID(), o.ID(), revision.TargetStorybook, order.CreditRegenImage, "brighter colors")
	suite.Require().NoError(err)
	suite.Require().NoError(uow.RevisionRepository().Add(ctx, rev))
	suite.Require().NoError(uow.Commit(ctx))

	check := suite.factory.Create()
	loaded, err := check.RevisionRepository().Get(ctx, rev.ID())
	suite.Require().NoError(err)
	suite.Equal(revision.StatusQueued, loaded.Status())
	suite.Equal("brighter colors", loaded.Request())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestConcurrentUnitsOfWork_AreIsolated() {
	ctx := context.Background()

	first := suite.factory.Create()
	suite.Require().NoError(first.Begin(ctx))
	o := suite.newPaidOrder("pay_isolated")
	suite.Require().NoError(first.OrderRepository().Add(ctx, o))

	// The uncommitted order is invisible to a second unit of work.
	second := suite.factory.Create()
	_, err := second.OrderRepository().GetByPaymentID(ctx, "pay_isolated")
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	suite.Require().NoError(first.Commit(ctx))

	_, err = second.OrderRepository().GetByPaymentID(ctx, "pay_isolated")
	suite.Require().NoError(err)
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
