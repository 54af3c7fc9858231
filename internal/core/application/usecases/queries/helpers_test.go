package queries_test

import (
	"context"
	"time"

	"fulfillment/internal/adapters/out/postgres/artifactrepo"
	"fulfillment/internal/adapters/out/postgres/deliveryrepo"
	"fulfillment/internal/adapters/out/postgres/eventrepo"
	"fulfillment/internal/adapters/out/postgres/jobrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/revisionrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type mockAggregateTracker struct{}

func (m *mockAggregateTracker) TrackAggregate(_ kernel.UUID, _ any) {
	// No-op for query tests
}

// queryTestEnv owns the postgres container shared by the tests of one query
// handler suite.
type queryTestEnv struct {
	container *postgres.PostgresContainer
	db        *gorm.DB
}

func startQueryTestEnv(ctx context.Context) (*queryTestEnv, error) {
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
	if err != nil {
		return nil, err
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&jobrepo.JobDTO{},
		&artifactrepo.ArtifactDTO{},
		&deliveryrepo.DeliveryDTO{},
		&revisionrepo.RevisionDTO{},
		&eventrepo.EventDTO{},
	)
	if err != nil {
		return nil, err
	}

	return &queryTestEnv{container: container, db: db}, nil
}

func (e *queryTestEnv) stop(ctx context.Context) error {
	if e.container == nil {
		return nil
	}
	return e.container.Terminate(ctx)
}

func (e *queryTestEnv) truncate() error {
	return e.db.Exec(
		"TRUNCATE TABLE orders, jobs, artifacts, deliveries, revisions, events").Error
}

func newPaidOrder(paymentID string, tier order.Tier) (*order.Order, error) {
	contact, err := order.NewContact("customer@example.com", "")
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(kernel.NewUUID(), paymentID, tier, tier.Price(), contact)
	if err != nil {
		return nil, err
	}

	return o, o.MarkPaid()
}

// advanceToDone walks an order through the full happy path.
func advanceToDone(o *order.Order) error {
	steps := []func() error{
		o.MarkQueued,
		o.StartGenerating,
		o.MarkGated,
		o.StartStoring,
		o.StartDelivering,
		o.Complete,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
