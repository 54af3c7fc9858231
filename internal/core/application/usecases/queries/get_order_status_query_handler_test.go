package queries_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/artifactrepo"
	"fulfillment/internal/adapters/out/postgres/eventrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/artifact"
	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

type GetOrderStatusQueryHandlerTestSuite struct {
	suite.Suite
	env          *queryTestEnv
	handler      queries.GetOrderStatusQueryHandler
	orderRepo    *orderrepo.GormOrderRepository
	eventRepo    *eventrepo.GormEventRepository
	artifactRepo *artifactrepo.GormArtifactRepository
}

func (suite *GetOrderStatusQueryHandlerTestSuite) SetupSuite() {
	env, err := startQueryTestEnv(context.Background())
	suite.Require().NoError(err)
	suite.env = env

	suite.handler = queries.NewGetOrderStatusQueryHandler(env.db)
	suite.orderRepo = orderrepo.NewGormOrderRepository(env.db, &mockAggregateTracker{})
	suite.eventRepo = eventrepo.NewGormEventRepository(env.db, &mockAggregateTracker{})
	suite.artifactRepo = artifactrepo.NewGormArtifactRepository(env.db, &mockAggregateTracker{})
}

func (suite *GetOrderStatusQueryHandlerTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.env.stop(context.Background()))
}

func (suite *GetOrderStatusQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.env.truncate())
}

func (suite *GetOrderStatusQueryHandlerTestSuite) TestHandle_UnknownOrder_ReturnsNotFound() {
	query, err := queries.NewGetOrderStatusQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	_, err = suite.handler.Handle(context.Background(), query)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *GetOrderStatusQueryHandlerTestSuite) TestHandle_ReturnsSnapshotWithMaskedEmail() {
	ctx := context.Background()
	o, err := newPaidOrder("pay_status_1", order.TierPlus)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.orderRepo.Add(ctx, o))

	query, err := queries.NewGetOrderStatusQuery(o.ID())
	suite.Require().NoError(err)

	status, err := suite.handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.True(o.ID().IsEqual(status.OrderID))
	suite.Equal("PAID", status.Status)
	suite.Equal("PLUS", status.Tier)
	suite.Equal(order.TierPlus.Price(), status.Amount)
	suite.Equal("cu***@example.com", status.MaskedEmail)
	suite.Require().NotNil(status.PaidAt)
	suite.Nil(status.DeliveredAt)
	suite.Equal(map[string]int{"regen_image": 3, "edit_text": 1, "rewrite_doc": 0}, status.Credits)
	suite.Empty(status.Timeline)
	suite.Empty(status.Artifacts)
}

func (suite *GetOrderStatusQueryHandlerTestSuite) TestHandle_TimelineIsChronological() {
	ctx := context.Background()
	o, err := newPaidOrder("pay_status_2", order.TierStarter)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.orderRepo.Add(ctx, o))

	names := []string{"pay_success", "job_queued", "job_started"}
	for _, name := range names {
		e, evtErr := event.NewEvent(kernel.NewUUID(), o.ID(), name, nil)
		suite.Require().NoError(evtErr)
		suite.Require().NoError(suite.eventRepo.Add(ctx, e))
		time.Sleep(10 * time.Millisecond)
	}

	query, err := queries.NewGetOrderStatusQuery(o.ID())
	suite.Require().NoError(err)

	status, err := suite.handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Require().Len(status.Timeline, 3)
	for i, name := range names {
		suite.Equal(name, status.Timeline[i].Name)
	}
	suite.True(status.Timeline[0].OccurredAt.Before(status.Timeline[2].OccurredAt))
}

func (suite *GetOrderStatusQueryHandlerTestSuite) TestHandle_IncludesArtifactsWithExpiry() {
	ctx := context.Background()
	o, err := newPaidOrder("pay_status_3", order.TierStarter)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.orderRepo.Add(ctx, o))

	content := []byte("storybook pages")
	a, err := artifact.NewArtifact(
		kernel.NewUUID(), o.ID(), artifact.TypeStorybookPDF,
		"storybook.pdf", artifact.HashContent(content),
		"s3://artifacts/storybook.pdf", int64(len(content)))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.artifactRepo.Upsert(ctx, a))

	query, err := queries.NewGetOrderStatusQuery(o.ID())
	suite.Require().NoError(err)

	status, err := suite.handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Require().Len(status.Artifacts, 1)
	view := status.Artifacts[0]
	suite.True(a.ID().IsEqual(view.ArtifactID))
	suite.Equal("STORYBOOK_PDF", view.Type)
	suite.Equal("storybook.pdf", view.Name)
	suite.Equal("s3://artifacts/storybook.pdf", view.URI)
	suite.Equal(int64(len(content)), view.SizeBytes)
	suite.False(view.Expired, "a fresh artifact is within its expiry period")
	suite.WithinDuration(time.Now().UTC().Add(artifact.ExpiryPeriod), view.ExpiresAt, time.Minute)
}

func (suite *GetOrderStatusQueryHandlerTestSuite) TestHandle_FailedOrder_ExposesReason() {
	ctx := context.Background()
	o, err := newPaidOrder("pay_status_4", order.TierStarter)
	suite.Require().NoError(err)
	suite.Require().NoError(o.MarkQueued())
	suite.Require().NoError(o.StartGenerating())
	suite.Require().NoError(o.Fail(order.FailBudget, "BUDGET_EXCEEDED", "tokens 12000 > 10000"))
	suite.Require().NoError(suite.orderRepo.Add(ctx, o))

	query, err := queries.NewGetOrderStatusQuery(o.ID())
	suite.Require().NoError(err)

	status, err := suite.handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Equal("FAIL_BUDGET", status.Status)
	suite.Equal("BUDGET_EXCEEDED", status.FailReason)
}

func (suite *GetOrderStatusQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	var invalidQuery queries.GetOrderStatusQuery

	_, err := suite.handler.Handle(context.Background(), invalidQuery)

	suite.Require().Error(err)
	suite.Contains(err.Error(), "must be created via NewGetOrderStatusQuery constructor")
}

func TestGetOrderStatusQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetOrderStatusQueryHandlerTestSuite))
}
