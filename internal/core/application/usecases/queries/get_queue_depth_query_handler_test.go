package queries_test

import (
	"context"
	"testing"

	"fulfillment/internal/adapters/out/postgres/jobrepo"
	"fulfillment/internal/adapters/out/postgres/revisionrepo"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/job"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/revision"

	"github.com/stretchr/testify/suite"
)

type GetQueueDepthQueryHandlerTestSuite struct {
	suite.Suite
	env          *queryTestEnv
	handler      queries.GetQueueDepthQueryHandler
	jobRepo      *jobrepo.GormJobRepository
	revisionRepo *revisionrepo.GormRevisionRepository
}

func (suite *GetQueueDepthQueryHandlerTestSuite) SetupSuite() {
	env, err := startQueryTestEnv(context.Background())
	suite.Require().NoError(err)
	suite.env = env

	suite.handler = queries.NewGetQueueDepthQueryHandler(env.db)
	suite.jobRepo = jobrepo.NewGormJobRepository(env.db, &mockAggregateTracker{})
	suite.revisionRepo = revisionrepo.NewGormRevisionRepository(env.db, &mockAggregateTracker{})
}

func (suite *GetQueueDepthQueryHandlerTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.env.stop(context.Background()))
}

func (suite *GetQueueDepthQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.env.truncate())
}

func (suite *GetQueueDepthQueryHandlerTestSuite) TestHandle_EmptyQueues_ReturnsZeroes() {
	query := queries.NewGetQueueDepthQuery()

	depth, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Zero(depth.QueuedJobs)
	suite.Zero(depth.ProcessingJobs)
	suite.Zero(depth.QueuedRevisions)
}

func (suite *GetQueueDepthQueryHandlerTestSuite) TestHandle_CountsPendingWork() {
	ctx := context.Background()

	for range 3 {
		jb, err := job.NewJob(kernel.NewUUID(), kernel.NewUUID(), order.TierStarter)
		suite.Require().NoError(err)
		suite.Require().NoError(suite.jobRepo.Add(ctx, jb))
	}

	inProgress, err := job.NewJob(kernel.NewUUID(), kernel.NewUUID(), order.TierPlus)
	suite.Require().NoError(err)
	suite.Require().NoError(inProgress.Start())
	suite.Require().NoError(suite.jobRepo.Add(ctx, inProgress))

	rev, err := revision.NewRevision(
		kernel.NewUUID(), kernel.NewUUID(), revision.TargetStorybook, order.CreditRegenImage, "new cover")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.revisionRepo.Add(ctx, rev))

	query := queries.NewGetQueueDepthQuery()

	depth, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Equal(3, depth.QueuedJobs)
	suite.Equal(1, depth.ProcessingJobs)
	suite.Equal(1, depth.QueuedRevisions)
}

func (suite *GetQueueDepthQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	var invalidQuery queries.GetQueueDepthQuery

	_, err := suite.handler.Handle(context.Background(), invalidQuery)

	suite.Require().Error(err)
	suite.Contains(err.Error(), "must be created via NewGetQueueDepthQuery constructor")
}

func TestGetQueueDepthQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetQueueDepthQueryHandlerTestSuite))
}
