package queries_test

import (
	"context"
	"testing"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/suite"
)

type AdminStatsQueryHandlerTestSuite struct {
	suite.Suite
	env       *queryTestEnv
	handler   queries.AdminStatsQueryHandler
	orderRepo *orderrepo.GormOrderRepository
}

func (suite *AdminStatsQueryHandlerTestSuite) SetupSuite() {
	env, err := startQueryTestEnv(context.Background())
	suite.Require().NoError(err)
	suite.env = env

	suite.handler = queries.NewAdminStatsQueryHandler(env.db)
	suite.orderRepo = orderrepo.NewGormOrderRepository(env.db, &mockAggregateTracker{})
}

func (suite *AdminStatsQueryHandlerTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.env.stop(context.Background()))
}

func (suite *AdminStatsQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.env.truncate())
}

func (suite *AdminStatsQueryHandlerTestSuite) seedDone(paymentID string, tier order.Tier) {
	o, err := newPaidOrder(paymentID, tier)
	suite.Require().NoError(err)
	suite.Require().NoError(advanceToDone(o))
	suite.Require().NoError(suite.orderRepo.Add(context.Background(), o))
}

func (suite *AdminStatsQueryHandlerTestSuite) seedFailed(paymentID string, tier order.Tier) {
	o, err := newPaidOrder(paymentID, tier)
	suite.Require().NoError(err)
	suite.Require().NoError(o.MarkQueued())
	suite.Require().NoError(o.StartGenerating())
	suite.Require().NoError(o.Fail(order.FailGeneration, "MAX_RETRIES_EXCEEDED", "generator unavailable"))
	suite.Require().NoError(suite.orderRepo.Add(context.Background(), o))
}

func (suite *AdminStatsQueryHandlerTestSuite) TestHandle_EmptyDatabase_ReturnsZeroes() {
	query := queries.NewAdminStatsQuery()

	stats, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Zero(stats.TotalOrders)
	suite.Empty(stats.ByStatus)
	suite.Empty(stats.ByTier)
	suite.Zero(stats.SuccessRate)
}

func (suite *AdminStatsQueryHandlerTestSuite) TestHandle_AggregatesByStatusAndTier() {
	suite.seedDone("pay_stats_1", order.TierStarter)
	suite.seedDone("pay_stats_2", order.TierPlus)
	suite.seedFailed("pay_stats_3", order.TierPlus)

	inFlight, err := newPaidOrder("pay_stats_4", order.TierPremium)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.orderRepo.Add(context.Background(), inFlight))

	query := queries.NewAdminStatsQuery()

	stats, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Equal(4, stats.TotalOrders)
	suite.Equal(2, stats.ByStatus["DONE"])
	suite.Equal(1, stats.ByStatus["FAIL_GENERATION"])
	suite.Equal(1, stats.ByStatus["PAID"])

	suite.Equal(queries.TierStats{Count: 1, Revenue: order.TierStarter.Price()}, stats.ByTier["STARTER"])
	suite.Equal(queries.TierStats{Count: 2, Revenue: 2 * order.TierPlus.Price()}, stats.ByTier["PLUS"])
	suite.Equal(queries.TierStats{Count: 1, Revenue: order.TierPremium.Price()}, stats.ByTier["PREMIUM"])
}

func (suite *AdminStatsQueryHandlerTestSuite) TestHandle_SuccessRateIgnoresInFlightOrders() {
	suite.seedDone("pay_rate_1", order.TierStarter)
	suite.seedDone("pay_rate_2", order.TierStarter)
	suite.seedFailed("pay_rate_3", order.TierStarter)

	// Orders still moving through the pipeline do not count against the rate.
	inFlight, err := newPaidOrder("pay_rate_4", order.TierStarter)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.orderRepo.Add(context.Background(), inFlight))

	query := queries.NewAdminStatsQuery()

	stats, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.InDelta(2.0/3.0, stats.SuccessRate, 0.0001)
}

func (suite *AdminStatsQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	var invalidQuery queries.AdminStatsQuery

	_, err := suite.handler.Handle(context.Background(), invalidQuery)

	suite.Require().Error(err)
	suite.Contains(err.Error(), "must be created via NewAdminStatsQuery constructor")
}

func TestAdminStatsQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AdminStatsQueryHandlerTestSuite))
}
