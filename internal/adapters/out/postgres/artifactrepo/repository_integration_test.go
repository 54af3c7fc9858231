package artifactrepo_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/artifactrepo"
	"fulfillment/internal/core/domain/model/artifact"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

// ArtifactRepositoryIntegrationTestSuite verifies that storing artifacts is
// replay-safe under the (order_id, hash) unique index.
type ArtifactRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *artifactrepo.GormArtifactRepository
	tracker    *MockAggregateTracker
}

func (suite *ArtifactRepositoryIntegrationTestSuite) SetupSuite() {
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

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&artifactrepo.ArtifactDTO{}))
}

func (suite *ArtifactRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *ArtifactRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE artifacts").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Maybe()
	suite.repository = artifactrepo.NewGormArtifactRepository(suite.db, suite.tracker)
}

func (suite *ArtifactRepositoryIntegrationTestSuite) newArtifact(orderID kernel.UUID, content string) *artifact.Artifact {
	a, err := artifact.NewArtifact(
		kernel.NewUUID(),
		orderID,
		artifact.TypeStorybookPDF,
		"storybook.pdf",
		artifact.HashContent([]byte(content)),
		"s3://artifacts/"+orderID.String()+"/storybook.pdf",
		2048,
	)
	suite.Require().NoError(err)
	return a
}

func (suite *ArtifactRepositoryIntegrationTestSuite) TestUpsert_And_GetAllByOrder() {
	ctx := context.Background()
	orderID := kernel.NewUUID()
	a := suite.newArtifact(orderID, "page one")

	suite.Require().NoError(suite.repository.Upsert(ctx, a))

	artifacts, err := suite.repository.GetAllByOrder(ctx, orderID)
	suite.Require().NoError(err)
	suite.Require().Len(artifacts, 1)
	suite.Equal(a.Hash(), artifacts[0].Hash())
	suite.Equal(artifact.TypeStorybookPDF, artifacts[0].Type())
	suite.Equal(a.URI(), artifacts[0].URI())
	suite.WithinDuration(a.ExpiresAt(), artifacts[0].ExpiresAt(), time.Second)
}

func (suite *ArtifactRepositoryIntegrationTestSuite) TestUpsert_SameContentTwice_IsNoOp() {
	ctx := context.Background()
	orderID := kernel.NewUUID()
	first := suite.newArtifact(orderID, "identical content")
	replay := suite.newArtifact(orderID, "identical content")

	suite.Require().NoError(suite.repository.Upsert(ctx, first))
	suite.Require().NoError(suite.repository.Upsert(ctx, replay))

	artifacts, err := suite.repository.GetAllByOrder(ctx, orderID)
	suite.Require().NoError(err)
	suite.Require().Len(artifacts, 1)
	suite.True(artifacts[0].ID().IsEqual(first.ID()))
}

func (suite *ArtifactRepositoryIntegrationTestSuite) TestUpsert_SameHashDifferentOrder_BothStored() {
	ctx := context.Background()
	firstOrder := kernel.NewUUID()
	secondOrder := kernel.NewUUID()

	suite.Require().NoError(suite.repository.Upsert(ctx, suite.newArtifact(firstOrder, "shared")))
	suite.Require().NoError(suite.repository.Upsert(ctx, suite.newArtifact(secondOrder, "shared")))

	first, err := suite.repository.GetAllByOrder(ctx, firstOrder)
	suite.Require().NoError(err)
	second, err := suite.repository.GetAllByOrder(ctx, secondOrder)
	suite.Require().NoError(err)
	suite.Len(first, 1)
	suite.Len(second, 1)
}

func (suite *ArtifactRepositoryIntegrationTestSuite) TestGetAllByOrder_Empty() {
	artifacts, err := suite.repository.GetAllByOrder(context.Background(), kernel.NewUUID())

	suite.Require().NoError(err)
	suite.Empty(artifacts)
}

func TestArtifactRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ArtifactRepositoryIntegrationTestSuite))
}
