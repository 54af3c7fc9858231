package cmd

import (
	"log/slog"
	"os"

	"fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/gate"
	"fulfillment/internal/adapters/out/generation"
	"fulfillment/internal/adapters/out/notification"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	configs    Config
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	logger     *slog.Logger
}

func NewCompositionRoot(configs Config, gormDB *gorm.DB) CompositionRoot {
	return CompositionRoot{
		configs:    configs,
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:     slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}
}

func (c *CompositionRoot) Logger() *slog.Logger {
	return c.logger
}

func (c *CompositionRoot) CreateIngestPaymentCommandHandler() commands.IngestPaymentCommandHandler {
	var f commands.IntakeUoWFactory = FuncIntakeUoWFactory(func() commands.IntakeUoW {
		return c.uowFactory.Create()
	})
	return commands.NewIngestPaymentCommandHandler(f)
}

func (c *CompositionRoot) CreateProcessOrderJobCommandHandler() commands.ProcessOrderJobCommandHandler {
	var f commands.PipelineUoWFactory = FuncPipelineUoWFactory(func() commands.PipelineUoW {
		return c.uowFactory.Create()
	})
	return commands.NewProcessOrderJobCommandHandler(
		f,
		c.createGenerator(),
		gate.NewKeywordGate(c.configs.GateKeywords),
		c.createDeliveryChannels(),
		c.configs.StageTimeout,
	)
}

func (c *CompositionRoot) CreateProcessRevisionCommandHandler() commands.ProcessRevisionCommandHandler {
	var f commands.RevisionUoWFactory = FuncRevisionUoWFactory(func() commands.RevisionUoW {
		return c.uowFactory.Create()
	})
	return commands.NewProcessRevisionCommandHandler(
		f,
		c.createGenerator(),
		c.createDeliveryChannels(),
		c.configs.StageTimeout,
	)
}

func (c *CompositionRoot) CreateRequestRevisionCommandHandler() commands.RequestRevisionCommandHandler {
	var f commands.RevisionUoWFactory = FuncRevisionUoWFactory(func() commands.RevisionUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRequestRevisionCommandHandler(f)
}

func (c *CompositionRoot) CreateRecoverStalledJobsCommandHandler() commands.RecoverStalledJobsCommandHandler {
	var f commands.RecoveryUoWFactory = FuncRecoveryUoWFactory(func() commands.RecoveryUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRecoverStalledJobsCommandHandler(f)
}

func (c *CompositionRoot) CreateTrackEngagementCommandHandler() commands.TrackEngagementCommandHandler {
	var f commands.EngagementUoWFactory = FuncEngagementUoWFactory(func() commands.EngagementUoW {
		return c.uowFactory.Create()
	})
	return commands.NewTrackEngagementCommandHandler(f)
}

func (c *CompositionRoot) CreateGetOrderStatusQueryHandler() queries.GetOrderStatusQueryHandler {
	return queries.NewGetOrderStatusQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListArtifactsQueryHandler() queries.ListArtifactsQueryHandler {
	return queries.NewListArtifactsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateAdminListOrdersQueryHandler() queries.AdminListOrdersQueryHandler {
	return queries.NewAdminListOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateAdminStatsQueryHandler() queries.AdminStatsQueryHandler {
	return queries.NewAdminStatsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetQueueDepthQueryHandler() queries.GetQueueDepthQueryHandler {
	return queries.NewGetQueueDepthQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *http.Server {
	return http.NewServer(
		c.CreateIngestPaymentCommandHandler(),
		c.CreateRequestRevisionCommandHandler(),
		c.CreateTrackEngagementCommandHandler(),
		c.CreateGetOrderStatusQueryHandler(),
		c.CreateListArtifactsQueryHandler(),
		c.CreateAdminListOrdersQueryHandler(),
		c.CreateAdminStatsQueryHandler(),
		c.CreateGetQueueDepthQueryHandler(),
		[]byte(c.configs.WebhookSecret),
		[]byte(c.configs.JWTSecret),
		c.gormDB,
	)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	pipelineHandler := c.CreateProcessOrderJobCommandHandler()
	revisionHandler := c.CreateProcessRevisionCommandHandler()
	return jobs.NewJobManager(&pipelineHandler, &revisionHandler, c.CreateGetQueueDepthQueryHandler(), c.logger)
}

func (c *CompositionRoot) createGenerator() ports.Generator {
	return generation.NewStubGenerator(c.configs.StorageBase)
}

func (c *CompositionRoot) createDeliveryChannels() []ports.DeliveryChannel {
	return []ports.DeliveryChannel{
		notification.NewEmailChannel(c.logger),
		notification.NewKakaoChannel(c.logger),
	}
}

type FuncIntakeUoWFactory func() commands.IntakeUoW

func (f FuncIntakeUoWFactory) Create() commands.IntakeUoW {
	return f()
}

type FuncPipelineUoWFactory func() commands.PipelineUoW

func (f FuncPipelineUoWFactory) Create() commands.PipelineUoW {
	return f()
}

type FuncRevisionUoWFactory func() commands.RevisionUoW

func (f FuncRevisionUoWFactory) Create() commands.RevisionUoW {
	return f()
}

type FuncRecoveryUoWFactory func() commands.RecoveryUoW

func (f FuncRecoveryUoWFactory) Create() commands.RecoveryUoW {
	return f()
}

type FuncEngagementUoWFactory func() commands.EngagementUoW

func (f FuncEngagementUoWFactory) Create() commands.EngagementUoW {
	return f()
}
