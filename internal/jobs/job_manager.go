package jobs

import (
	"fmt"
	"log/slog"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	fulfillmentJob *FulfillmentJob
	revisionJob    *RevisionJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	pipelineHandler *commands.ProcessOrderJobCommandHandler,
	revisionHandler *commands.ProcessRevisionCommandHandler,
	depthHandler queries.GetQueueDepthQueryHandler,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		fulfillmentJob: NewFulfillmentJob(pipelineHandler, depthHandler, logger),
		revisionJob:    NewRevisionJob(revisionHandler, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.fulfillmentJob.Start(); err != nil {
		return fmt.Errorf("failed to start fulfillment job: %w", err)
	}

	if err := jm.revisionJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.fulfillmentJob.Stop()
		return fmt.Errorf("failed to start revision job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.revisionJob.Stop()
	jm.fulfillmentJob.Stop()
}
