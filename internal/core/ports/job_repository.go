package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/job"
	"fulfillment/internal/core/domain/model/kernel"
)

// JobRepository defines the persistence contract for jobs. The jobs table
// doubles as the work queue, so the repository exposes queue-shaped reads.
type JobRepository interface {
	// Add persists a new job.
	Add(ctx context.Context, aggregate *job.Job) error

	// Update persists changes to an existing job.
	Update(ctx context.Context, aggregate *job.Job) error

	// Get retrieves a job by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*job.Job, error)

	// GetFirstInQueuedStatus retrieves the oldest queued job, the FIFO
	// head. Returns errs.ErrObjectNotFound when the queue is empty.
	GetFirstInQueuedStatus(ctx context.Context) (*job.Job, error)

	// GetAllInProcessingStatus retrieves jobs claimed by a worker. At
	// startup these are crash orphans and get recovered to the queue.
	GetAllInProcessingStatus(ctx context.Context) ([]*job.Job, error)

	// GetActiveByOrder retrieves the non-terminal job for an order, or
	// errs.ErrObjectNotFound when none exists. At most one can exist.
	GetActiveByOrder(ctx context.Context, orderID kernel.UUID) (*job.Job, error)
}
