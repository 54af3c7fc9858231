package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/revision"
)

// RevisionRepository defines the persistence contract for revisions.
type RevisionRepository interface {
	// Add persists a new revision.
	Add(ctx context.Context, entity *revision.Revision) error

	// Update persists changes to an existing revision.
	Update(ctx context.Context, entity *revision.Revision) error

	// Get retrieves a revision by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*revision.Revision, error)

	// GetFirstInQueuedStatus retrieves the oldest queued revision for the
	// revision worker. Returns errs.ErrObjectNotFound when none is waiting.
	GetFirstInQueuedStatus(ctx context.Context) (*revision.Revision, error)

	// GetAllByOrder retrieves all revisions of an order, oldest first.
	GetAllByOrder(ctx context.Context, orderID kernel.UUID) ([]*revision.Revision, error)
}
