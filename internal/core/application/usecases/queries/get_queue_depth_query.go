package queries

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetQueueDepthQueryIsNotConstructed = errors.New(
		"GetQueueDepthQuery must be created via NewGetQueueDepthQuery constructor",
	)
)

// GetQueueDepthQuery retrieves the current depth of the job and revision
// queues. Served by the health endpoint so operators can see backlog at a
// glance.
type GetQueueDepthQuery struct {
	guard guard.ConstructorGuard
}

// NewGetQueueDepthQuery creates a queue depth query.
func NewGetQueueDepthQuery() GetQueueDepthQuery {
	return GetQueueDepthQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetQueueDepthQuery) Validate() error {
	return q.guard.Validate(ErrGetQueueDepthQueryIsNotConstructed)
}

// GetQueueDepthQueryResponse reports pending work per queue.
type GetQueueDepthQueryResponse struct {
	QueuedJobs      int
	ProcessingJobs  int
	QueuedRevisions int
}
