package queries

import (
	"context"

	"gorm.io/gorm"
)

// GetQueueDepthQueryHandler reports the backlog of the job and revision
// queues.
type GetQueueDepthQueryHandler struct {
	db *gorm.DB
}

// NewGetQueueDepthQueryHandler creates a handler for queue depth queries.
func NewGetQueueDepthQueryHandler(db *gorm.DB) GetQueueDepthQueryHandler {
	return GetQueueDepthQueryHandler{db: db}
}

// Handle executes the query with a single round trip.
func (h GetQueueDepthQueryHandler) Handle(
	ctx context.Context,
	query GetQueueDepthQuery,
) (GetQueueDepthQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetQueueDepthQueryResponse{}, err
	}

	var response GetQueueDepthQueryResponse

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM jobs WHERE status = 'QUEUED'),
			(SELECT COUNT(*) FROM jobs WHERE status = 'PROCESSING'),
			(SELECT COUNT(*) FROM revisions WHERE status = 'QUEUED')
	`).Row()

	err := row.Scan(
		&response.QueuedJobs,
		&response.ProcessingJobs,
		&response.QueuedRevisions,
	)
	if err != nil {
		return GetQueueDepthQueryResponse{}, err
	}

	return response, nil
}
