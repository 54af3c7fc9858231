package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/kernel"
)

// EventRepository defines the persistence contract for the append-only
// event timeline. Events are never updated or deleted.
type EventRepository interface {
	// Add appends an event to the timeline.
	Add(ctx context.Context, entity *event.Event) error

	// GetAllByOrder retrieves the event timeline of an order, oldest first.
	GetAllByOrder(ctx context.Context, orderID kernel.UUID) ([]*event.Event, error)
}
