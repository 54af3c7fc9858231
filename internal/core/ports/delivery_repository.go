package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
)

// DeliveryRepository defines the persistence contract for delivery records.
type DeliveryRepository interface {
	// Add persists a new delivery record.
	Add(ctx context.Context, entity *delivery.Delivery) error

	// Update persists changes to an existing delivery record.
	Update(ctx context.Context, entity *delivery.Delivery) error

	// GetSent retrieves the SENT record for (order, channel, batch hash),
	// or errs.ErrObjectNotFound when this exact content was never
	// delivered on this channel. A hit short-circuits a re-send.
	GetSent(ctx context.Context, orderID kernel.UUID, channel delivery.Channel, batchHash string) (*delivery.Delivery, error)

	// GetAllByOrder retrieves all delivery records of an order, oldest first.
	GetAllByOrder(ctx context.Context, orderID kernel.UUID) ([]*delivery.Delivery, error)
}
