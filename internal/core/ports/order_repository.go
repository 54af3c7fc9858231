package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage. Returns
	// errs.ErrObjectAlreadyExists when an order with the same payment id
	// has already been committed (unique index on payment_id).
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByPaymentID retrieves the order recorded for an external payment,
	// or errs.ErrObjectNotFound when the payment was never ingested.
	GetByPaymentID(ctx context.Context, paymentID string) (*order.Order, error)

	// DebitCredit atomically decrements one credit of the given kind on
	// the order row, guarded by a balance check. Returns
	// order.ErrNoCredits when the balance was already zero.
	DebitCredit(ctx context.Context, id kernel.UUID, kind order.CreditKind) error
}
