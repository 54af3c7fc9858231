// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases.
package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetOrderStatusQueryIsNotConstructed = errors.New(
		"GetOrderStatusQuery must be created via NewGetOrderStatusQuery constructor",
	)
)

// GetOrderStatusQuery retrieves the full status view of a single order:
// the order snapshot, its event timeline and the stored artifacts.
//
// Example:
//
//	query, err := NewGetOrderStatusQuery(orderID)
//	if err != nil {
//	    return err
//	}
//
//	status, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to retrieve order status: %w", err)
//	}
//
//	fmt.Printf("Order %s is %s\n", status.OrderID, status.Status)
type GetOrderStatusQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderStatusQuery creates a query for a single order's status view.
// Returns a validation error when the order ID is empty.
func NewGetOrderStatusQuery(orderID kernel.UUID) (GetOrderStatusQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderStatusQuery{}, errs.NewValueIsRequiredErrorWithCause("orderID", err)
	}

	return GetOrderStatusQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// OrderID returns the identifier of the order being queried.
func (q GetOrderStatusQuery) OrderID() kernel.UUID {
	return q.orderID
}

// Validate ensures the query was created through the constructor.
func (q GetOrderStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderStatusQueryIsNotConstructed)
}

// GetOrderStatusQueryResponse is the read model for a customer-facing
// status view. The contact email is masked before it leaves the system.
type GetOrderStatusQueryResponse struct {
	OrderID     kernel.UUID
	Status      string
	Tier        string
	Amount      int
	MaskedEmail string
	FailReason  string
	Credits     map[string]int
	CreatedAt   time.Time
	PaidAt      *time.Time
	DeliveredAt *time.Time
	Timeline    []OrderTimelineEntry
	Artifacts   []ArtifactView
}

// OrderTimelineEntry is a single event on the order's timeline.
type OrderTimelineEntry struct {
	Name       string
	OccurredAt time.Time
}

// ArtifactView is the read model for a stored artifact.
type ArtifactView struct {
	ArtifactID kernel.UUID
	Type       string
	Name       string
	URI        string
	SizeBytes  int64
	ExpiresAt  time.Time
	Expired    bool
}

// maskEmail applies the contact masking rule to a raw address read from
// the database, so status views never leak the full contact.
func maskEmail(email string) string {
	contact, err := order.NewContact(email, "")
	if err != nil {
		return email
	}
	return contact.MaskedEmail()
}
