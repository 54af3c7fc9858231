package queries

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrListArtifactsQueryIsNotConstructed = errors.New(
		"ListArtifactsQuery must be created via NewListArtifactsQuery constructor",
	)
)

// ListArtifactsQuery retrieves the stored artifacts of an order. An order
// with nothing stored yet yields an empty list, not an error.
//
// Example:
//
//	query, err := NewListArtifactsQuery(orderID)
//	if err != nil {
//	    return err
//	}
//
//	artifacts, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to list artifacts: %w", err)
//	}
type ListArtifactsQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewListArtifactsQuery creates a query for an order's artifacts.
func NewListArtifactsQuery(orderID kernel.UUID) (ListArtifactsQuery, error) {
	if err := orderID.Validate(); err != nil {
		return ListArtifactsQuery{}, errs.NewValueIsRequiredErrorWithCause("orderID", err)
	}

	return ListArtifactsQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// OrderID returns the identifier of the order being queried.
func (q ListArtifactsQuery) OrderID() kernel.UUID {
	return q.orderID
}

// Validate ensures the query was created through the constructor.
func (q ListArtifactsQuery) Validate() error {
	return q.guard.Validate(ErrListArtifactsQueryIsNotConstructed)
}
