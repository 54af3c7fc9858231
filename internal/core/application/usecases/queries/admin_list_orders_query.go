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
	ErrAdminListOrdersQueryIsNotConstructed = errors.New(
		"AdminListOrdersQuery must be created via NewAdminListOrdersQuery constructor",
	)
)

const (
	defaultAdminPageSize = 50
	maxAdminPageSize     = 200
)

// AdminListOrdersQuery retrieves a page of orders for the admin view,
// newest first, optionally filtered by status and tier. Empty filter
// strings mean "any".
//
// Example:
//
//	query, err := NewAdminListOrdersQuery("FAIL_GENERATION", "", 20, 0)
//	if err != nil {
//	    return err
//	}
//
//	orders, err := handler.Handle(ctx, query)
type AdminListOrdersQuery struct {
	status string
	tier   string
	limit  int
	offset int

	guard guard.ConstructorGuard
}

// NewAdminListOrdersQuery creates an admin listing query. Unknown status or
// tier filter values are rejected up front so typos surface as 400s rather
// than empty pages. A non-positive limit falls back to the default page
// size; the limit is capped at maxAdminPageSize.
func NewAdminListOrdersQuery(status, tier string, limit, offset int) (AdminListOrdersQuery, error) {
	if status != "" {
		if _, err := order.StatusFromString(status); err != nil {
			return AdminListOrdersQuery{}, errs.NewValueIsInvalidErrorWithCause("status", err)
		}
	}

	if tier != "" {
		if _, err := order.TierFromString(tier); err != nil {
			return AdminListOrdersQuery{}, errs.NewValueIsInvalidErrorWithCause("tier", err)
		}
	}

	if limit <= 0 {
		limit = defaultAdminPageSize
	}
	if limit > maxAdminPageSize {
		limit = maxAdminPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return AdminListOrdersQuery{
		status: status,
		tier:   tier,
		limit:  limit,
		offset: offset,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Status returns the status filter, empty for "any".
func (q AdminListOrdersQuery) Status() string { return q.status }

// Tier returns the tier filter, empty for "any".
func (q AdminListOrdersQuery) Tier() string { return q.tier }

// Limit returns the page size.
func (q AdminListOrdersQuery) Limit() int { return q.limit }

// Offset returns the page offset.
func (q AdminListOrdersQuery) Offset() int { return q.offset }

// Validate ensures the query was created through the constructor.
func (q AdminListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrAdminListOrdersQueryIsNotConstructed)
}

// AdminOrderView is the admin-facing read model for one order. Unlike the
// customer status view it exposes the full contact and failure details.
type AdminOrderView struct {
	OrderID    kernel.UUID
	PaymentID  string
	Status     string
	Tier       string
	Amount     int
	Email      string
	FailReason string
	LastError  string
	GateScore  int
	CreatedAt  time.Time
	PaidAt     *time.Time
}
