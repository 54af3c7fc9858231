package queries

import (
	"context"
	"database/sql"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminListOrdersQueryHandler retrieves pages of orders for the admin view.
// Uses direct SQL queries for optimal read performance in the CQRS pattern.
type AdminListOrdersQueryHandler struct {
	db *gorm.DB
}

// NewAdminListOrdersQueryHandler creates a handler for admin order listings.
func NewAdminListOrdersQueryHandler(db *gorm.DB) AdminListOrdersQueryHandler {
	return AdminListOrdersQueryHandler{db: db}
}

// Handle executes the query. Orders are returned newest first. Status and
// tier filters are folded into the WHERE clause; an empty filter matches
// every row.
func (h AdminListOrdersQueryHandler) Handle(
	ctx context.Context,
	query AdminListOrdersQuery,
) ([]AdminOrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			payment_id,
			status,
			tier,
			amount,
			email,
			fail_reason,
			last_error,
			gate_score,
			created_at,
			paid_at
		FROM orders
		WHERE (? = '' OR status = ?)
		  AND (? = '' OR tier = ?)
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`,
		query.Status(), query.Status(),
		query.Tier(), query.Tier(),
		query.Limit(), query.Offset(),
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]AdminOrderView, 0)
	for rows.Next() {
		var view AdminOrderView
		var id uuid.UUID
		var paidAt sql.NullTime

		err = rows.Scan(
			&id,
			&view.PaymentID,
			&view.Status,
			&view.Tier,
			&view.Amount,
			&view.Email,
			&view.FailReason,
			&view.LastError,
			&view.GateScore,
			&view.CreatedAt,
			&paidAt,
		)
		if err != nil {
			return nil, err
		}

		view.OrderID, err = kernel.UUIDFromBytes(id[:])
		if err != nil {
			return nil, err
		}

		if paidAt.Valid {
			view.PaidAt = &paidAt.Time
		}

		orders = append(orders, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
