package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderStatusQueryHandler retrieves the status view of a single order.
// Uses direct SQL queries for optimal read performance in the CQRS pattern.
//
// Example:
//
//	handler := NewGetOrderStatusQueryHandler(db)
//	query, _ := NewGetOrderStatusQuery(orderID)
//
//	status, err := handler.Handle(ctx, query)
//	if err != nil {
//	    log.Printf("Failed to get order status: %v", err)
//	    return err
//	}
//
//	fmt.Printf("Order %s: %s\n", status.OrderID, status.Status)
type GetOrderStatusQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderStatusQueryHandler creates a handler for order status queries.
// Requires a GORM database connection for query execution.
func NewGetOrderStatusQueryHandler(db *gorm.DB) GetOrderStatusQueryHandler {
	return GetOrderStatusQueryHandler{db: db}
}

// Handle executes the query and assembles the status view from the order
// row, its event timeline and its stored artifacts. Returns
// errs.ErrObjectNotFound when the order does not exist.
func (h GetOrderStatusQueryHandler) Handle(
	ctx context.Context,
	query GetOrderStatusQuery,
) (GetOrderStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	response, err := h.readOrder(ctx, query.OrderID())
	if err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	response.Timeline, err = h.readTimeline(ctx, query.OrderID())
	if err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	response.Artifacts, err = h.readArtifacts(ctx, query.OrderID())
	if err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	return response, nil
}

func (h GetOrderStatusQueryHandler) readOrder(
	ctx context.Context,
	orderID kernel.UUID,
) (GetOrderStatusQueryResponse, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			status,
			tier,
			amount,
			email,
			fail_reason,
			credits,
			created_at,
			paid_at,
			delivered_at
		FROM orders
		WHERE id = ?
	`, orderID.Bytes()).Rows()
	if err != nil {
		return GetOrderStatusQueryResponse{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return GetOrderStatusQueryResponse{}, err
		}
		return GetOrderStatusQueryResponse{}, errs.NewObjectNotFoundError("orderID", orderID)
	}

	var response GetOrderStatusQueryResponse
	var id uuid.UUID
	var email string
	var creditsRaw []byte
	var paidAt, deliveredAt sql.NullTime

	err = rows.Scan(
		&id,
		&response.Status,
		&response.Tier,
		&response.Amount,
		&email,
		&response.FailReason,
		&creditsRaw,
		&response.CreatedAt,
		&paidAt,
		&deliveredAt,
	)
	if err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	response.OrderID, err = kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	response.MaskedEmail = maskEmail(email)

	if len(creditsRaw) > 0 {
		if err = json.Unmarshal(creditsRaw, &response.Credits); err != nil {
			return GetOrderStatusQueryResponse{}, err
		}
	}

	if paidAt.Valid {
		response.PaidAt = &paidAt.Time
	}
	if deliveredAt.Valid {
		response.DeliveredAt = &deliveredAt.Time
	}

	return response, rows.Err()
}

func (h GetOrderStatusQueryHandler) readTimeline(
	ctx context.Context,
	orderID kernel.UUID,
) ([]OrderTimelineEntry, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			name,
			created_at
		FROM events
		WHERE order_id = ?
		ORDER BY created_at
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	timeline := make([]OrderTimelineEntry, 0)
	for rows.Next() {
		var entry OrderTimelineEntry
		if err = rows.Scan(&entry.Name, &entry.OccurredAt); err != nil {
			return nil, err
		}
		timeline = append(timeline, entry)
	}

	return timeline, rows.Err()
}

func (h GetOrderStatusQueryHandler) readArtifacts(
	ctx context.Context,
	orderID kernel.UUID,
) ([]ArtifactView, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			type,
			name,
			uri,
			size_bytes,
			expires_at
		FROM artifacts
		WHERE order_id = ?
		ORDER BY created_at
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now().UTC()
	artifacts := make([]ArtifactView, 0)
	for rows.Next() {
		var view ArtifactView
		var id uuid.UUID

		err = rows.Scan(
			&id,
			&view.Type,
			&view.Name,
			&view.URI,
			&view.SizeBytes,
			&view.ExpiresAt,
		)
		if err != nil {
			return nil, err
		}

		view.ArtifactID, err = kernel.UUIDFromBytes(id[:])
		if err != nil {
			return nil, err
		}

		view.Expired = now.After(view.ExpiresAt)
		artifacts = append(artifacts, view)
	}

	return artifacts, rows.Err()
}
