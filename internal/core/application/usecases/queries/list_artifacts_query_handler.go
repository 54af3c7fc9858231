package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListArtifactsQueryHandler retrieves the stored artifacts for an order.
type ListArtifactsQueryHandler struct {
	db *gorm.DB
}

// NewListArtifactsQueryHandler creates a handler for artifact listing queries.
func NewListArtifactsQueryHandler(db *gorm.DB) ListArtifactsQueryHandler {
	return ListArtifactsQueryHandler{db: db}
}

// Handle executes the query. Returns an empty slice when the order has no
// stored artifacts.
func (h ListArtifactsQueryHandler) Handle(
	ctx context.Context,
	query ListArtifactsQuery,
) ([]ArtifactView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

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
	`, query.OrderID().Bytes()).Rows()
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

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return artifacts, nil
}
