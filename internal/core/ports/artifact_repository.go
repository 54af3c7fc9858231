package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/artifact"
	"fulfillment/internal/core/domain/model/kernel"
)

// ArtifactRepository defines the persistence contract for artifacts.
type ArtifactRepository interface {
	// Upsert persists an artifact, skipping the insert when a row with the
	// same (order id, content hash) already exists. Pipeline retries call
	// this repeatedly with identical content.
	Upsert(ctx context.Context, entity *artifact.Artifact) error

	// GetAllByOrder retrieves the stored artifacts of an order, oldest first.
	GetAllByOrder(ctx context.Context, orderID kernel.UUID) ([]*artifact.Artifact, error)
}
