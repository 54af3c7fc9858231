package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/artifact"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/revision"
)

// Generator produces the deliverable content for an order. Implementations
// wrap the actual model calls; the pipeline only sees the resulting batch
// and its cost. Generate must respect the context deadline: the pipeline
// treats a deadline hit as a transient failure.
type Generator interface {
	// Generate produces the full artifact batch for an order. The budget
	// is advisory here; the pipeline enforces it on the returned costs.
	Generate(ctx context.Context, o *order.Order, budget order.Budget) (artifact.Batch, error)

	// Revise regenerates the artifact targeted by a revision request.
	Revise(ctx context.Context, o *order.Order, rev *revision.Revision) (*artifact.Artifact, error)
}
