// Package generation provides the built-in Generator implementation. It
// produces deterministic placeholder content: the bytes for an artifact are
// derived from the order, the artifact type and (for revisions) the user
// request, so a retried stage regenerates byte-identical batches and the
// storage upsert stays a no-op. A real model backend replaces this adapter
// behind the same port.
package generation

import (
	"context"
	"fmt"

	"fulfillment/internal/core/domain/model/artifact"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/revision"
)

const tokensPerArtifact = 1500

// imageCost is how many images each artifact kind renders.
func imageCost(typ artifact.Type) int {
	switch typ {
	case artifact.TypeStorybookPDF, artifact.TypeMobileCards:
		return 2
	case artifact.TypeWebtoonCuts:
		return 4
	case artifact.TypeWebtoonCombined:
		return 1
	default:
		return 0
	}
}

func fileExtension(typ artifact.Type) string {
	switch typ {
	case artifact.TypeMobileCards, artifact.TypeWebtoonCuts, artifact.TypeWebtoonCombined:
		return "png"
	default:
		return "pdf"
	}
}

// StubGenerator implements ports.Generator with deterministic content.
type StubGenerator struct {
	baseURI string
}

// NewStubGenerator creates the generator. baseURI is the storage location
// prefix artifacts are addressed under, e.g. "https://cdn.example.com/artifacts".
func NewStubGenerator(baseURI string) *StubGenerator {
	return &StubGenerator{baseURI: baseURI}
}

// Generate produces the full artifact batch for the order's tier. The cost
// is a fixed function of the batch composition and stays inside every tier
// budget.
func (g *StubGenerator) Generate(ctx context.Context, o *order.Order, _ order.Budget) (artifact.Batch, error) {
	if err := ctx.Err(); err != nil {
		return artifact.Batch{}, err
	}

	types := artifact.TypesForTier(o.Tier())
	batch := artifact.Batch{
		Artifacts: make([]*artifact.Artifact, 0, len(types)),
	}

	for _, typ := range types {
		content := fmt.Sprintf("generated %s for order %s (%s)", typ, o.ID(), o.Tier())
		a, err := g.buildArtifact(o.ID(), typ, []byte(content))
		if err != nil {
			return artifact.Batch{}, err
		}

		batch.Artifacts = append(batch.Artifacts, a)
		batch.TokensUsed += tokensPerArtifact
		batch.ImagesGenerated += imageCost(typ)
	}

	return batch, nil
}

// Revise regenerates the artifact targeted by the revision. The user
// request is folded into the content so every revision yields a new
// content hash.
func (g *StubGenerator) Revise(ctx context.Context, o *order.Order, rev *revision.Revision) (*artifact.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	typ, err := targetArtifactType(rev.TargetDoc())
	if err != nil {
		return nil, err
	}

	content := fmt.Sprintf("revised %s for order %s: %s", typ, o.ID(), rev.Request())
	return g.buildArtifact(o.ID(), typ, []byte(content))
}

func (g *StubGenerator) buildArtifact(orderID kernel.UUID, typ artifact.Type, content []byte) (*artifact.Artifact, error) {
	name := fmt.Sprintf("%s.%s", typ, fileExtension(typ))
	uri := fmt.Sprintf("%s/%s/%s", g.baseURI, orderID, name)

	return artifact.NewArtifact(
		kernel.NewUUID(), orderID, typ,
		name, artifact.HashContent(content), uri, int64(len(content)))
}

// targetArtifactType maps a revision target to the artifact kind that gets
// regenerated. Webtoon revisions rebuild the combined strip; the cuts stay
// as originally delivered.
func targetArtifactType(target revision.TargetDoc) (artifact.Type, error) {
	switch target {
	case revision.TargetStorybook:
		return artifact.TypeStorybookPDF, nil
	case revision.TargetWebtoon:
		return artifact.TypeWebtoonCombined, nil
	case revision.TargetDecisionMap:
		return artifact.TypeDecisionMapPDF, nil
	case revision.TargetRoadmap:
		return artifact.TypeRoadmapPDF, nil
	default:
		return artifact.TypeUnknown, fmt.Errorf("no artifact type for revision target %s", target)
	}
}
