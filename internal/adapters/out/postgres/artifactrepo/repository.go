package artifactrepo

import (
	"context"

	"fulfillment/internal/core/domain/model/artifact"
	"fulfillment/internal/core/domain/model/kernel"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormArtifactRepository implements ArtifactRepository using GORM.
type GormArtifactRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormArtifactRepository creates a new GORM artifact repository.
func NewGormArtifactRepository(db *gorm.DB, tracker aggregateTracker) *GormArtifactRepository {
	return &GormArtifactRepository{
		db:      db,
		tracker: tracker,
	}
}

// Upsert persists an artifact. An existing row with the same
// (order_id, hash) wins and the insert becomes a no-op, which is what a
// pipeline retry with identical content needs.
func (r *GormArtifactRepository) Upsert(ctx context.Context, entity *artifact.Artifact) error {
	if err := entity.Validate(); err != nil {
		return err
	}

	dto := fromDomain(entity)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "hash"}},
			DoNothing: true,
		}).
		Create(&dto).Error
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(entity.ID(), entity)
	return nil
}

// GetAllByOrder retrieves the stored artifacts of an order, oldest first.
func (r *GormArtifactRepository) GetAllByOrder(ctx context.Context, orderID kernel.UUID) ([]*artifact.Artifact, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []ArtifactDTO
	err := r.db.WithContext(ctx).
		Order("created_at").
		Find(&dtos, "order_id = ?", orderID.Bytes()).Error
	if err != nil {
		return nil, err
	}

	artifacts := make([]*artifact.Artifact, 0, len(dtos))
	for _, dto := range dtos {
		a, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}

	return artifacts, nil
}
