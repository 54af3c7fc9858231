// Package artifactrepo persists generated artifacts. The composite unique
// index on (order_id, hash) makes storage replay-safe: re-storing identical
// content after a crash is a no-op.
package artifactrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/artifact"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// ArtifactDTO represents the database structure for persisting artifacts.
type ArtifactDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_artifacts_order_hash"`
	Type      string
	Name      string
	Hash      string `gorm:"uniqueIndex:idx_artifacts_order_hash"`
	URI       string
	SizeBytes int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// TableName overrides GORM's default naming convention.
func (ArtifactDTO) TableName() string {
	return "artifacts"
}

func fromDomain(entity *artifact.Artifact) ArtifactDTO {
	return ArtifactDTO{
		ID:        entity.ID().Bytes(),
		OrderID:   entity.OrderID().Bytes(),
		Type:      entity.Type().String(),
		Name:      entity.Name(),
		Hash:      entity.Hash(),
		URI:       entity.URI(),
		SizeBytes: entity.SizeBytes(),
		CreatedAt: entity.CreatedAt(),
		ExpiresAt: entity.ExpiresAt(),
	}
}

func toDomain(dto ArtifactDTO) (*artifact.Artifact, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	typ, err := artifact.TypeFromString(dto.Type)
	if err != nil {
		return nil, err
	}

	return artifact.RestoreArtifact(
		id, orderID, typ, dto.Name, dto.Hash, dto.URI, dto.SizeBytes, dto.CreatedAt, dto.ExpiresAt)
}
