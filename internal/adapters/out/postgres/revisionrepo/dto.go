// Package revisionrepo persists revision requests. Queued rows ordered by
// creation time form the revision worker's FIFO.
package revisionrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/revision"

	"github.com/google/uuid"
)

// RevisionDTO represents the database structure for persisting revisions.
type RevisionDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID        uuid.UUID `gorm:"type:uuid;index"`
	TargetDoc      string
	RevisionType   string
	Request        string
	Status         string `gorm:"index"`
	CreditsDebited int
	LastError      string
	CreatedAt      time.Time `gorm:"index"`
	ProcessedAt    *time.Time
}

// TableName overrides GORM's default naming convention.
func (RevisionDTO) TableName() string {
	return "revisions"
}

func fromDomain(entity *revision.Revision) RevisionDTO {
	return RevisionDTO{
		ID:             entity.ID().Bytes(),
		OrderID:        entity.OrderID().Bytes(),
		TargetDoc:      entity.TargetDoc().String(),
		RevisionType:   revision.TypeString(entity.Kind()),
		Request:        entity.Request(),
		Status:         entity.Status().String(),
		CreditsDebited: entity.CreditsDebited(),
		LastError:      entity.LastError(),
		CreatedAt:      entity.CreatedAt(),
		ProcessedAt:    entity.ProcessedAt(),
	}
}

func toDomain(dto RevisionDTO) (*revision.Revision, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	targetDoc, err := revision.TargetDocFromString(dto.TargetDoc)
	if err != nil {
		return nil, err
	}

	var kind order.CreditKind
	kind, err = revision.TypeFromString(dto.RevisionType)
	if err != nil {
		return nil, err
	}

	status, err := revision.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	return revision.RestoreRevision(revision.RestoreRevisionParams{
		ID:             id,
		OrderID:        orderID,
		TargetDoc:      targetDoc,
		Kind:           kind,
		Request:        dto.Request,
		Status:         status,
		CreditsDebited: dto.CreditsDebited,
		LastError:      dto.LastError,
		CreatedAt:      dto.CreatedAt,
		ProcessedAt:    dto.ProcessedAt,
	})
}
