// Package eventrepo persists the append-only order timeline.
package eventrepo

import (
	"encoding/json"
	"time"

	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EventDTO represents the database structure for timeline events.
type EventDTO struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID      `gorm:"type:uuid;index"`
	Name      string         `gorm:"index"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"index"`
}

// TableName overrides GORM's default naming convention.
func (EventDTO) TableName() string {
	return "events"
}

func fromDomain(entity *event.Event) (EventDTO, error) {
	var payload datatypes.JSON
	if entity.Payload() != nil {
		raw, err := json.Marshal(entity.Payload())
		if err != nil {
			return EventDTO{}, err
		}
		payload = raw
	}

	return EventDTO{
		ID:        entity.ID().Bytes(),
		OrderID:   entity.OrderID().Bytes(),
		Name:      entity.Name(),
		Payload:   payload,
		CreatedAt: entity.CreatedAt(),
	}, nil
}

func toDomain(dto EventDTO) (*event.Event, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if len(dto.Payload) > 0 {
		if err := json.Unmarshal(dto.Payload, &payload); err != nil {
			return nil, err
		}
	}

	return event.RestoreEvent(id, orderID, dto.Name, payload, dto.CreatedAt)
}
