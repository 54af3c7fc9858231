// Package deliveryrepo persists delivery attempt records. Duplicate-send
// protection reads the SENT row for (order_id, channel, batch_hash); failed
// attempts keep their rows, so the triple is indexed but not unique.
package deliveryrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DeliveryDTO represents the database structure for delivery records.
type DeliveryDTO struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID           uuid.UUID `gorm:"type:uuid;index;index:idx_deliveries_dedup"`
	Channel           string    `gorm:"index:idx_deliveries_dedup"`
	BatchHash         string    `gorm:"index:idx_deliveries_dedup"`
	Recipient         string
	Status            string
	ProviderMessageID string
	LastError         string
	CreatedAt         time.Time
	SentAt            *time.Time
}

// TableName overrides GORM's default naming convention.
func (DeliveryDTO) TableName() string {
	return "deliveries"
}

func fromDomain(entity *delivery.Delivery) DeliveryDTO {
	return DeliveryDTO{
		ID:                entity.ID().Bytes(),
		OrderID:           entity.OrderID().Bytes(),
		Channel:           entity.Channel().String(),
		BatchHash:         entity.BatchHash(),
		Recipient:         entity.Recipient(),
		Status:            entity.Status().String(),
		ProviderMessageID: entity.ProviderMessageID(),
		LastError:         entity.LastError(),
		CreatedAt:         entity.CreatedAt(),
		SentAt:            entity.SentAt(),
	}
}

func toDomain(dto DeliveryDTO) (*delivery.Delivery, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	channel, err := delivery.ChannelFromString(dto.Channel)
	if err != nil {
		return nil, err
	}

	status, err := delivery.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	return delivery.RestoreDelivery(delivery.RestoreDeliveryParams{
		ID:                id,
		OrderID:           orderID,
		Channel:           channel,
		BatchHash:         dto.BatchHash,
		Recipient:         dto.Recipient,
		Status:            status,
		ProviderMessageID: dto.ProviderMessageID,
		LastError:         dto.LastError,
		CreatedAt:         dto.CreatedAt,
		SentAt:            dto.SentAt,
	})
}
