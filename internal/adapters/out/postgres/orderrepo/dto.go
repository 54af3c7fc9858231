// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, converting between domain entities and database rows.
package orderrepo

import (
	"encoding/json"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OrderDTO represents the database structure for persisting order
// aggregates. The unique index on payment_id is what turns concurrent
// webhook deliveries into duplicates; status and tier are indexed for the
// admin listing queries.
type OrderDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	PaymentID   string    `gorm:"uniqueIndex;not null"`
	Tier        string    `gorm:"index"`
	Amount      int
	Email       string
	Phone       string
	Status      string `gorm:"index"`
	FailReason  string
	LastError   string
	Credits     datatypes.JSON `gorm:"type:jsonb"`
	GateResult  string
	GateScore   int
	CreatedAt   time.Time
	PaidAt      *time.Time
	DeliveredAt *time.Time
}

// TableName overrides GORM's default naming convention.
func (OrderDTO) TableName() string {
	return "orders"
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(aggregate *order.Order) (OrderDTO, error) {
	credits, err := json.Marshal(aggregate.Credits().Map())
	if err != nil {
		return OrderDTO{}, err
	}

	return OrderDTO{
		ID:          aggregate.ID().Bytes(),
		PaymentID:   aggregate.PaymentID(),
		Tier:        aggregate.Tier().String(),
		Amount:      aggregate.Amount(),
		Email:       aggregate.Contact().Email(),
		Phone:       aggregate.Contact().Phone(),
		Status:      aggregate.Status().String(),
		FailReason:  aggregate.FailReason(),
		LastError:   aggregate.LastError(),
		Credits:     credits,
		GateResult:  aggregate.GateResult(),
		GateScore:   aggregate.GateScore(),
		CreatedAt:   aggregate.CreatedAt(),
		PaidAt:      aggregate.PaidAt(),
		DeliveredAt: aggregate.DeliveredAt(),
	}, nil
}

// toDomain reconstructs an order aggregate from a database row.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	tier, err := order.TierFromString(dto.Tier)
	if err != nil {
		return nil, err
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	contact, err := order.NewContact(dto.Email, dto.Phone)
	if err != nil {
		return nil, err
	}

	var balances map[string]int
	if len(dto.Credits) > 0 {
		if err := json.Unmarshal(dto.Credits, &balances); err != nil {
			return nil, err
		}
	}

	return order.RestoreOrder(order.RestoreOrderParams{
		ID:          id,
		PaymentID:   dto.PaymentID,
		Tier:        tier,
		Amount:      dto.Amount,
		Contact:     contact,
		Status:      status,
		FailReason:  dto.FailReason,
		LastError:   dto.LastError,
		Credits:     order.CreditsFromMap(balances),
		GateResult:  dto.GateResult,
		GateScore:   dto.GateScore,
		CreatedAt:   dto.CreatedAt,
		PaidAt:      dto.PaidAt,
		DeliveredAt: dto.DeliveredAt,
	})
}
