package delivery

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// ErrDeliveryIsNotConstructed is returned when a Delivery instance was not
// created through NewDelivery or RestoreDelivery.
var ErrDeliveryIsNotConstructed = errors.New("Delivery must be created via NewDelivery constructor")

// Status is the lifecycle state of one delivery attempt record.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	StatusUnknown Status = iota

	// StatusPending means the send has been recorded but not confirmed.
	StatusPending

	// StatusSent means the provider accepted the message.
	StatusSent

	// StatusFail means the send failed on this channel.
	StatusFail
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown: "UNKNOWN",
		StatusPending: "PENDING",
		StatusSent:    "SENT",
		StatusFail:    "FAIL",
	}
}

// StatusFromString parses the persisted representation of a delivery status.
func StatusFromString(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != StatusUnknown {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("delivery status", fmt.Errorf("%q is not a known delivery status", s))
}

// String returns the persisted name of the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// Validate checks that the Status is one of the defined states.
func (s Status) Validate() error {
	if s == StatusUnknown {
		return errs.NewValueIsInvalidErrorWithCause("delivery status", fmt.Errorf("%d is not a valid delivery status", s))
	}
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("delivery status", fmt.Errorf("%d is not a valid delivery status", s))
	}
	return nil
}

// Delivery records one send of a batch over one channel. The unique key
// (order, channel, batch hash) makes re-sending the same content after a
// retry a no-op.
type Delivery struct {
	id        kernel.UUID
	orderID   kernel.UUID
	channel   Channel
	batchHash string
	recipient string

	status            Status
	providerMessageID string
	lastError         string

	createdAt time.Time
	sentAt    *time.Time

	isConstructed bool
}

// NewDelivery records a pending send of a batch over a channel to the
// given recipient (email address or phone number, depending on channel).
func NewDelivery(id, orderID kernel.UUID, channel Channel, batchHash, recipient string) (*Delivery, error) {
	if err := errors.Join(id.Validate(), orderID.Validate(), channel.Validate()); err != nil {
		return nil, err
	}
	if batchHash == "" {
		return nil, errs.NewValueIsRequiredError("batch hash")
	}
	if recipient == "" {
		return nil, errs.NewValueIsRequiredError("recipient")
	}

	return &Delivery{
		id:            id,
		orderID:       orderID,
		channel:       channel,
		batchHash:     batchHash,
		recipient:     recipient,
		status:        StatusPending,
		createdAt:     time.Now().UTC(),
		isConstructed: true,
	}, nil
}

// RestoreDeliveryParams carries the persisted state of a delivery back into
// the domain.
type RestoreDeliveryParams struct {
	ID                kernel.UUID
	OrderID           kernel.UUID
	Channel           Channel
	BatchHash         string
	Recipient         string
	Status            Status
	ProviderMessageID string
	LastError         string
	CreatedAt         time.Time
	SentAt            *time.Time
}

// RestoreDelivery reconstructs a Delivery from persistence.
func RestoreDelivery(p RestoreDeliveryParams) (*Delivery, error) {
	d, err := NewDelivery(p.ID, p.OrderID, p.Channel, p.BatchHash, p.Recipient)
	if err != nil {
		return nil, err
	}
	if err := p.Status.Validate(); err != nil {
		return nil, err
	}

	d.status = p.Status
	d.providerMessageID = p.ProviderMessageID
	d.lastError = p.LastError
	d.createdAt = p.CreatedAt
	d.sentAt = p.SentAt
	return d, nil
}

// Validate ensures the Delivery was created through a constructor.
func (d *Delivery) Validate() error {
	if d == nil || !d.isConstructed {
		return ErrDeliveryIsNotConstructed
	}
	return nil
}

// ID returns the delivery's unique identifier.
func (d *Delivery) ID() kernel.UUID { return d.id }

// OrderID returns the owning order.
func (d *Delivery) OrderID() kernel.UUID { return d.orderID }

// Channel returns the channel used for this send.
func (d *Delivery) Channel() Channel { return d.channel }

// BatchHash returns the fingerprint of the sent content.
func (d *Delivery) BatchHash() string { return d.batchHash }

// Recipient returns the channel-specific address the batch was sent to.
func (d *Delivery) Recipient() string { return d.recipient }

// Status returns the outcome of this send.
func (d *Delivery) Status() Status { return d.status }

// ProviderMessageID returns the provider-side message identifier, empty
// unless the send succeeded.
func (d *Delivery) ProviderMessageID() string { return d.providerMessageID }

// LastError returns the provider error, empty unless the send failed.
func (d *Delivery) LastError() string { return d.lastError }

// CreatedAt returns the time the send was recorded.
func (d *Delivery) CreatedAt() time.Time { return d.createdAt }

// SentAt returns the provider acceptance time, nil unless sent.
func (d *Delivery) SentAt() *time.Time { return d.sentAt }

// MarkSent records provider acceptance.
func (d *Delivery) MarkSent(providerMessageID string) error {
	if d.status != StatusPending {
		return errs.NewValueIsInvalidErrorWithCause(
			"delivery status",
			fmt.Errorf("cannot mark a %s delivery as sent", d.status),
		)
	}
	now := time.Now().UTC()
	d.status = StatusSent
	d.providerMessageID = providerMessageID
	d.sentAt = &now
	return nil
}

// MarkFailed records a provider failure on this channel.
func (d *Delivery) MarkFailed(lastError string) error {
	if d.status != StatusPending {
		return errs.NewValueIsInvalidErrorWithCause(
			"delivery status",
			fmt.Errorf("cannot mark a %s delivery as failed", d.status),
		)
	}
	d.status = StatusFail
	d.lastError = lastError
	return nil
}
