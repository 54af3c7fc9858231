package event

import (
	"errors"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Event names. One event is appended per state transition and per external
// side effect; together they form the order's immutable timeline.
const (
	PaySuccess        = "pay_success"
	JobQueued         = "job_queued"
	JobStarted        = "job_started"
	JobDone           = "job_done"
	JobFailed         = "job_failed"
	GatePassed        = "gate_passed"
	GateWarned        = "gate_warned"
	GateFailed        = "gate_failed"
	DeliveryFailed    = "delivery_failed"
	RevisionRequested = "revision_requested"
	RevisionStarted   = "revision_started"
	RevisionCompleted = "revision_completed"
	RevisionFailed    = "revision_failed"
	AssetsViewed      = "assets_viewed"
	DownloadClicked   = "download_clicked"
)

// StatusChanged returns the event name for entering a state, e.g.
// "status_generating".
func StatusChanged(status string) string {
	return "status_" + strings.ToLower(status)
}

// AssetGenerated returns the event name for a finished generation run, e.g.
// "asset_generated_premium".
func AssetGenerated(tier string) string {
	return "asset_generated_" + strings.ToLower(tier)
}

// DeliverySent returns the event name for a successful send, e.g.
// "delivery_email_sent".
func DeliverySent(channel string) string {
	return "delivery_" + strings.ToLower(channel) + "_sent"
}

// ErrEventIsNotConstructed is returned when an Event instance was not
// created through NewEvent or RestoreEvent.
var ErrEventIsNotConstructed = errors.New("Event must be created via NewEvent constructor")

// Event is one append-only timeline entry. Events are never updated or
// deleted.
type Event struct {
	id        kernel.UUID
	orderID   kernel.UUID
	name      string
	payload   map[string]any
	createdAt time.Time

	isConstructed bool
}

// NewEvent appends a timeline entry. The payload may be nil.
func NewEvent(id, orderID kernel.UUID, name string, payload map[string]any) (*Event, error) {
	if err := errors.Join(id.Validate(), orderID.Validate()); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errs.NewValueIsRequiredError("event name")
	}

	return &Event{
		id:            id,
		orderID:       orderID,
		name:          name,
		payload:       payload,
		createdAt:     time.Now().UTC(),
		isConstructed: true,
	}, nil
}

// RestoreEvent reconstructs an Event from persistence.
func RestoreEvent(id, orderID kernel.UUID, name string, payload map[string]any, createdAt time.Time) (*Event, error) {
	e, err := NewEvent(id, orderID, name, payload)
	if err != nil {
		return nil, err
	}
	e.createdAt = createdAt
	return e, nil
}

// Validate ensures the Event was created through a constructor.
func (e *Event) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrEventIsNotConstructed
	}
	return nil
}

// ID returns the event's unique identifier.
func (e *Event) ID() kernel.UUID { return e.id }

// OrderID returns the order this event belongs to.
func (e *Event) OrderID() kernel.UUID { return e.orderID }

// Name returns the event name.
func (e *Event) Name() string { return e.name }

// Payload returns the structured event detail, possibly nil.
func (e *Event) Payload() map[string]any { return e.payload }

// CreatedAt returns the append time, which orders the timeline.
func (e *Event) CreatedAt() time.Time { return e.createdAt }
