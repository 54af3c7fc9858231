package commands

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrTrackEngagementCommandIsNotConstructed = errors.New(
		"TrackEngagementCommand must be created via NewTrackEngagementCommand constructor",
	)
)

// TrackEngagementCommand appends a customer engagement event to an order's
// timeline, e.g. when the customer views their assets or clicks a download
// link.
type TrackEngagementCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	eventName string

	guard guard.ConstructorGuard
}

// NewTrackEngagementCommand creates an engagement tracking command. Only
// the engagement event names are accepted; pipeline events are appended by
// their own handlers.
func NewTrackEngagementCommand(orderID kernel.UUID, eventName string) (TrackEngagementCommand, error) {
	cmd := TrackEngagementCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setEventName(eventName),
	); err != nil {
		return TrackEngagementCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c TrackEngagementCommand) Validate() error {
	return c.guard.Validate(ErrTrackEngagementCommandIsNotConstructed)
}

// OrderID returns the order the engagement belongs to.
func (c TrackEngagementCommand) OrderID() kernel.UUID {
	return c.orderID
}

// EventName returns the timeline event to append.
func (c TrackEngagementCommand) EventName() string {
	return c.eventName
}

func (c *TrackEngagementCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *TrackEngagementCommand) setEventName(eventName string) error {
	if eventName != event.AssetsViewed && eventName != event.DownloadClicked {
		return fmt.Errorf("%q is not an engagement event", eventName)
	}

	c.eventName = eventName
	return nil
}
