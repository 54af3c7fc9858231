package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/kernel"
)

// TrackEngagementCommandHandler appends engagement events to the timeline.
// The order must exist; beyond that any order state is fine, a customer can
// look at a failed order's page too.
type TrackEngagementCommandHandler struct {
	uowFactory EngagementUoWFactory
}

// NewTrackEngagementCommandHandler creates the engagement handler.
func NewTrackEngagementCommandHandler(uowFactory EngagementUoWFactory) TrackEngagementCommandHandler {
	return TrackEngagementCommandHandler{uowFactory: uowFactory}
}

// Handle verifies the order exists and appends the engagement event.
func (h *TrackEngagementCommandHandler) Handle(ctx context.Context, cmd TrackEngagementCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	e, err := event.NewEvent(kernel.NewUUID(), o.ID(), cmd.EventName(), map[string]any{
		"status": o.Status().String(),
	})
	if err != nil {
		return err
	}
	if err := uow.EventRepository().Add(ctx, e); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
