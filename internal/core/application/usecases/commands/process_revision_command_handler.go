package commands

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/artifact"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/revision"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// ProcessRevisionCommandHandler executes queued revisions: it regenerates
// the targeted artifact, stores it under its new content hash and notifies
// the customer. Failed revisions are not retried and the debited credit is
// not refunded; the failure stays on record for manual follow-up.
type ProcessRevisionCommandHandler struct {
	uowFactory   RevisionUoWFactory
	generator    ports.Generator
	channels     []ports.DeliveryChannel
	stageTimeout time.Duration
}

// NewProcessRevisionCommandHandler creates the revision worker handler.
func NewProcessRevisionCommandHandler(
	uowFactory RevisionUoWFactory,
	generator ports.Generator,
	channels []ports.DeliveryChannel,
	stageTimeout time.Duration,
) ProcessRevisionCommandHandler {
	if stageTimeout <= 0 {
		stageTimeout = DefaultStageTimeout
	}
	return ProcessRevisionCommandHandler{
		uowFactory:   uowFactory,
		generator:    generator,
		channels:     channels,
		stageTimeout: stageTimeout,
	}
}

// Handle claims and runs the oldest queued revision. The bool reports
// whether a revision was processed; false with a nil error means none was
// waiting.
func (h *ProcessRevisionCommandHandler) Handle(ctx context.Context, cmd ProcessRevisionCommand) (bool, error) {
	if err := cmd.Validate(); err != nil {
		return false, err
	}

	rev, o, err := h.claimNext(ctx)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return false, nil
		}
		return false, err
	}

	if runErr := h.run(ctx, o, rev); runErr != nil {
		if err := rev.Fail(runErr.Error()); err != nil {
			return true, err
		}
		return true, h.finish(ctx, rev, event.RevisionFailed, map[string]any{
			"revision_id": rev.ID().String(),
			"error":       runErr.Error(),
		})
	}

	if err := rev.Complete(); err != nil {
		return true, err
	}
	return true, h.finish(ctx, rev, event.RevisionCompleted, map[string]any{
		"revision_id": rev.ID().String(),
		"target_doc":  rev.TargetDoc().String(),
	})
}

// claimNext pops the oldest queued revision and marks it processing.
func (h *ProcessRevisionCommandHandler) claimNext(ctx context.Context) (*revision.Revision, *order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	rev, err := uow.RevisionRepository().GetFirstInQueuedStatus(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := rev.Start(); err != nil {
		return nil, nil, err
	}
	if err := uow.RevisionRepository().Update(ctx, rev); err != nil {
		return nil, nil, err
	}

	o, err := uow.OrderRepository().Get(ctx, rev.OrderID())
	if err != nil {
		return nil, nil, err
	}

	if err := h.appendEvent(ctx, uow, rev.OrderID(), event.RevisionStarted, map[string]any{
		"revision_id": rev.ID().String(),
	}); err != nil {
		return nil, nil, err
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return rev, o, nil
}

// run regenerates the target artifact, stores it and notifies the customer.
func (h *ProcessRevisionCommandHandler) run(ctx context.Context, o *order.Order, rev *revision.Revision) error {
	callCtx, cancel := context.WithTimeout(ctx, h.stageTimeout)
	revised, err := h.generator.Revise(callCtx, o, rev)
	cancel()
	if err != nil {
		return err
	}

	if err := h.storeArtifact(ctx, revised); err != nil {
		return err
	}

	return h.notify(ctx, o, revised)
}

func (h *ProcessRevisionCommandHandler) storeArtifact(ctx context.Context, a *artifact.Artifact) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.ArtifactRepository().Upsert(ctx, a); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

// notify sends the revised artifact over the first channel that accepts it.
func (h *ProcessRevisionCommandHandler) notify(ctx context.Context, o *order.Order, a *artifact.Artifact) error {
	var lastErr error

	for _, ch := range delivery.FallbackOrder(o.Contact().HasPhone()) {
		sender := h.channelFor(ch)
		if sender == nil {
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, h.stageTimeout)
		_, err := sender.Send(callCtx, sender.Recipient(o.Contact()), []*artifact.Artifact{a})
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("no delivery channel available")
	}
	return lastErr
}

// finish persists the revision's terminal state with its event.
func (h *ProcessRevisionCommandHandler) finish(ctx context.Context, rev *revision.Revision, eventName string, payload map[string]any) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.RevisionRepository().Update(ctx, rev); err != nil {
		return err
	}
	if err := h.appendEvent(ctx, uow, rev.OrderID(), eventName, payload); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

func (h *ProcessRevisionCommandHandler) channelFor(ch delivery.Channel) ports.DeliveryChannel {
	for _, sender := range h.channels {
		if sender.Channel() == ch {
			return sender
		}
	}
	return nil
}

func (h *ProcessRevisionCommandHandler) appendEvent(
	ctx context.Context,
	uow RevisionUoW,
	orderID kernel.UUID,
	name string,
	payload map[string]any,
) error {
	e, err := event.NewEvent(kernel.NewUUID(), orderID, name, payload)
	if err != nil {
		return err
	}
	return uow.EventRepository().Add(ctx, e)
}
