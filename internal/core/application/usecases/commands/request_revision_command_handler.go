package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/revision"
)

// RequestRevisionCommandHandler accepts or rejects a revision request.
//
// The credit check and debit run as one guarded UPDATE inside the same
// transaction as the revision insert. Two concurrent requests against a
// balance of one can both pass an application-level check; the guarded
// UPDATE makes exactly one of them win.
type RequestRevisionCommandHandler struct {
	uowFactory RevisionUoWFactory
}

// NewRequestRevisionCommandHandler creates a handler for revision requests.
func NewRequestRevisionCommandHandler(uowFactory RevisionUoWFactory) RequestRevisionCommandHandler {
	return RequestRevisionCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle validates the request, debits one credit and queues the revision
// atomically. Returns order.ErrOrderNotCompleted for a non-DONE order and
// order.ErrNoCredits for an empty balance.
func (h *RequestRevisionCommandHandler) Handle(ctx context.Context, cmd RequestRevisionCommand) (*revision.Revision, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if o.Status() != order.Done {
		return nil, order.ErrOrderNotCompleted
	}

	if err := uow.OrderRepository().DebitCredit(ctx, o.ID(), cmd.Kind()); err != nil {
		return nil, err
	}

	rev, err := revision.NewRevision(kernel.NewUUID(), o.ID(), cmd.TargetDoc(), cmd.Kind(), cmd.UserRequest())
	if err != nil {
		return nil, err
	}
	if err := uow.RevisionRepository().Add(ctx, rev); err != nil {
		return nil, err
	}

	e, err := event.NewEvent(kernel.NewUUID(), o.ID(), event.RevisionRequested, map[string]any{
		"revision_id":   rev.ID().String(),
		"target_doc":    rev.TargetDoc().String(),
		"revision_type": revision.TypeString(rev.Kind()),
	})
	if err != nil {
		return nil, err
	}
	if err := uow.EventRepository().Add(ctx, e); err != nil {
		return nil, err
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	return rev, nil
}
