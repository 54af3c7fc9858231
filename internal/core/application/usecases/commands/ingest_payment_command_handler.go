package commands

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/job"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// IngestPaymentResult is the outcome of one webhook delivery. Job is nil
// for duplicate deliveries.
type IngestPaymentResult struct {
	Order       *order.Order
	Job         *job.Job
	IsDuplicate bool
}

// IngestPaymentCommandHandler turns a verified payment into exactly one
// order and exactly one queued job.
//
// The handler runs two transactions on purpose. The first durably commits
// the paid order; the second enqueues the job and moves the order to
// QUEUED. A crash between the two leaves a recoverable PAID order with no
// job instead of a job pointing at nothing. The unique index on payment_id
// converts concurrent deliveries of the same webhook into duplicate
// responses.
type IngestPaymentCommandHandler struct {
	uowFactory IntakeUoWFactory
}

// NewIngestPaymentCommandHandler creates a handler for payment intake.
func NewIngestPaymentCommandHandler(uowFactory IntakeUoWFactory) IngestPaymentCommandHandler {
	return IngestPaymentCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes one webhook delivery idempotently.
func (h *IngestPaymentCommandHandler) Handle(ctx context.Context, cmd IngestPaymentCommand) (IngestPaymentResult, error) {
	if err := cmd.Validate(); err != nil {
		return IngestPaymentResult{}, err
	}

	newOrder, created, err := h.createOrder(ctx, cmd)
	if err != nil {
		return IngestPaymentResult{}, err
	}
	if !created {
		return IngestPaymentResult{Order: newOrder, IsDuplicate: true}, nil
	}

	newJob, err := h.enqueueJob(ctx, newOrder)
	if err != nil {
		return IngestPaymentResult{}, err
	}

	return IngestPaymentResult{Order: newOrder, Job: newJob, IsDuplicate: false}, nil
}

// createOrder commits the paid order, or returns the existing one when this
// payment was already ingested. The bool reports whether a new order was
// created.
func (h *IngestPaymentCommandHandler) createOrder(ctx context.Context, cmd IngestPaymentCommand) (*order.Order, bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	existing, err := orderRepo.GetByPaymentID(ctx, cmd.PaymentID())
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return nil, false, err
	}

	newOrder, err := order.NewOrder(kernel.NewUUID(), cmd.PaymentID(), cmd.Tier(), cmd.Amount(), cmd.Contact())
	if err != nil {
		return nil, false, err
	}
	if err := newOrder.MarkPaid(); err != nil {
		return nil, false, err
	}

	if err := orderRepo.Add(ctx, newOrder); err != nil {
		// A concurrent delivery won the insert race; surface its order.
		if errors.Is(err, errs.ErrObjectAlreadyExists) {
			winner, getErr := orderRepo.GetByPaymentID(ctx, cmd.PaymentID())
			if getErr != nil {
				return nil, false, getErr
			}
			return winner, false, nil
		}
		return nil, false, err
	}

	if err := h.appendEvent(ctx, uow, newOrder.ID(), event.PaySuccess, map[string]any{
		"payment_id": cmd.PaymentID(),
		"tier":       cmd.Tier().String(),
		"amount":     cmd.Amount(),
		"user_id":    cmd.UserID(),
		"wish_id":    cmd.WishID(),
	}); err != nil {
		return nil, false, err
	}
	if err := h.appendEvent(ctx, uow, newOrder.ID(), event.StatusChanged(newOrder.Status().String()), nil); err != nil {
		return nil, false, err
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, false, err
	}

	return newOrder, true, nil
}

// enqueueJob creates the single generation job and moves the order to QUEUED.
func (h *IngestPaymentCommandHandler) enqueueJob(ctx context.Context, o *order.Order) (*job.Job, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	newJob, err := job.NewJob(kernel.NewUUID(), o.ID(), o.Tier())
	if err != nil {
		return nil, err
	}
	if err := uow.JobRepository().Add(ctx, newJob); err != nil {
		return nil, err
	}

	if err := o.MarkQueued(); err != nil {
		return nil, err
	}
	if err := uow.OrderRepository().Update(ctx, o); err != nil {
		return nil, err
	}

	if err := h.appendEvent(ctx, uow, o.ID(), event.JobQueued, map[string]any{
		"job_id":   newJob.ID().String(),
		"job_type": newJob.JobType(),
	}); err != nil {
		return nil, err
	}
	if err := h.appendEvent(ctx, uow, o.ID(), event.StatusChanged(o.Status().String()), nil); err != nil {
		return nil, err
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	return newJob, nil
}

func (h *IngestPaymentCommandHandler) appendEvent(
	ctx context.Context,
	uow IntakeUoW,
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
