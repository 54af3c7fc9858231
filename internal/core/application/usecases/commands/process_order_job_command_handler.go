package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/artifact"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/job"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// Machine-readable order failure reasons.
const (
	ReasonBudgetExceeded     = "BUDGET_EXCEEDED"
	ReasonEthicsGateFail     = "ETHICS_GATE_FAIL"
	ReasonMaxRetriesExceeded = "MAX_RETRIES_EXCEEDED"
)

// DefaultStageTimeout bounds each external call (generator, gate, channel
// send). A deadline hit is a transient failure, distinct from a rejection.
const DefaultStageTimeout = 120 * time.Second

// stageFailure classifies a pipeline failure. Fatal failures (budget
// overrun, gate rejection) bypass the retry path entirely: the order is
// already in its terminal state when the failure propagates. Transient
// failures leave the order in its stage status so a retry resumes there.
type stageFailure struct {
	stage services.Stage
	fatal bool
	cause error
}

func (e *stageFailure) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.stage, e.cause)
}

func (e *stageFailure) Unwrap() error {
	return e.cause
}

func transientFailure(stage services.Stage, cause error) *stageFailure {
	return &stageFailure{stage: stage, cause: cause}
}

func fatalFailure(stage services.Stage, cause error) *stageFailure {
	return &stageFailure{stage: stage, fatal: true, cause: cause}
}

// ProcessOrderJobCommandHandler executes the Generate -> Gate -> Store ->
// Deliver pipeline for the oldest queued job. It is the only writer of
// in-flight orders; the drain loop guarantees a single invocation at a time.
//
// Each stage transition is committed in its own short transaction so a
// crash mid-pipeline leaves the order in a resumable status. The external
// calls themselves run outside any transaction.
type ProcessOrderJobCommandHandler struct {
	uowFactory   PipelineUoWFactory
	generator    ports.Generator
	gate         ports.SafetyGate
	channels     []ports.DeliveryChannel
	planner      services.StagePlanner
	stageTimeout time.Duration
}

// NewProcessOrderJobCommandHandler creates the pipeline handler. A
// non-positive stageTimeout falls back to DefaultStageTimeout.
func NewProcessOrderJobCommandHandler(
	uowFactory PipelineUoWFactory,
	generator ports.Generator,
	gate ports.SafetyGate,
	channels []ports.DeliveryChannel,
	stageTimeout time.Duration,
) ProcessOrderJobCommandHandler {
	if stageTimeout <= 0 {
		stageTimeout = DefaultStageTimeout
	}
	return ProcessOrderJobCommandHandler{
		uowFactory:   uowFactory,
		generator:    generator,
		gate:         gate,
		channels:     channels,
		planner:      services.NewStagePlanner(),
		stageTimeout: stageTimeout,
	}
}

// Handle claims and runs the oldest queued job. The bool reports whether a
// job was processed; false with a nil error means the queue is empty.
func (h *ProcessOrderJobCommandHandler) Handle(ctx context.Context, cmd ProcessOrderJobCommand) (bool, error) {
	if err := cmd.Validate(); err != nil {
		return false, err
	}

	jb, o, err := h.claimNext(ctx)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return false, nil
		}
		return false, err
	}

	started := time.Now()
	if sfail := h.runPipeline(ctx, o); sfail != nil {
		return true, h.finishFailure(ctx, o, jb, sfail)
	}
	return true, h.finishSuccess(ctx, o, jb, time.Since(started))
}

// claimNext pops the FIFO head and marks it processing in one transaction.
func (h *ProcessOrderJobCommandHandler) claimNext(ctx context.Context) (*job.Job, *order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	jb, err := uow.JobRepository().GetFirstInQueuedStatus(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := jb.Start(); err != nil {
		return nil, nil, err
	}
	if err := uow.JobRepository().Update(ctx, jb); err != nil {
		return nil, nil, err
	}

	o, err := uow.OrderRepository().Get(ctx, jb.OrderID())
	if err != nil {
		return nil, nil, err
	}

	if err := h.appendEvent(ctx, uow, o.ID(), event.JobStarted, map[string]any{
		"job_id":  jb.ID().String(),
		"attempt": jb.Attempt(),
	}); err != nil {
		return nil, nil, err
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return jb, o, nil
}

// runPipeline executes the stages the order still needs. Artifacts stored
// by an earlier attempt are reused; otherwise generation runs (again).
func (h *ProcessOrderJobCommandHandler) runPipeline(ctx context.Context, o *order.Order) *stageFailure {
	if _, err := h.planner.FirstStage(o.Status()); err != nil {
		return fatalFailure(services.StageUnknown, err)
	}

	batch := artifact.Batch{}
	if o.Status() != order.Queued && o.Status() != order.Generating {
		stored, err := h.loadStoredArtifacts(ctx, o.ID())
		if err != nil {
			return transientFailure(services.StageStore, err)
		}
		batch.Artifacts = stored
	}

	if len(batch.Artifacts) == 0 {
		generated, sfail := h.generateAndGate(ctx, o)
		if sfail != nil {
			return sfail
		}
		batch = generated
	}

	if sfail := h.store(ctx, o, batch); sfail != nil {
		return sfail
	}
	return h.deliver(ctx, o, batch)
}

// generateAndGate produces the batch, enforces the tier budget and runs the
// safety gate. Status transitions only happen on the first pass; a rerun
// after a crash past GATED regenerates without touching the status.
func (h *ProcessOrderJobCommandHandler) generateAndGate(ctx context.Context, o *order.Order) (artifact.Batch, *stageFailure) {
	if o.Status() == order.Queued {
		if sfail := h.advance(ctx, o, (*order.Order).StartGenerating, nil); sfail != nil {
			return artifact.Batch{}, sfail
		}
	}

	budget := o.Tier().GenerationBudget()
	callCtx, cancel := context.WithTimeout(ctx, h.stageTimeout)
	batch, err := h.generator.Generate(callCtx, o, budget)
	cancel()
	if err != nil {
		return artifact.Batch{}, transientFailure(services.StageGenerate, err)
	}

	if exceeded, reason := batch.ExceedsBudget(budget); exceeded {
		sfail := fatalFailure(services.StageGenerate, errors.New(reason))
		if err := h.failOrder(ctx, o, order.FailBudget, ReasonBudgetExceeded, reason, nil); err != nil {
			return artifact.Batch{}, transientFailure(services.StageGenerate, err)
		}
		return artifact.Batch{}, sfail
	}

	if o.Status() == order.Generating {
		if sfail := h.advance(ctx, o, (*order.Order).MarkGated, []orderEvent{{
			name: event.AssetGenerated(o.Tier().String()),
			payload: map[string]any{
				"artifacts":        len(batch.Artifacts),
				"tokens_used":      batch.TokensUsed,
				"images_generated": batch.ImagesGenerated,
			},
		}}); sfail != nil {
			return artifact.Batch{}, sfail
		}
	}

	return batch, h.runGate(ctx, o, batch)
}

// runGate inspects the batch. FAIL is fatal; WARN is recorded and the
// pipeline continues; PASS is recorded silently.
func (h *ProcessOrderJobCommandHandler) runGate(ctx context.Context, o *order.Order, batch artifact.Batch) *stageFailure {
	callCtx, cancel := context.WithTimeout(ctx, h.stageTimeout)
	verdict, err := h.gate.Inspect(callCtx, batch)
	cancel()
	if err != nil {
		return transientFailure(services.StageGate, err)
	}

	o.RecordGateVerdict(verdict.Result, verdict.Score)

	payload := map[string]any{
		"score":   verdict.Score,
		"reasons": verdict.Reasons,
	}

	switch verdict.Result {
	case ports.GateFail:
		reason := strings.Join(verdict.Reasons, "; ")
		if err := h.failOrder(ctx, o, order.FailGate, ReasonEthicsGateFail, reason, []orderEvent{{name: event.GateFailed, payload: payload}}); err != nil {
			return transientFailure(services.StageGate, err)
		}
		return fatalFailure(services.StageGate, fmt.Errorf("gate rejected content: %s", reason))
	case ports.GateWarn:
		if err := h.recordOrder(ctx, o, []orderEvent{{name: event.GateWarned, payload: payload}}); err != nil {
			return transientFailure(services.StageGate, err)
		}
	default:
		if err := h.recordOrder(ctx, o, []orderEvent{{name: event.GatePassed, payload: payload}}); err != nil {
			return transientFailure(services.StageGate, err)
		}
	}
	return nil
}

// store upserts every artifact on (order, content hash). Replays after a
// crash skip rows that already exist.
func (h *ProcessOrderJobCommandHandler) store(ctx context.Context, o *order.Order, batch artifact.Batch) *stageFailure {
	if o.Status() == order.Delivering {
		return nil
	}

	if o.Status() == order.Gated {
		if sfail := h.advance(ctx, o, (*order.Order).StartStoring, nil); sfail != nil {
			return sfail
		}
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return transientFailure(services.StageStore, err)
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	for _, a := range batch.Artifacts {
		if err := uow.ArtifactRepository().Upsert(ctx, a); err != nil {
			return transientFailure(services.StageStore, err)
		}
	}
	if err := uow.Commit(ctx); err != nil {
		return transientFailure(services.StageStore, err)
	}
	return nil
}

// deliver sends the batch, primary channel first, with duplicate-send
// protection on (order, channel, batch hash).
func (h *ProcessOrderJobCommandHandler) deliver(ctx context.Context, o *order.Order, batch artifact.Batch) *stageFailure {
	if o.Status() == order.Storing {
		if sfail := h.advance(ctx, o, (*order.Order).StartDelivering, nil); sfail != nil {
			return sfail
		}
	}

	batchHash := batch.Hash()
	var lastErr error

	for _, ch := range delivery.FallbackOrder(o.Contact().HasPhone()) {
		sender := h.channelFor(ch)
		if sender == nil {
			continue
		}

		sent, err := h.sendOnChannel(ctx, o, sender, batch.Artifacts, batchHash)
		if err != nil {
			lastErr = err
			continue
		}
		if sent {
			return nil
		}
	}

	if lastErr == nil {
		lastErr = errors.New("no delivery channel available")
	}
	return transientFailure(services.StageDeliver, lastErr)
}

// sendOnChannel attempts one channel. A prior SENT record for the same
// content short-circuits as a no-op success without an external call.
func (h *ProcessOrderJobCommandHandler) sendOnChannel(
	ctx context.Context,
	o *order.Order,
	sender ports.DeliveryChannel,
	artifacts []*artifact.Artifact,
	batchHash string,
) (bool, error) {
	ch := sender.Channel()

	prior, err := h.getSentDelivery(ctx, o.ID(), ch, batchHash)
	if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
		return false, err
	}
	if prior != nil {
		return true, nil
	}

	d, err := delivery.NewDelivery(kernel.NewUUID(), o.ID(), ch, batchHash, sender.Recipient(o.Contact()))
	if err != nil {
		return false, err
	}
	if err := h.addDelivery(ctx, d); err != nil {
		return false, err
	}

	callCtx, cancel := context.WithTimeout(ctx, h.stageTimeout)
	providerMessageID, sendErr := sender.Send(callCtx, d.Recipient(), artifacts)
	cancel()

	if sendErr != nil {
		if err := d.MarkFailed(sendErr.Error()); err != nil {
			return false, err
		}
		if err := h.updateDelivery(ctx, o.ID(), d, event.DeliveryFailed, map[string]any{
			"channel": ch.String(),
			"error":   sendErr.Error(),
		}); err != nil {
			return false, err
		}
		return false, sendErr
	}

	if err := d.MarkSent(providerMessageID); err != nil {
		return false, err
	}
	if err := h.updateDelivery(ctx, o.ID(), d, event.DeliverySent(ch.String()), map[string]any{
		"channel":             ch.String(),
		"provider_message_id": providerMessageID,
		"batch_hash":          batchHash,
	}); err != nil {
		return false, err
	}
	return true, nil
}

// finishSuccess moves order and job to their terminal success states in
// one transaction.
func (h *ProcessOrderJobCommandHandler) finishSuccess(ctx context.Context, o *order.Order, jb *job.Job, took time.Duration) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := o.Complete(); err != nil {
		return err
	}
	if err := uow.OrderRepository().Update(ctx, o); err != nil {
		return err
	}
	if err := jb.Complete(); err != nil {
		return err
	}
	if err := uow.JobRepository().Update(ctx, jb); err != nil {
		return err
	}

	if err := h.appendEvent(ctx, uow, o.ID(), event.StatusChanged(o.Status().String()), nil); err != nil {
		return err
	}
	if err := h.appendEvent(ctx, uow, o.ID(), event.JobDone, map[string]any{
		"job_id":      jb.ID().String(),
		"duration_ms": took.Milliseconds(),
		"attempts":    jb.Attempt(),
	}); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// finishFailure records the failed execution, then either requeues the job
// (transient, attempts left) or makes it terminal.
func (h *ProcessOrderJobCommandHandler) finishFailure(ctx context.Context, o *order.Order, jb *job.Job, sfail *stageFailure) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := jb.RecordFailure(sfail.cause.Error()); err != nil {
		return err
	}

	if !sfail.fatal && jb.CanRetry() {
		if err := jb.Requeue(); err != nil {
			return err
		}
		if err := uow.JobRepository().Update(ctx, jb); err != nil {
			return err
		}
		return uow.Commit(ctx)
	}

	if err := jb.MarkFailed(); err != nil {
		return err
	}
	if err := uow.JobRepository().Update(ctx, jb); err != nil {
		return err
	}

	// Fatal failures moved the order to its terminal state inside the
	// stage; exhausted transient failures do it here.
	if !o.Status().IsTerminal() {
		failStatus := h.planner.FailureStatus(sfail.stage)
		if !o.Status().CanTransitionTo(failStatus) {
			failStatus = o.Status().FailureStatus()
		}
		if err := o.Fail(failStatus, ReasonMaxRetriesExceeded, sfail.cause.Error()); err != nil {
			return err
		}
		if err := uow.OrderRepository().Update(ctx, o); err != nil {
			return err
		}
		if err := h.appendEvent(ctx, uow, o.ID(), event.StatusChanged(o.Status().String()), nil); err != nil {
			return err
		}
	}

	if err := h.appendEvent(ctx, uow, o.ID(), event.JobFailed, map[string]any{
		"job_id":   jb.ID().String(),
		"stage":    sfail.stage.String(),
		"error":    sfail.cause.Error(),
		"attempts": jb.Attempt(),
		"fatal":    sfail.fatal,
	}); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// orderEvent pairs an event name with its payload. Events for one order
// mutation are appended as a slice so the timeline keeps a stable order.
type orderEvent struct {
	name    string
	payload map[string]any
}

// advance applies one status transition and persists it with its
// status_<state> event plus any extra events, in one transaction.
func (h *ProcessOrderJobCommandHandler) advance(
	ctx context.Context,
	o *order.Order,
	transition func(*order.Order) error,
	extraEvents []orderEvent,
) *stageFailure {
	if err := transition(o); err != nil {
		return fatalFailure(services.StageUnknown, err)
	}
	if err := h.recordOrderStatus(ctx, o, extraEvents); err != nil {
		return transientFailure(services.StageUnknown, err)
	}
	return nil
}

// recordOrderStatus writes the status_<state> event first, then the extra
// events in the given order.
func (h *ProcessOrderJobCommandHandler) recordOrderStatus(ctx context.Context, o *order.Order, extraEvents []orderEvent) error {
	events := append(
		[]orderEvent{{name: event.StatusChanged(o.Status().String())}},
		extraEvents...,
	)
	return h.recordOrder(ctx, o, events)
}

// recordOrder persists the order row and appends events in one transaction.
func (h *ProcessOrderJobCommandHandler) recordOrder(ctx context.Context, o *order.Order, events []orderEvent) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.OrderRepository().Update(ctx, o); err != nil {
		return err
	}
	for _, e := range events {
		if err := h.appendEvent(ctx, uow, o.ID(), e.name, e.payload); err != nil {
			return err
		}
	}
	return uow.Commit(ctx)
}

// failOrder moves the order to a terminal failure state and records it.
// A resumed order can fail in a stage its status already passed (STORING
// with no artifact rows regenerates and may hit the gate again); when the
// requested state is not reachable, the current status' own failure edge
// is taken so the order still terminates.
func (h *ProcessOrderJobCommandHandler) failOrder(
	ctx context.Context,
	o *order.Order,
	status order.Status,
	reason, lastError string,
	extraEvents []orderEvent,
) error {
	if !o.Status().CanTransitionTo(status) {
		status = o.Status().FailureStatus()
	}
	if err := o.Fail(status, reason, lastError); err != nil {
		return err
	}
	return h.recordOrderStatus(ctx, o, extraEvents)
}

func (h *ProcessOrderJobCommandHandler) loadStoredArtifacts(ctx context.Context, orderID kernel.UUID) ([]*artifact.Artifact, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	artifacts, err := uow.ArtifactRepository().GetAllByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func (h *ProcessOrderJobCommandHandler) getSentDelivery(
	ctx context.Context,
	orderID kernel.UUID,
	ch delivery.Channel,
	batchHash string,
) (*delivery.Delivery, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	d, err := uow.DeliveryRepository().GetSent(ctx, orderID, ch, batchHash)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func (h *ProcessOrderJobCommandHandler) addDelivery(ctx context.Context, d *delivery.Delivery) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.DeliveryRepository().Add(ctx, d); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

func (h *ProcessOrderJobCommandHandler) updateDelivery(
	ctx context.Context,
	orderID kernel.UUID,
	d *delivery.Delivery,
	eventName string,
	payload map[string]any,
) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.DeliveryRepository().Update(ctx, d); err != nil {
		return err
	}
	if err := h.appendEvent(ctx, uow, orderID, eventName, payload); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

func (h *ProcessOrderJobCommandHandler) channelFor(ch delivery.Channel) ports.DeliveryChannel {
	for _, sender := range h.channels {
		if sender.Channel() == ch {
			return sender
		}
	}
	return nil
}

func (h *ProcessOrderJobCommandHandler) appendEvent(
	ctx context.Context,
	uow PipelineUoW,
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
