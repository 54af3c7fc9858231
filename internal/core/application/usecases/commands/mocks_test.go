package commands_test

import (
	"context"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/artifact"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/job"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/revision"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memStore is a shared in-memory backing for the unit-of-work fakes. The
// pipeline handler opens many short transactions per invocation, so the
// command handler tests verify observable state after Handle instead of
// scripting every repository call.
type memStore struct {
	orders     []*order.Order
	jobs       []*job.Job
	artifacts  []*artifact.Artifact
	deliveries []*delivery.Delivery
	revisions  []*revision.Revision
	events     []*event.Event

	commits   int
	rollbacks int
}

func newMemStore() *memStore {
	return &memStore{}
}

func (s *memStore) eventNames(orderID kernel.UUID) []string {
	var names []string
	for _, e := range s.events {
		if e.OrderID().IsEqual(orderID) {
			names = append(names, e.Name())
		}
	}
	return names
}

func (s *memStore) hasEvent(orderID kernel.UUID, name string) bool {
	for _, n := range s.eventNames(orderID) {
		if n == name {
			return true
		}
	}
	return false
}

// memUoW satisfies every unit-of-work interface the commands package
// declares. Transactions are not modeled; Commit only counts.
type memUoW struct{ s *memStore }

func (u *memUoW) Begin(_ context.Context) error { return nil }

func (u *memUoW) Commit(_ context.Context) error {
	u.s.commits++
	return nil
}

func (u *memUoW) Rollback(_ context.Context) error {
	u.s.rollbacks++
	return nil
}

func (u *memUoW) OrderRepository() ports.OrderRepository       { return &memOrderRepo{s: u.s} }
func (u *memUoW) JobRepository() ports.JobRepository           { return &memJobRepo{s: u.s} }
func (u *memUoW) ArtifactRepository() ports.ArtifactRepository { return &memArtifactRepo{s: u.s} }
func (u *memUoW) DeliveryRepository() ports.DeliveryRepository { return &memDeliveryRepo{s: u.s} }
func (u *memUoW) RevisionRepository() ports.RevisionRepository { return &memRevisionRepo{s: u.s} }
func (u *memUoW) EventRepository() ports.EventRepository       { return &memEventRepo{s: u.s} }

type intakeUoWFactory struct{ s *memStore }

func (f intakeUoWFactory) Create() commands.IntakeUoW { return &memUoW{s: f.s} }

type pipelineUoWFactory struct{ s *memStore }

func (f pipelineUoWFactory) Create() commands.PipelineUoW { return &memUoW{s: f.s} }

type revisionUoWFactory struct{ s *memStore }

func (f revisionUoWFactory) Create() commands.RevisionUoW { return &memUoW{s: f.s} }

type recoveryUoWFactory struct{ s *memStore }

func (f recoveryUoWFactory) Create() commands.RecoveryUoW { return &memUoW{s: f.s} }

type engagementUoWFactory struct{ s *memStore }

func (f engagementUoWFactory) Create() commands.EngagementUoW { return &memUoW{s: f.s} }

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) Add(_ context.Context, aggregate *order.Order) error {
	for _, o := range r.s.orders {
		if o.PaymentID() == aggregate.PaymentID() {
			return errs.NewObjectAlreadyExistsError("payment_id", aggregate.PaymentID())
		}
	}
	r.s.orders = append(r.s.orders, aggregate)
	return nil
}

func (r *memOrderRepo) Update(_ context.Context, aggregate *order.Order) error {
	for i, o := range r.s.orders {
		if o.ID().IsEqual(aggregate.ID()) {
			r.s.orders[i] = aggregate
			return nil
		}
	}
	return errs.NewObjectNotFoundError("order", aggregate.ID())
}

func (r *memOrderRepo) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	for _, o := range r.s.orders {
		if o.ID().IsEqual(id) {
			return o, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("order", id)
}

func (r *memOrderRepo) GetByPaymentID(_ context.Context, paymentID string) (*order.Order, error) {
	for _, o := range r.s.orders {
		if o.PaymentID() == paymentID {
			return o, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("payment_id", paymentID)
}

func (r *memOrderRepo) DebitCredit(ctx context.Context, id kernel.UUID, kind order.CreditKind) error {
	o, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	return o.DebitCredit(kind)
}

type memJobRepo struct{ s *memStore }

func (r *memJobRepo) Add(_ context.Context, aggregate *job.Job) error {
	r.s.jobs = append(r.s.jobs, aggregate)
	return nil
}

func (r *memJobRepo) Update(_ context.Context, aggregate *job.Job) error {
	for i, jb := range r.s.jobs {
		if jb.ID().IsEqual(aggregate.ID()) {
			r.s.jobs[i] = aggregate
			return nil
		}
	}
	return errs.NewObjectNotFoundError("job", aggregate.ID())
}

func (r *memJobRepo) Get(_ context.Context, id kernel.UUID) (*job.Job, error) {
	for _, jb := range r.s.jobs {
		if jb.ID().IsEqual(id) {
			return jb, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("job", id)
}

// GetFirstInQueuedStatus picks the smallest queue position, like the real
// repository's ORDER BY queued_at, so a requeued job waits its turn.
func (r *memJobRepo) GetFirstInQueuedStatus(_ context.Context) (*job.Job, error) {
	var head *job.Job
	for _, jb := range r.s.jobs {
		if jb.Status() != job.StatusQueued {
			continue
		}
		if head == nil || jb.QueuedAt().Before(head.QueuedAt()) {
			head = jb
		}
	}
	if head == nil {
		return nil, errs.NewObjectNotFoundError("job", "queued")
	}
	return head, nil
}

func (r *memJobRepo) GetAllInProcessingStatus(_ context.Context) ([]*job.Job, error) {
	var result []*job.Job
	for _, jb := range r.s.jobs {
		if jb.Status() == job.StatusProcessing {
			result = append(result, jb)
		}
	}
	return result, nil
}

func (r *memJobRepo) GetActiveByOrder(_ context.Context, orderID kernel.UUID) (*job.Job, error) {
	for _, jb := range r.s.jobs {
		if jb.OrderID().IsEqual(orderID) && !jb.Status().IsTerminal() {
			return jb, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("job", orderID)
}

type memArtifactRepo struct{ s *memStore }

func (r *memArtifactRepo) Upsert(_ context.Context, entity *artifact.Artifact) error {
	for _, a := range r.s.artifacts {
		if a.OrderID().IsEqual(entity.OrderID()) && a.Hash() == entity.Hash() {
			return nil
		}
	}
	r.s.artifacts = append(r.s.artifacts, entity)
	return nil
}

func (r *memArtifactRepo) GetAllByOrder(_ context.Context, orderID kernel.UUID) ([]*artifact.Artifact, error) {
	var result []*artifact.Artifact
	for _, a := range r.s.artifacts {
		if a.OrderID().IsEqual(orderID) {
			result = append(result, a)
		}
	}
	return result, nil
}

type memDeliveryRepo struct{ s *memStore }

func (r *memDeliveryRepo) Add(_ context.Context, entity *delivery.Delivery) error {
	r.s.deliveries = append(r.s.deliveries, entity)
	return nil
}

func (r *memDeliveryRepo) Update(_ context.Context, entity *delivery.Delivery) error {
	for i, d := range r.s.deliveries {
		if d.ID().IsEqual(entity.ID()) {
			r.s.deliveries[i] = entity
			return nil
		}
	}
	return errs.NewObjectNotFoundError("delivery", entity.ID())
}

func (r *memDeliveryRepo) GetSent(
	_ context.Context,
	orderID kernel.UUID,
	channel delivery.Channel,
	batchHash string,
) (*delivery.Delivery, error) {
	for _, d := range r.s.deliveries {
		if d.OrderID().IsEqual(orderID) && d.Channel() == channel &&
			d.BatchHash() == batchHash && d.Status() == delivery.StatusSent {
			return d, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("delivery", batchHash)
}

func (r *memDeliveryRepo) GetAllByOrder(_ context.Context, orderID kernel.UUID) ([]*delivery.Delivery, error) {
	var result []*delivery.Delivery
	for _, d := range r.s.deliveries {
		if d.OrderID().IsEqual(orderID) {
			result = append(result, d)
		}
	}
	return result, nil
}

type memRevisionRepo struct{ s *memStore }

func (r *memRevisionRepo) Add(_ context.Context, entity *revision.Revision) error {
	r.s.revisions = append(r.s.revisions, entity)
	return nil
}

func (r *memRevisionRepo) Update(_ context.Context, entity *revision.Revision) error {
	for i, rev := range r.s.revisions {
		if rev.ID().IsEqual(entity.ID()) {
			r.s.revisions[i] = entity
			return nil
		}
	}
	return errs.NewObjectNotFoundError("revision", entity.ID())
}

func (r *memRevisionRepo) Get(_ context.Context, id kernel.UUID) (*revision.Revision, error) {
	for _, rev := range r.s.revisions {
		if rev.ID().IsEqual(id) {
			return rev, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("revision", id)
}

func (r *memRevisionRepo) GetFirstInQueuedStatus(_ context.Context) (*revision.Revision, error) {
	for _, rev := range r.s.revisions {
		if rev.Status() == revision.StatusQueued {
			return rev, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("revision", "queued")
}

func (r *memRevisionRepo) GetAllByOrder(_ context.Context, orderID kernel.UUID) ([]*revision.Revision, error) {
	var result []*revision.Revision
	for _, rev := range r.s.revisions {
		if rev.OrderID().IsEqual(orderID) {
			result = append(result, rev)
		}
	}
	return result, nil
}

type memEventRepo struct{ s *memStore }

func (r *memEventRepo) Add(_ context.Context, entity *event.Event) error {
	r.s.events = append(r.s.events, entity)
	return nil
}

func (r *memEventRepo) GetAllByOrder(_ context.Context, orderID kernel.UUID) ([]*event.Event, error) {
	var result []*event.Event
	for _, e := range r.s.events {
		if e.OrderID().IsEqual(orderID) {
			result = append(result, e)
		}
	}
	return result, nil
}

type MockGenerator struct{ mock.Mock }

func (m *MockGenerator) Generate(ctx context.Context, o *order.Order, budget order.Budget) (artifact.Batch, error) {
	args := m.Called(ctx, o, budget)
	return args.Get(0).(artifact.Batch), args.Error(1)
}

func (m *MockGenerator) Revise(ctx context.Context, o *order.Order, rev *revision.Revision) (*artifact.Artifact, error) {
	args := m.Called(ctx, o, rev)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*artifact.Artifact), args.Error(1)
}

type MockSafetyGate struct{ mock.Mock }

func (m *MockSafetyGate) Inspect(ctx context.Context, batch artifact.Batch) (ports.Verdict, error) {
	args := m.Called(ctx, batch)
	return args.Get(0).(ports.Verdict), args.Error(1)
}

type MockDeliveryChannel struct{ mock.Mock }

func (m *MockDeliveryChannel) Channel() delivery.Channel {
	args := m.Called()
	return args.Get(0).(delivery.Channel)
}

func (m *MockDeliveryChannel) Recipient(contact order.Contact) string {
	args := m.Called(contact)
	return args.String(0)
}

func (m *MockDeliveryChannel) Send(ctx context.Context, recipient string, artifacts []*artifact.Artifact) (string, error) {
	args := m.Called(ctx, recipient, artifacts)
	return args.String(0), args.Error(1)
}

func testContact(t *testing.T, phone string) order.Contact {
	t.Helper()
	contact, err := order.NewContact("customer@example.com", phone)
	require.NoError(t, err)
	return contact
}

// queuedOrder builds an order that has passed intake: PAID then QUEUED.
func queuedOrder(t *testing.T, tier order.Tier, phone string) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), "pay_"+kernel.NewUUID().String(), tier, tier.Price(), testContact(t, phone))
	require.NoError(t, err)
	require.NoError(t, o.MarkPaid())
	require.NoError(t, o.MarkQueued())
	return o
}

// doneOrder walks an order through the full happy path to DONE.
func doneOrder(t *testing.T, tier order.Tier) *order.Order {
	t.Helper()
	o := queuedOrder(t, tier, "")
	require.NoError(t, o.StartGenerating())
	require.NoError(t, o.MarkGated())
	require.NoError(t, o.StartStoring())
	require.NoError(t, o.StartDelivering())
	require.NoError(t, o.Complete())
	return o
}

// seedQueuedJob registers the generation job for an order in the store.
func seedQueuedJob(t *testing.T, s *memStore, o *order.Order) *job.Job {
	t.Helper()
	jb, err := job.NewJob(kernel.NewUUID(), o.ID(), o.Tier())
	require.NoError(t, err)
	s.jobs = append(s.jobs, jb)
	return jb
}

// testBatch builds a generated batch for an order with the given costs.
func testBatch(t *testing.T, o *order.Order, tokensUsed, imagesGenerated int) artifact.Batch {
	t.Helper()
	types := artifact.TypesForTier(o.Tier())
	batch := artifact.Batch{TokensUsed: tokensUsed, ImagesGenerated: imagesGenerated}
	for i, typ := range types {
		content := []byte(typ.String() + "-content-" + o.ID().String())
		a, err := artifact.NewArtifact(
			kernel.NewUUID(),
			o.ID(),
			typ,
			typ.String()+".dat",
			artifact.HashContent(content),
			"s3://artifacts/"+o.ID().String()+"/"+typ.String(),
			int64(1024*(i+1)),
		)
		require.NoError(t, err)
		batch.Artifacts = append(batch.Artifacts, a)
	}
	return batch
}

// emailChannel builds a channel mock that accepts every send.
func emailChannel(recipient string) *MockDeliveryChannel {
	ch := new(MockDeliveryChannel)
	ch.On("Channel").Return(delivery.ChannelEmail)
	ch.On("Recipient", mock.Anything).Return(recipient)
	ch.On("Send", mock.Anything, recipient, mock.Anything).Return("provider-msg-1", nil)
	return ch
}
