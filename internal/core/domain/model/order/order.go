package order

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrOrderNotCompleted is returned when a revision is requested against
	// an order that has not reached the terminal success state.
	ErrOrderNotCompleted = errors.New("order is not completed")
)

// Order is the aggregate root for one paid customer transaction. It owns
// the fulfillment state machine, the payment idempotency key, and the
// revision credit balances.
//
// Invariants:
//   - exactly one Order exists per payment id (enforced by a unique index)
//   - status transitions are monotonic (see Status)
//   - credit balances never go negative
//   - orders are never deleted; they are a financial record
type Order struct {
	id        kernel.UUID
	paymentID string
	tier      Tier
	amount    int
	contact   Contact

	status     Status
	failReason string
	lastError  string
	credits    Credits

	gateResult string
	gateScore  int

	createdAt   time.Time
	paidAt      *time.Time
	deliveredAt *time.Time

	isConstructed bool
}

// NewOrder creates an Order in the Created status with credits seeded from
// the tier. The caller transitions it to Paid once the webhook is verified.
func NewOrder(id kernel.UUID, paymentID string, tier Tier, amount int, contact Contact) (*Order, error) {
	o := &Order{
		status:        Created,
		createdAt:     time.Now().UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setPaymentID(paymentID),
		o.setTier(tier),
		o.setAmount(amount),
		o.setContact(contact),
	); err != nil {
		return nil, err
	}

	o.credits = tier.InitialCredits()
	return o, nil
}

// RestoreOrderParams carries the persisted state of an order back into the
// domain. Used only by repository implementations.
type RestoreOrderParams struct {
	ID          kernel.UUID
	PaymentID   string
	Tier        Tier
	Amount      int
	Contact     Contact
	Status      Status
	FailReason  string
	LastError   string
	Credits     Credits
	GateResult  string
	GateScore   int
	CreatedAt   time.Time
	PaidAt      *time.Time
	DeliveredAt *time.Time
}

// RestoreOrder reconstructs an Order from persistence without replaying its
// lifecycle. The stored status is validated but historic transitions are
// trusted.
func RestoreOrder(p RestoreOrderParams) (*Order, error) {
	o := &Order{
		status:        p.Status,
		failReason:    p.FailReason,
		lastError:     p.LastError,
		credits:       p.Credits,
		gateResult:    p.GateResult,
		gateScore:     p.GateScore,
		createdAt:     p.CreatedAt,
		paidAt:        p.PaidAt,
		deliveredAt:   p.DeliveredAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(p.ID),
		o.setPaymentID(p.PaymentID),
		o.setTier(p.Tier),
		o.setAmount(p.Amount),
		o.setContact(p.Contact),
		p.Status.Validate(),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order was created through a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID { return o.id }

// PaymentID returns the external payment identifier, the idempotency key.
func (o *Order) PaymentID() string { return o.paymentID }

// Tier returns the purchased tier.
func (o *Order) Tier() Tier { return o.tier }

// Amount returns the paid amount in KRW.
func (o *Order) Amount() int { return o.amount }

// Contact returns the customer's delivery endpoints.
func (o *Order) Contact() Contact { return o.contact }

// Status returns the current lifecycle state.
func (o *Order) Status() Status { return o.status }

// FailReason returns the machine-readable failure code, empty unless the
// order is in a failure state.
func (o *Order) FailReason() string { return o.failReason }

// LastError returns the last recorded error message for the order.
func (o *Order) LastError() string { return o.lastError }

// Credits returns the remaining revision credit balances.
func (o *Order) Credits() Credits { return o.credits }

// GateResult returns the recorded safety gate verdict, empty before the
// gate has run.
func (o *Order) GateResult() string { return o.gateResult }

// GateScore returns the recorded safety gate score.
func (o *Order) GateScore() int { return o.gateScore }

// CreatedAt returns the order creation time.
func (o *Order) CreatedAt() time.Time { return o.createdAt }

// PaidAt returns the payment verification time, nil before payment.
func (o *Order) PaidAt() *time.Time { return o.paidAt }

// DeliveredAt returns the delivery completion time, nil before Done.
func (o *Order) DeliveredAt() *time.Time { return o.deliveredAt }

// MarkPaid transitions Created -> Paid and records the payment time.
func (o *Order) MarkPaid() error {
	if err := o.transitionTo(Paid); err != nil {
		return err
	}
	now := time.Now().UTC()
	o.paidAt = &now
	return nil
}

// MarkQueued transitions Paid -> Queued once exactly one job exists.
func (o *Order) MarkQueued() error {
	return o.transitionTo(Queued)
}

// StartGenerating transitions Queued -> Generating.
func (o *Order) StartGenerating() error {
	return o.transitionTo(Generating)
}

// MarkGated transitions Generating -> Gated after a within-budget batch.
func (o *Order) MarkGated() error {
	return o.transitionTo(Gated)
}

// StartStoring transitions Gated -> Storing.
func (o *Order) StartStoring() error {
	return o.transitionTo(Storing)
}

// StartDelivering transitions Storing -> Delivering.
func (o *Order) StartDelivering() error {
	return o.transitionTo(Delivering)
}

// Complete transitions Delivering -> Done and records the delivery time.
// A customer is never shown Done before storage and delivery both succeeded.
func (o *Order) Complete() error {
	if err := o.transitionTo(Done); err != nil {
		return err
	}
	now := time.Now().UTC()
	o.deliveredAt = &now
	return nil
}

// Fail moves the order into a terminal failure state and records the
// machine-readable reason and the last error message.
func (o *Order) Fail(status Status, reason, lastError string) error {
	if !status.IsFailure() {
		return errs.NewValueIsInvalidError("failure status")
	}
	if err := o.transitionTo(status); err != nil {
		return err
	}
	o.failReason = reason
	o.lastError = lastError
	return nil
}

// RecordGateVerdict stores the safety gate outcome for audit. Recorded for
// every verdict including PASS.
func (o *Order) RecordGateVerdict(result string, score int) {
	o.gateResult = result
	o.gateScore = score
}

// DebitCredit consumes one revision credit of the given kind. The order
// must be in the terminal success state.
func (o *Order) DebitCredit(kind CreditKind) error {
	if o.status != Done {
		return ErrOrderNotCompleted
	}
	credits, err := o.credits.Debit(kind)
	if err != nil {
		return err
	}
	o.credits = credits
	return nil
}

func (o *Order) transitionTo(next Status) error {
	newStatus, err := o.status.TransitionTo(next)
	if err != nil {
		return err
	}
	o.status = newStatus
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setPaymentID(paymentID string) error {
	if paymentID == "" {
		return errs.NewValueIsRequiredError("payment id")
	}
	o.paymentID = paymentID
	return nil
}

func (o *Order) setTier(tier Tier) error {
	if err := tier.Validate(); err != nil {
		return err
	}
	o.tier = tier
	return nil
}

func (o *Order) setAmount(amount int) error {
	if amount <= 0 {
		return errs.NewValueIsInvalidError("amount")
	}
	o.amount = amount
	return nil
}

func (o *Order) setContact(contact Contact) error {
	if err := contact.Validate(); err != nil {
		return err
	}
	o.contact = contact
	return nil
}
