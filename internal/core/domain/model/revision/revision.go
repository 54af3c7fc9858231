package revision

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// ErrRevisionIsNotConstructed is returned when a Revision instance was not
// created through NewRevision or RestoreRevision.
var ErrRevisionIsNotConstructed = errors.New("Revision must be created via NewRevision constructor")

// Status is the lifecycle state of a revision request.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	StatusUnknown Status = iota

	// StatusQueued means the credit was debited and the revision is
	// waiting for the revision worker.
	StatusQueued

	// StatusProcessing means the revision worker is executing the request.
	StatusProcessing

	// StatusDone is the terminal success state.
	StatusDone

	// StatusFail is the terminal failure state. Revisions are not retried;
	// the debited credit is kept and the failure surfaced for follow-up.
	StatusFail
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:    "UNKNOWN",
		StatusQueued:     "QUEUED",
		StatusProcessing: "PROCESSING",
		StatusDone:       "DONE",
		StatusFail:       "FAIL",
	}
}

// StatusFromString parses the persisted representation of a revision status.
func StatusFromString(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != StatusUnknown {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("revision status", fmt.Errorf("%q is not a known revision status", s))
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
		return errs.NewValueIsInvalidErrorWithCause("revision status", fmt.Errorf("%d is not a valid revision status", s))
	}
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("revision status", fmt.Errorf("%d is not a valid revision status", s))
	}
	return nil
}

// Revision is one paid post-delivery change request against a completed
// order. Its kind names the credit balance that paid for it.
type Revision struct {
	id        kernel.UUID
	orderID   kernel.UUID
	targetDoc TargetDoc
	kind      order.CreditKind
	request   string

	status         Status
	creditsDebited int
	lastError      string

	createdAt   time.Time
	processedAt *time.Time

	isConstructed bool
}

// NewRevision creates a queued revision. The request carries the customer's
// instructions; exactly one credit of the revision's kind pays for it.
func NewRevision(id, orderID kernel.UUID, targetDoc TargetDoc, kind order.CreditKind, request string) (*Revision, error) {
	if err := errors.Join(id.Validate(), orderID.Validate(), targetDoc.Validate(), kind.Validate()); err != nil {
		return nil, err
	}
	if request == "" {
		return nil, errs.NewValueIsRequiredError("revision request")
	}

	return &Revision{
		id:             id,
		orderID:        orderID,
		targetDoc:      targetDoc,
		kind:           kind,
		request:        request,
		status:         StatusQueued,
		creditsDebited: 1,
		createdAt:      time.Now().UTC(),
		isConstructed:  true,
	}, nil
}

// RestoreRevisionParams carries the persisted state of a revision back into
// the domain.
type RestoreRevisionParams struct {
	ID             kernel.UUID
	OrderID        kernel.UUID
	TargetDoc      TargetDoc
	Kind           order.CreditKind
	Request        string
	Status         Status
	CreditsDebited int
	LastError      string
	CreatedAt      time.Time
	ProcessedAt    *time.Time
}

// RestoreRevision reconstructs a Revision from persistence.
func RestoreRevision(p RestoreRevisionParams) (*Revision, error) {
	r, err := NewRevision(p.ID, p.OrderID, p.TargetDoc, p.Kind, p.Request)
	if err != nil {
		return nil, err
	}
	if err := p.Status.Validate(); err != nil {
		return nil, err
	}

	r.status = p.Status
	r.creditsDebited = p.CreditsDebited
	r.lastError = p.LastError
	r.createdAt = p.CreatedAt
	r.processedAt = p.ProcessedAt
	return r, nil
}

// Validate ensures the Revision was created through a constructor.
func (r *Revision) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRevisionIsNotConstructed
	}
	return nil
}

// ID returns the revision's unique identifier.
func (r *Revision) ID() kernel.UUID { return r.id }

// OrderID returns the order this revision belongs to.
func (r *Revision) OrderID() kernel.UUID { return r.orderID }

// TargetDoc returns the document family the change applies to.
func (r *Revision) TargetDoc() TargetDoc { return r.targetDoc }

// Kind returns the credit kind that paid for the revision.
func (r *Revision) Kind() order.CreditKind { return r.kind }

// Request returns the customer's instructions.
func (r *Revision) Request() string { return r.request }

// Status returns the current lifecycle state.
func (r *Revision) Status() Status { return r.status }

// CreditsDebited returns how many credits this revision consumed.
func (r *Revision) CreditsDebited() int { return r.creditsDebited }

// LastError returns the error message from a failed execution.
func (r *Revision) LastError() string { return r.lastError }

// CreatedAt returns the request time, which defines worker FIFO order.
func (r *Revision) CreatedAt() time.Time { return r.createdAt }

// ProcessedAt returns the time the revision reached a terminal state.
func (r *Revision) ProcessedAt() *time.Time { return r.processedAt }

// Start claims the revision for the worker.
func (r *Revision) Start() error {
	if r.status != StatusQueued {
		return r.invalidTransition(StatusProcessing)
	}
	r.status = StatusProcessing
	return nil
}

// Complete marks the revision as applied.
func (r *Revision) Complete() error {
	if r.status != StatusProcessing {
		return r.invalidTransition(StatusDone)
	}
	now := time.Now().UTC()
	r.status = StatusDone
	r.processedAt = &now
	return nil
}

// Fail marks the revision as failed. The debited credit is not refunded.
func (r *Revision) Fail(lastError string) error {
	if r.status != StatusProcessing {
		return r.invalidTransition(StatusFail)
	}
	now := time.Now().UTC()
	r.status = StatusFail
	r.lastError = lastError
	r.processedAt = &now
	return nil
}

func (r *Revision) invalidTransition(next Status) error {
	return errs.NewValueIsInvalidErrorWithCause(
		"revision status transition",
		fmt.Errorf("%s cannot transition to %s", r.status, next),
	)
}
