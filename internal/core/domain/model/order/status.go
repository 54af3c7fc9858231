package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status represents the lifecycle state of an order. It implements a
// monotonic state machine: every transition moves forward, no state is ever
// revisited, and all failure states are terminal.
//
// Happy path:
//
//	Created -> Paid -> Queued -> Generating -> Gated -> Storing -> Delivering -> Done
//
// Each processing state may branch into its matching terminal failure state
// (FailGeneration, FailGate, FailStorage, FailDelivery, FailBudget). A job
// retried after a transient failure resumes from the state it failed in,
// which is why the failure states record the stage.
type Status int

const (
	// Unknown represents an invalid or undefined status. This value (0)
	// helps catch uninitialized Status values.
	Unknown Status = iota

	// Created is the initial status of an order before payment
	// verification completed.
	Created

	// Paid means the payment webhook was verified and the order row is
	// durably committed. An order may sit in Paid briefly between commit
	// and job enqueue; a crash in that window leaves it recoverable.
	Paid

	// Queued means exactly one generation job exists for the order.
	Queued

	// Generating means the pipeline is producing artifacts.
	Generating

	// Gated means generation finished within budget and the batch is
	// awaiting (or has passed) the safety gate.
	Gated

	// Storing means artifacts are being persisted.
	Storing

	// Delivering means artifacts are being sent to the customer.
	Delivering

	// Done is the terminal success state. Revisions are only accepted in
	// this state.
	Done

	// FailPaymentVerify is terminal: the payment could not be verified.
	FailPaymentVerify

	// FailGeneration is terminal: generation failed after exhausting retries.
	FailGeneration

	// FailGate is terminal: the safety gate rejected the content. Never retried.
	FailGate

	// FailStorage is terminal: artifact persistence failed after exhausting retries.
	FailStorage

	// FailDelivery is terminal: no delivery channel succeeded after exhausting retries.
	FailDelivery

	// FailBudget is terminal: generation exceeded the tier budget. Never retried.
	FailBudget

	// SecurityFail is terminal: the order was halted for a security reason.
	SecurityFail
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:           "UNKNOWN",
		Created:           "CREATED",
		Paid:              "PAID",
		Queued:            "QUEUED",
		Generating:        "GENERATING",
		Gated:             "GATED",
		Storing:           "STORING",
		Delivering:        "DELIVERING",
		Done:              "DONE",
		FailPaymentVerify: "FAIL_PAYMENT_VERIFY",
		FailGeneration:    "FAIL_GENERATION",
		FailGate:          "FAIL_GATE",
		FailStorage:       "FAIL_STORAGE",
		FailDelivery:      "FAIL_DELIVERY",
		FailBudget:        "FAIL_BUDGET",
		SecurityFail:      "SECURITY_FAIL",
	}
}

// nextStatuses defines the allowed forward transitions. Failure states and
// Done have no outgoing edges.
func nextStatuses(s Status) []Status {
	switch s {
	case Created:
		return []Status{Paid, FailPaymentVerify, SecurityFail}
	case Paid:
		return []Status{Queued, SecurityFail}
	case Queued:
		return []Status{Generating, SecurityFail}
	case Generating:
		return []Status{Gated, FailGeneration, FailBudget, SecurityFail}
	case Gated:
		return []Status{Storing, FailGate, SecurityFail}
	case Storing:
		return []Status{Delivering, FailStorage, SecurityFail}
	case Delivering:
		return []Status{Done, FailDelivery, SecurityFail}
	default:
		return nil
	}
}

// StatusFromString parses the persisted representation of a status.
func StatusFromString(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a known status", s))
}

// String returns the persisted (and user-visible) name of the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// Validate checks that the Status is one of the defined states.
func (s Status) Validate() error {
	if s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return s == Done || s.IsFailure()
}

// IsFailure reports whether the status is one of the terminal failure states.
func (s Status) IsFailure() bool {
	switch s {
	case FailPaymentVerify, FailGeneration, FailGate, FailStorage, FailDelivery, FailBudget, SecurityFail:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the move from s to next is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range nextStatuses(s) {
		if allowed == next {
			return true
		}
	}
	return false
}

// FailureStatus returns the failure state reachable from s. An order that
// resumed past the stage that is now failing cannot take that stage's
// failure edge, but it always has exactly one of its own.
func (s Status) FailureStatus() Status {
	switch s {
	case Created:
		return FailPaymentVerify
	case Generating:
		return FailGeneration
	case Gated:
		return FailGate
	case Storing:
		return FailStorage
	case Delivering:
		return FailDelivery
	default:
		return SecurityFail
	}
}

// TransitionTo validates the move from s to next and returns next.
// Transitions are one-directional; an invalid move returns an error and the
// caller must treat the order as corrupted rather than forcing the state.
func (s Status) TransitionTo(next Status) (Status, error) {
	if err := next.Validate(); err != nil {
		return Unknown, err
	}
	if !s.CanTransitionTo(next) {
		return Unknown, errs.NewValueIsInvalidErrorWithCause(
			"status transition",
			fmt.Errorf("%s cannot transition to %s", s, next),
		)
	}
	return next, nil
}
