package services

import (
	"errors"

	"fulfillment/internal/core/domain/model/order"
)

// ErrNoStageForStatus is returned when an order's status does not map to a
// runnable pipeline stage. Terminal orders and orders still waiting for
// payment have no stage to run.
var ErrNoStageForStatus = errors.New("no pipeline stage for order status")

// Stage is one step of the fulfillment pipeline.
type Stage int

const (
	// StageUnknown represents no runnable stage.
	StageUnknown Stage = iota

	// StageGenerate produces the artifact batch.
	StageGenerate

	// StageGate runs the safety inspection.
	StageGate

	// StageStore persists the artifacts.
	StageStore

	// StageDeliver sends the artifacts to the customer.
	StageDeliver
)

// String returns the stage name used in logs and events.
func (s Stage) String() string {
	switch s {
	case StageGenerate:
		return "generate"
	case StageGate:
		return "gate"
	case StageStore:
		return "store"
	case StageDeliver:
		return "deliver"
	default:
		return "unknown"
	}
}

// StagePlanner is a domain service that maps an order's status to the
// pipeline stage to run next. A retried job resumes from the stage its
// order stalled in instead of restarting from generation: work that
// already succeeded is never repeated.
//
// Mapping:
//   - QUEUED     -> generate (first run)
//   - GENERATING -> generate (crashed or failed mid-generation)
//   - GATED      -> store    (generation done, gate passed or pending re-check)
//   - STORING    -> store
//   - DELIVERING -> deliver
type StagePlanner struct{}

// NewStagePlanner creates a new StagePlanner instance.
func NewStagePlanner() StagePlanner {
	return StagePlanner{}
}

// FirstStage returns the stage a job for the given order should start with.
func (StagePlanner) FirstStage(status order.Status) (Stage, error) {
	switch status {
	case order.Queued, order.Generating:
		return StageGenerate, nil
	case order.Gated, order.Storing:
		return StageStore, nil
	case order.Delivering:
		return StageDeliver, nil
	default:
		return StageUnknown, ErrNoStageForStatus
	}
}

// FailureStatus returns the order failure state matching a stage.
func (StagePlanner) FailureStatus(stage Stage) order.Status {
	switch stage {
	case StageGenerate:
		return order.FailGeneration
	case StageGate:
		return order.FailGate
	case StageStore:
		return order.FailStorage
	case StageDeliver:
		return order.FailDelivery
	default:
		return order.SecurityFail
	}
}
