package job

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// DefaultMaxAttempts is the execution ceiling for a job. A job that fails
// twice is not tried a third time.
const DefaultMaxAttempts = 2

var (
	// ErrJobIsNotConstructed is returned when a Job instance was not
	// created through NewJob or RestoreJob.
	ErrJobIsNotConstructed = errors.New("Job must be created via NewJob constructor")

	// ErrNoAttemptsLeft is returned when a requeue is attempted after the
	// attempt ceiling has been reached.
	ErrNoAttemptsLeft = errors.New("job has no attempts left")
)

// Job is a durable queue entry for one order's fulfillment run. The jobs
// table is the queue: rows survive restarts, and FIFO order comes from
// selecting the queued row with the smallest queue-position timestamp.
//
// Invariants:
//   - at most one non-terminal job exists per order
//   - attempt increments on every failed execution and never exceeds maxAttempts
type Job struct {
	id      kernel.UUID
	orderID kernel.UUID
	jobType string

	status      Status
	attempt     int
	maxAttempts int
	lastError   string

	createdAt  time.Time
	queuedAt   time.Time
	startedAt  *time.Time
	finishedAt *time.Time

	isConstructed bool
}

// GenerateJobType returns the job type name for a generation run of the
// given tier, e.g. "GENERATE_PREMIUM".
func GenerateJobType(tier order.Tier) string {
	return "GENERATE_" + tier.String()
}

// NewJob creates a queued generation job for an order of the given tier.
func NewJob(id, orderID kernel.UUID, tier order.Tier) (*Job, error) {
	if err := errors.Join(id.Validate(), orderID.Validate(), tier.Validate()); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Job{
		id:            id,
		orderID:       orderID,
		jobType:       GenerateJobType(tier),
		status:        StatusQueued,
		attempt:       0,
		maxAttempts:   DefaultMaxAttempts,
		createdAt:     now,
		queuedAt:      now,
		isConstructed: true,
	}, nil
}

// RestoreJobParams carries the persisted state of a job back into the domain.
type RestoreJobParams struct {
	ID          kernel.UUID
	OrderID     kernel.UUID
	JobType     string
	Status      Status
	Attempt     int
	MaxAttempts int
	LastError   string
	CreatedAt   time.Time
	QueuedAt    time.Time
	StartedAt   *time.Time
	FinishedAt  *time.Time
}

// RestoreJob reconstructs a Job from persistence.
func RestoreJob(p RestoreJobParams) (*Job, error) {
	if err := errors.Join(p.ID.Validate(), p.OrderID.Validate(), p.Status.Validate()); err != nil {
		return nil, err
	}
	if p.MaxAttempts <= 0 {
		return nil, errs.NewValueIsInvalidError("max attempts")
	}
	if p.JobType == "" {
		return nil, errs.NewValueIsRequiredError("job type")
	}

	return &Job{
		id:            p.ID,
		orderID:       p.OrderID,
		jobType:       p.JobType,
		status:        p.Status,
		attempt:       p.Attempt,
		maxAttempts:   p.MaxAttempts,
		lastError:     p.LastError,
		createdAt:     p.CreatedAt,
		queuedAt:      p.QueuedAt,
		startedAt:     p.StartedAt,
		finishedAt:    p.FinishedAt,
		isConstructed: true,
	}, nil
}

// Validate ensures the Job was created through a constructor.
func (j *Job) Validate() error {
	if j == nil || !j.isConstructed {
		return ErrJobIsNotConstructed
	}
	return nil
}

// ID returns the job's unique identifier.
func (j *Job) ID() kernel.UUID { return j.id }

// OrderID returns the order this job fulfills.
func (j *Job) OrderID() kernel.UUID { return j.orderID }

// JobType returns the job's type name, e.g. "GENERATE_PLUS".
func (j *Job) JobType() string { return j.jobType }

// Status returns the current queue state.
func (j *Job) Status() Status { return j.status }

// Attempt returns the number of failed executions so far.
func (j *Job) Attempt() int { return j.attempt }

// MaxAttempts returns the execution ceiling.
func (j *Job) MaxAttempts() int { return j.maxAttempts }

// LastError returns the error message from the most recent failed execution.
func (j *Job) LastError() string { return j.lastError }

// CreatedAt returns the time the job was first enqueued.
func (j *Job) CreatedAt() time.Time { return j.createdAt }

// QueuedAt returns the job's queue position. It starts equal to CreatedAt
// and moves forward on every requeue, so a retried job waits behind every
// job that was already queued.
func (j *Job) QueuedAt() time.Time { return j.queuedAt }

// StartedAt returns the start of the most recent execution, nil if never started.
func (j *Job) StartedAt() *time.Time { return j.startedAt }

// FinishedAt returns the time the job reached a terminal state.
func (j *Job) FinishedAt() *time.Time { return j.finishedAt }

// Start claims the job for execution.
func (j *Job) Start() error {
	if j.status != StatusQueued {
		return j.invalidTransition(StatusProcessing)
	}
	now := time.Now().UTC()
	j.status = StatusProcessing
	j.startedAt = &now
	return nil
}

// Complete marks the job as successfully finished.
func (j *Job) Complete() error {
	if j.status != StatusProcessing {
		return j.invalidTransition(StatusDone)
	}
	now := time.Now().UTC()
	j.status = StatusDone
	j.finishedAt = &now
	return nil
}

// RecordFailure counts a failed execution and stores its error message.
// The caller then decides between Requeue and MarkFailed.
func (j *Job) RecordFailure(lastError string) error {
	if j.status != StatusProcessing {
		return errs.NewValueIsInvalidErrorWithCause(
			"job status",
			fmt.Errorf("cannot record a failure in status %s", j.status),
		)
	}
	j.attempt++
	j.lastError = lastError
	return nil
}

// CanRetry reports whether another execution is allowed.
func (j *Job) CanRetry() bool {
	return j.attempt < j.maxAttempts
}

// Requeue puts a failed execution back on the queue for another attempt.
// The job goes to the tail, not the head, so an errant order cannot
// monopolize the front of the line.
func (j *Job) Requeue() error {
	if j.status != StatusProcessing {
		return j.invalidTransition(StatusQueued)
	}
	if !j.CanRetry() {
		return ErrNoAttemptsLeft
	}
	j.status = StatusQueued
	j.queuedAt = time.Now().UTC()
	return nil
}

// MarkFailed moves the job to the terminal failure state. Used for fatal
// errors and for transient errors once attempts are exhausted.
func (j *Job) MarkFailed() error {
	if j.status != StatusProcessing {
		return j.invalidTransition(StatusFail)
	}
	now := time.Now().UTC()
	j.status = StatusFail
	j.finishedAt = &now
	return nil
}

// Recover resets a job orphaned in StatusProcessing by a crash back to the
// queue. Unlike Requeue it does not consume an attempt: the execution never
// reported an outcome.
func (j *Job) Recover() error {
	if j.status != StatusProcessing {
		return j.invalidTransition(StatusQueued)
	}
	j.status = StatusQueued
	j.startedAt = nil
	return nil
}

func (j *Job) invalidTransition(next Status) error {
	return errs.NewValueIsInvalidErrorWithCause(
		"job status transition",
		fmt.Errorf("%s cannot transition to %s", j.status, next),
	)
}
