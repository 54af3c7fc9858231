package job

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status is the lifecycle state of a queued job.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	StatusUnknown Status = iota

	// StatusQueued means the job is waiting for a worker. New jobs and
	// requeued jobs start here.
	StatusQueued

	// StatusProcessing means a worker is executing the job. Jobs found in
	// this state at startup were orphaned by a crash and are reset to
	// StatusQueued.
	StatusProcessing

	// StatusDone is the terminal success state.
	StatusDone

	// StatusFail is the terminal failure state, reached when the error is
	// fatal or the attempt ceiling is exhausted.
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

// StatusFromString parses the persisted representation of a job status.
func StatusFromString(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != StatusUnknown {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("job status", fmt.Errorf("%q is not a known job status", s))
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
		return errs.NewValueIsInvalidErrorWithCause("job status", fmt.Errorf("%d is not a valid job status", s))
	}
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("job status", fmt.Errorf("%d is not a valid job status", s))
	}
	return nil
}

// IsTerminal reports whether the job will never run again.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusFail
}
