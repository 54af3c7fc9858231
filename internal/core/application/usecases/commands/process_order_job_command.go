package commands

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var ErrProcessOrderJobCommandIsNotConstructed = errors.New(
	"ProcessOrderJobCommand must be created via NewProcessOrderJobCommand constructor",
)

// ProcessOrderJobCommand asks the pipeline to execute the oldest queued
// job. It carries no data: the queue head defines the work.
type ProcessOrderJobCommand struct {
	guard guard.ConstructorGuard
}

// NewProcessOrderJobCommand creates a command to drain one job.
func NewProcessOrderJobCommand() (ProcessOrderJobCommand, error) {
	return ProcessOrderJobCommand{
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ProcessOrderJobCommand) Validate() error {
	return c.guard.Validate(ErrProcessOrderJobCommandIsNotConstructed)
}
