package commands

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var ErrProcessRevisionCommandIsNotConstructed = errors.New(
	"ProcessRevisionCommand must be created via NewProcessRevisionCommand constructor",
)

// ProcessRevisionCommand asks the revision worker to execute the oldest
// queued revision.
type ProcessRevisionCommand struct {
	guard guard.ConstructorGuard
}

// NewProcessRevisionCommand creates a command to process one revision.
func NewProcessRevisionCommand() (ProcessRevisionCommand, error) {
	return ProcessRevisionCommand{
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ProcessRevisionCommand) Validate() error {
	return c.guard.Validate(ErrProcessRevisionCommandIsNotConstructed)
}
