package commands

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var ErrRecoverStalledJobsCommandIsNotConstructed = errors.New(
	"RecoverStalledJobsCommand must be created via NewRecoverStalledJobsCommand constructor",
)

// RecoverStalledJobsCommand asks the system to requeue jobs left in the
// PROCESSING state by a crashed worker. It carries no data.
type RecoverStalledJobsCommand struct {
	guard guard.ConstructorGuard
}

// NewRecoverStalledJobsCommand creates a command to recover stalled jobs.
func NewRecoverStalledJobsCommand() (RecoverStalledJobsCommand, error) {
	return RecoverStalledJobsCommand{
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RecoverStalledJobsCommand) Validate() error {
	return c.guard.Validate(ErrRecoverStalledJobsCommandIsNotConstructed)
}
