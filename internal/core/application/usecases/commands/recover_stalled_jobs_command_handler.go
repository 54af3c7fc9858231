package commands

import "context"

// RecoverStalledJobsCommandHandler sweeps the job table at startup and
// returns every PROCESSING job to the queue. Crash recovery does not
// consume a retry attempt: the worker never got to record an outcome.
type RecoverStalledJobsCommandHandler struct {
	uowFactory RecoveryUoWFactory
}

// NewRecoverStalledJobsCommandHandler creates the recovery handler.
func NewRecoverStalledJobsCommandHandler(uowFactory RecoveryUoWFactory) RecoverStalledJobsCommandHandler {
	return RecoverStalledJobsCommandHandler{uowFactory: uowFactory}
}

// Handle requeues all stalled jobs and returns how many were recovered.
func (h *RecoverStalledJobsCommandHandler) Handle(ctx context.Context, cmd RecoverStalledJobsCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	stalled, err := uow.JobRepository().GetAllInProcessingStatus(ctx)
	if err != nil {
		return 0, err
	}

	for _, jb := range stalled {
		if err := jb.Recover(); err != nil {
			return 0, err
		}
		if err := uow.JobRepository().Update(ctx, jb); err != nil {
			return 0, err
		}
	}

	if err := uow.Commit(ctx); err != nil {
		return 0, err
	}

	return len(stalled), nil
}
