package jobs

import (
	"context"
	"log/slog"
	"sync/atomic"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// RevisionJob works the revision queue. Runs every second and drains all
// queued revisions, one at a time, with the same in-flight guard as the
// fulfillment job.
type RevisionJob struct {
	handler  *commands.ProcessRevisionCommandHandler
	cron     *cron.Cron
	logger   *slog.Logger
	inFlight atomic.Bool
}

// NewRevisionJob creates the revision worker job.
// Uses ProcessRevisionCommandHandler to regenerate and redeliver artifacts.
func NewRevisionJob(handler *commands.ProcessRevisionCommandHandler, logger *slog.Logger) *RevisionJob {
	return &RevisionJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "revision_job"),
	}
}

// Start begins the revision job to run every second.
func (j *RevisionJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", j.tick)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Revision job started (running every second)")
	return nil
}

// Stop stops the revision job. A revision already in flight finishes.
func (j *RevisionJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Revision job stopped")
}

func (j *RevisionJob) tick() {
	if !j.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer j.inFlight.Store(false)

	ctx := context.Background()

	for {
		cmd, err := commands.NewProcessRevisionCommand()
		if err != nil {
			j.logger.ErrorContext(ctx, "Failed to build revision command", "error", err)
			return
		}

		processed, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Revision run failed", "error", err)
			return
		}
		if !processed {
			return
		}

		metrics.RevisionsProcessedTotal.Inc()
	}
}
