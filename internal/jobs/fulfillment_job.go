package jobs

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// FulfillmentJob drives the order pipeline. Runs every second; each tick
// drains the job queue completely, one job at a time. An atomic in-flight
// flag keeps ticks from overlapping when a pipeline run outlasts the
// schedule, so at most one job is ever processed concurrently.
type FulfillmentJob struct {
	handler  *commands.ProcessOrderJobCommandHandler
	depth    queries.GetQueueDepthQueryHandler
	cron     *cron.Cron
	logger   *slog.Logger
	inFlight atomic.Bool
}

// NewFulfillmentJob creates the queue drain job.
// Uses ProcessOrderJobCommandHandler to run the pipeline for each queued job.
func NewFulfillmentJob(
	handler *commands.ProcessOrderJobCommandHandler,
	depth queries.GetQueueDepthQueryHandler,
	logger *slog.Logger,
) *FulfillmentJob {
	return &FulfillmentJob{
		handler: handler,
		depth:   depth,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "fulfillment_job"),
	}
}

// Start begins the drain job to run every second.
func (j *FulfillmentJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", j.tick)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Fulfillment job started (running every second)")
	return nil
}

// Stop stops the drain job. A pipeline run already in flight finishes.
func (j *FulfillmentJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Fulfillment job stopped")
}

// tick drains the queue. The loop ends when the queue reports empty, so a
// burst of webhooks is worked off in one tick instead of one job a second.
func (j *FulfillmentJob) tick() {
	if !j.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer j.inFlight.Store(false)

	ctx := context.Background()
	defer j.refreshQueueDepth(ctx)

	for {
		cmd, err := commands.NewProcessOrderJobCommand()
		if err != nil {
			j.logger.ErrorContext(ctx, "Failed to build pipeline command", "error", err)
			return
		}

		started := time.Now()
		processed, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Pipeline run failed", "error", err)
			return
		}
		if !processed {
			return
		}

		metrics.JobsProcessedTotal.Inc()
		metrics.JobProcessingDuration.Observe(time.Since(started).Seconds())
	}
}

// refreshQueueDepth publishes the backlog left behind by a drain pass.
func (j *FulfillmentJob) refreshQueueDepth(ctx context.Context) {
	depth, err := j.depth.Handle(ctx, queries.NewGetQueueDepthQuery())
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to read queue depth", "error", err)
		return
	}

	metrics.QueueDepth.WithLabelValues(metrics.QueueJobs).Set(float64(depth.QueuedJobs))
	metrics.QueueDepth.WithLabelValues(metrics.QueueJobsProcessing).Set(float64(depth.ProcessingJobs))
	metrics.QueueDepth.WithLabelValues(metrics.QueueRevisions).Set(float64(depth.QueuedRevisions))
}
