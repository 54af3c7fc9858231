// Package jobs provides scheduled background tasks for the fulfillment
// system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to work the durable queues backing the pipeline.
//
// # Available Jobs
//
// 1. FulfillmentJob - Runs every second to drain the order job queue and run the Generate/Gate/Store/Deliver pipeline
// 2. RevisionJob - Runs every second to drain the revision queue and redeliver revised artifacts
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(pipelineHandler, revisionHandler, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Both jobs use the cron expression "* * * * * *" which means they run every
// second. Each tick drains its queue completely; an atomic in-flight flag
// prevents overlapping ticks, so there is exactly one pipeline worker.
//
// # Error Handling
//
// An empty queue is the normal case and not an error. Handler errors are
// logged and end the tick; the next tick picks the queue back up, and
// per-job retry accounting lives in the job aggregate itself.
package jobs
