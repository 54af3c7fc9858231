package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for monitoring service health and performance
var (
	WebhookRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_webhook_requests_total",
			Help: "Total number of payment webhook deliveries received",
		},
	)

	WebhookDuplicatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_webhook_duplicates_total",
			Help: "Total number of webhook deliveries answered from the idempotency ledger",
		},
	)

	WebhookRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_webhook_rejected_total",
			Help: "Total number of webhook deliveries rejected before any state change",
		},
	)

	JobsProcessedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fulfillment_jobs_processed_total",
			Help: "Total number of pipeline jobs worked off the queue",
		},
	)

	JobProcessingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fulfillment_job_processing_duration_seconds",
			Help:    "Duration of one pipeline run from claim to terminal job state",
			Buckets: prometheus.DefBuckets,
		},
	)

	RevisionsProcessedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fulfillment_revisions_processed_total",
			Help: "Total number of revisions worked off the queue",
		},
	)

	RevisionRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fulfillment_revision_requests_total",
			Help: "Total number of accepted revision requests",
		},
	)

	QueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fulfillment_queue_depth",
			Help: "Work currently waiting or in flight, refreshed on every drain tick",
		},
		[]string{"queue"},
	)
)

// Label values for the QueueDepth gauge.
const (
	QueueJobs           = "jobs"
	QueueJobsProcessing = "jobs_processing"
	QueueRevisions      = "revisions"
)

// Register registers all Prometheus metrics
func Register() {
	prometheus.MustRegister(WebhookRequestsTotal)
	prometheus.MustRegister(WebhookDuplicatesTotal)
	prometheus.MustRegister(WebhookRejectedTotal)
	prometheus.MustRegister(JobsProcessedTotal)
	prometheus.MustRegister(JobProcessingDuration)
	prometheus.MustRegister(RevisionsProcessedTotal)
	prometheus.MustRegister(RevisionRequestsTotal)
	prometheus.MustRegister(QueueDepth)
}
