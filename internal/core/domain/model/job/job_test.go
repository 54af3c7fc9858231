package job_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/job"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJob(t *testing.T) *job.Job {
	t.Helper()

	j, err := job.NewJob(kernel.NewUUID(), kernel.NewUUID(), order.TierPlus)
	require.NoError(t, err)
	return j
}

func TestJob_New(t *testing.T) {
	t.Run("should create a queued job with a fresh retry budget", func(t *testing.T) {
		j := newTestJob(t)

		assert.NoError(t, j.Validate())
		assert.Equal(t, job.StatusQueued, j.Status())
		assert.Equal(t, "GENERATE_PLUS", j.JobType())
		assert.Equal(t, 0, j.Attempt())
		assert.Equal(t, job.DefaultMaxAttempts, j.MaxAttempts())
		assert.True(t, j.CanRetry())
		assert.Nil(t, j.StartedAt())
		assert.Nil(t, j.FinishedAt())
	})

	t.Run("should reject empty ids", func(t *testing.T) {
		_, err := job.NewJob(kernel.UUID{}, kernel.NewUUID(), order.TierPlus)
		require.Error(t, err)

		_, err = job.NewJob(kernel.NewUUID(), kernel.UUID{}, order.TierPlus)
		require.Error(t, err)
	})

	t.Run("should reject an invalid tier", func(t *testing.T) {
		_, err := job.NewJob(kernel.NewUUID(), kernel.NewUUID(), order.TierUnknown)
		require.Error(t, err)
	})

	t.Run("should reject a zero-value job", func(t *testing.T) {
		var j job.Job
		assert.ErrorIs(t, j.Validate(), job.ErrJobIsNotConstructed)
	})
}

func TestJob_SuccessRun(t *testing.T) {
	t.Run("should complete a started job", func(t *testing.T) {
		j := newTestJob(t)

		require.NoError(t, j.Start())
		assert.Equal(t, job.StatusProcessing, j.Status())
		assert.NotNil(t, j.StartedAt())

		require.NoError(t, j.Complete())
		assert.Equal(t, job.StatusDone, j.Status())
		assert.NotNil(t, j.FinishedAt())
		assert.Equal(t, 0, j.Attempt())
	})

	t.Run("should not start a job twice", func(t *testing.T) {
		j := newTestJob(t)
		require.NoError(t, j.Start())

		assert.Error(t, j.Start())
	})

	t.Run("should not complete a job that is not processing", func(t *testing.T) {
		j := newTestJob(t)
		assert.Error(t, j.Complete())
	})
}

func TestJob_Retry(t *testing.T) {
	t.Run("should requeue after the first failure", func(t *testing.T) {
		j := newTestJob(t)
		require.NoError(t, j.Start())

		require.NoError(t, j.RecordFailure("generator timeout"))
		require.NoError(t, j.Requeue())

		assert.Equal(t, job.StatusQueued, j.Status())
		assert.Equal(t, 1, j.Attempt())
		assert.Equal(t, "generator timeout", j.LastError())
		assert.True(t, j.CanRetry())
	})

	t.Run("should move a requeued job behind jobs queued later", func(t *testing.T) {
		failing := newTestJob(t)
		time.Sleep(5 * time.Millisecond)
		younger := newTestJob(t)

		require.NoError(t, failing.Start())
		require.NoError(t, failing.RecordFailure("generator timeout"))
		require.NoError(t, failing.Requeue())

		assert.True(t, failing.QueuedAt().After(younger.QueuedAt()))
		assert.True(t, failing.CreatedAt().Before(younger.CreatedAt()))
	})

	t.Run("should refuse a requeue once attempts are exhausted", func(t *testing.T) {
		j := newTestJob(t)

		require.NoError(t, j.Start())
		require.NoError(t, j.RecordFailure("generator timeout"))
		require.NoError(t, j.Requeue())

		require.NoError(t, j.Start())
		require.NoError(t, j.RecordFailure("generator timeout"))

		assert.False(t, j.CanRetry())
		assert.ErrorIs(t, j.Requeue(), job.ErrNoAttemptsLeft)

		require.NoError(t, j.MarkFailed())
		assert.Equal(t, job.StatusFail, j.Status())
		assert.Equal(t, 2, j.Attempt())
	})

	t.Run("should allow a fatal failure on the first attempt", func(t *testing.T) {
		j := newTestJob(t)
		require.NoError(t, j.Start())
		require.NoError(t, j.RecordFailure("budget exceeded"))

		require.NoError(t, j.MarkFailed())

		assert.Equal(t, job.StatusFail, j.Status())
		assert.Equal(t, 1, j.Attempt())
	})

	t.Run("should not record a failure outside processing", func(t *testing.T) {
		j := newTestJob(t)
		assert.Error(t, j.RecordFailure("oops"))
	})
}

func TestJob_Recover(t *testing.T) {
	t.Run("should requeue an orphaned job without consuming an attempt", func(t *testing.T) {
		j := newTestJob(t)
		require.NoError(t, j.Start())

		require.NoError(t, j.Recover())

		assert.Equal(t, job.StatusQueued, j.Status())
		assert.Equal(t, 0, j.Attempt())
		assert.Nil(t, j.StartedAt())
	})

	t.Run("should only recover processing jobs", func(t *testing.T) {
		j := newTestJob(t)
		assert.Error(t, j.Recover())
	})
}

func TestJob_Restore(t *testing.T) {
	t.Run("should rebuild a persisted job as-is", func(t *testing.T) {
		original := newTestJob(t)
		require.NoError(t, original.Start())
		require.NoError(t, original.RecordFailure("transient"))
		require.NoError(t, original.Requeue())

		restored, err := job.RestoreJob(job.RestoreJobParams{
			ID:          original.ID(),
			OrderID:     original.OrderID(),
			JobType:     original.JobType(),
			Status:      original.Status(),
			Attempt:     original.Attempt(),
			MaxAttempts: original.MaxAttempts(),
			LastError:   original.LastError(),
			CreatedAt:   original.CreatedAt(),
			QueuedAt:    original.QueuedAt(),
		})

		require.NoError(t, err)
		assert.Equal(t, original.Status(), restored.Status())
		assert.Equal(t, 1, restored.Attempt())
		assert.Equal(t, "transient", restored.LastError())
		assert.Equal(t, original.QueuedAt(), restored.QueuedAt())
	})

	t.Run("should reject a non-positive attempt ceiling", func(t *testing.T) {
		_, err := job.RestoreJob(job.RestoreJobParams{
			ID:      kernel.NewUUID(),
			OrderID: kernel.NewUUID(),
			JobType: "GENERATE_STARTER",
			Status:  job.StatusQueued,
		})
		require.Error(t, err)
	})

	t.Run("should require a job type", func(t *testing.T) {
		_, err := job.RestoreJob(job.RestoreJobParams{
			ID:          kernel.NewUUID(),
			OrderID:     kernel.NewUUID(),
			Status:      job.StatusQueued,
			MaxAttempts: job.DefaultMaxAttempts,
		})
		require.Error(t, err)
	})
}
