// Package jobrepo persists the fulfillment job queue. The jobs table is
// the queue: queued rows ordered by queue position form the FIFO, and a
// requeued job moves to the tail.
package jobrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/job"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// JobDTO represents the database structure for persisting jobs.
type JobDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;index"`
	JobType     string
	Status      string `gorm:"index"`
	Attempt     int
	MaxAttempts int
	LastError   string
	CreatedAt   time.Time
	QueuedAt    time.Time `gorm:"index"`
	StartedAt   *time.Time
	FinishedAt  *time.Time
}

// TableName overrides GORM's default naming convention.
func (JobDTO) TableName() string {
	return "jobs"
}

func fromDomain(aggregate *job.Job) JobDTO {
	return JobDTO{
		ID:          aggregate.ID().Bytes(),
		OrderID:     aggregate.OrderID().Bytes(),
		JobType:     aggregate.JobType(),
		Status:      aggregate.Status().String(),
		Attempt:     aggregate.Attempt(),
		MaxAttempts: aggregate.MaxAttempts(),
		LastError:   aggregate.LastError(),
		CreatedAt:   aggregate.CreatedAt(),
		QueuedAt:    aggregate.QueuedAt(),
		StartedAt:   aggregate.StartedAt(),
		FinishedAt:  aggregate.FinishedAt(),
	}
}

func toDomain(dto JobDTO) (*job.Job, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	status, err := job.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	return job.RestoreJob(job.RestoreJobParams{
		ID:          id,
		OrderID:     orderID,
		JobType:     dto.JobType,
		Status:      status,
		Attempt:     dto.Attempt,
		MaxAttempts: dto.MaxAttempts,
		LastError:   dto.LastError,
		CreatedAt:   dto.CreatedAt,
		QueuedAt:    dto.QueuedAt,
		StartedAt:   dto.StartedAt,
		FinishedAt:  dto.FinishedAt,
	})
}
