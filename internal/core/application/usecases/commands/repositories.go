// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS
// architecture. All commands follow a consistent pattern: validation,
// transaction management, and persistence.
package commands

import (
	"context"

	"fulfillment/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// JobRepoFactory provides access to the job repository within a transaction.
	JobRepoFactory interface {
		JobRepository() ports.JobRepository
	}

	// ArtifactRepoFactory provides access to the artifact repository within a transaction.
	ArtifactRepoFactory interface {
		ArtifactRepository() ports.ArtifactRepository
	}

	// DeliveryRepoFactory provides access to the delivery repository within a transaction.
	DeliveryRepoFactory interface {
		DeliveryRepository() ports.DeliveryRepository
	}

	// RevisionRepoFactory provides access to the revision repository within a transaction.
	RevisionRepoFactory interface {
		RevisionRepository() ports.RevisionRepository
	}

	// EventRepoFactory provides access to the event repository within a transaction.
	EventRepoFactory interface {
		EventRepository() ports.EventRepository
	}

	// IntakeUoW manages transactions for payment intake: order creation,
	// job enqueue and the matching timeline events.
	IntakeUoW interface {
		TxManager
		OrderRepoFactory
		JobRepoFactory
		EventRepoFactory
	}

	// IntakeUoWFactory creates new intake unit of work instances.
	IntakeUoWFactory interface {
		Create() IntakeUoW
	}

	// PipelineUoW manages transactions for pipeline execution, which
	// touches every aggregate except revisions.
	PipelineUoW interface {
		TxManager
		OrderRepoFactory
		JobRepoFactory
		ArtifactRepoFactory
		DeliveryRepoFactory
		EventRepoFactory
	}

	// PipelineUoWFactory creates new pipeline unit of work instances.
	PipelineUoWFactory interface {
		Create() PipelineUoW
	}

	// RevisionUoW manages transactions for the revision request and the
	// revision worker: order credits, revision rows, regenerated
	// artifacts and the timeline.
	RevisionUoW interface {
		TxManager
		OrderRepoFactory
		RevisionRepoFactory
		ArtifactRepoFactory
		EventRepoFactory
	}

	// RevisionUoWFactory creates new revision unit of work instances.
	RevisionUoWFactory interface {
		Create() RevisionUoW
	}

	// RecoveryUoW manages the startup sweep that requeues jobs stranded
	// in the PROCESSING state by a crash.
	RecoveryUoW interface {
		TxManager
		JobRepoFactory
	}

	// RecoveryUoWFactory creates new recovery unit of work instances.
	RecoveryUoWFactory interface {
		Create() RecoveryUoW
	}

	// EngagementUoW manages transactions for customer engagement tracking:
	// timeline events appended when assets are viewed or downloaded.
	EngagementUoW interface {
		TxManager
		OrderRepoFactory
		EventRepoFactory
	}

	// EngagementUoWFactory creates new engagement unit of work instances.
	EngagementUoWFactory interface {
		Create() EngagementUoW
	}
)
