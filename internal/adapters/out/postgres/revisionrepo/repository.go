package revisionrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/revision"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRevisionRepository implements RevisionRepository using GORM.
type GormRevisionRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormRevisionRepository creates a new GORM revision repository.
func NewGormRevisionRepository(db *gorm.DB, tracker aggregateTracker) *GormRevisionRepository {
	return &GormRevisionRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new revision to the database.
func (r *GormRevisionRepository) Add(ctx context.Context, entity *revision.Revision) error {
	if err := entity.Validate(); err != nil {
		return err
	}

	dto := fromDomain(entity)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(entity.ID(), entity)
	return nil
}

// Update saves an existing revision to the database.
func (r *GormRevisionRepository) Update(ctx context.Context, entity *revision.Revision) error {
	if err := entity.Validate(); err != nil {
		return err
	}

	dto := fromDomain(entity)
	result := r.db.WithContext(ctx).Model(&RevisionDTO{}).Where("id = ?", dto.ID).Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(entity.ID(), entity)
	return nil
}

// Get retrieves a revision by ID.
func (r *GormRevisionRepository) Get(ctx context.Context, id kernel.UUID) (*revision.Revision, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto RevisionDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("revision", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetFirstInQueuedStatus retrieves the oldest queued revision, locking the
// row so a competing worker skips it.
func (r *GormRevisionRepository) GetFirstInQueuedStatus(ctx context.Context) (*revision.Revision, error) {
	var dto RevisionDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Order("created_at").
		First(&dto, "status = ?", revision.StatusQueued.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("revision", "first in queued status")
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllByOrder retrieves all revisions of an order, oldest first.
func (r *GormRevisionRepository) GetAllByOrder(ctx context.Context, orderID kernel.UUID) ([]*revision.Revision, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []RevisionDTO
	err := r.db.WithContext(ctx).
		Order("created_at").
		Find(&dtos, "order_id = ?", orderID.Bytes()).Error
	if err != nil {
		return nil, err
	}

	revisions := make([]*revision.Revision, 0, len(dtos))
	for _, dto := range dtos {
		rev, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, rev)
	}

	return revisions, nil
}
