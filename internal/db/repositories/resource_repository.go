package repositories

import (
	"context"
	"fmt"

	"mayday/coordinator/internal/models/dtos"
	gormModels "mayday/coordinator/internal/models/gorm"

	"gorm.io/gorm"
)

// ResourceRepository covers both resources_needed and resources_available.
type ResourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// WithTx returns a copy bound to an open transaction.
func (r *ResourceRepository) WithTx(tx *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: tx}
}

/* ---------- resources_needed ---------- */

func (r *ResourceRepository) CreateNeeded(ctx context.Context, res *gormModels.ResourceNeeded) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *ResourceRepository) CreateNeededBatch(ctx context.Context, rows []gormModels.ResourceNeeded) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindNeeded returns nil, nil when the row does not exist.
func (r *ResourceRepository) FindNeeded(ctx context.Context, id uint) (*gormModels.ResourceNeeded, error) {
	var res gormModels.ResourceNeeded
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&res).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch needed resource: %w", err)
	}
	return &res, nil
}

func (r *ResourceRepository) ListNeeded(ctx context.Context, filter dtos.ResourceFilter) ([]gormModels.ResourceNeeded, error) {
	var rows []gormModels.ResourceNeeded

	q := r.db.WithContext(ctx).Model(&gormModels.ResourceNeeded{})
	if filter.EventID != nil {
		q = q.Where("event_id = ?", *filter.EventID)
	}
	if filter.Flag != nil {
		q = q.Where("is_fulfilled = ?", *filter.Flag)
	}

	err := q.Order("id ASC").Scopes(paginate(filter.Skip, filter.Limit)).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list needed resources: %w", err)
	}
	return rows, nil
}

func (r *ResourceRepository) SaveNeeded(ctx context.Context, res *gormModels.ResourceNeeded) error {
	return r.db.WithContext(ctx).Save(res).Error
}

func (r *ResourceRepository) DeleteNeeded(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&gormModels.ResourceNeeded{}, id)
	return res.RowsAffected, res.Error
}

func (r *ResourceRepository) DeleteNeededByEvent(ctx context.Context, eventID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&gormModels.ResourceNeeded{})
	return res.RowsAffected, res.Error
}

/* ---------- resources_available ---------- */

func (r *ResourceRepository) CreateAvailable(ctx context.Context, res *gormModels.ResourceAvailable) error {
	return r.db.WithContext(ctx).Create(res).Error
}

// FindAvailable returns nil, nil when the row does not exist.
func (r *ResourceRepository) FindAvailable(ctx context.Context, id uint) (*gormModels.ResourceAvailable, error) {
	var res gormModels.ResourceAvailable
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&res).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch available resource: %w", err)
	}
	return &res, nil
}

func (r *ResourceRepository) ListAvailable(ctx context.Context, filter dtos.ResourceFilter) ([]gormModels.ResourceAvailable, error) {
	var rows []gormModels.ResourceAvailable

	q := r.db.WithContext(ctx).Model(&gormModels.ResourceAvailable{})
	if filter.EventID != nil {
		q = q.Where("event_id = ?", *filter.EventID)
	}
	if filter.VolunteerID != nil {
		q = q.Where("volunteer_id = ?", *filter.VolunteerID)
	}
	if filter.Flag != nil {
		q = q.Where("is_allocated = ?", *filter.Flag)
	}

	err := q.Order("id ASC").Scopes(paginate(filter.Skip, filter.Limit)).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list available resources: %w", err)
	}
	return rows, nil
}

func (r *ResourceRepository) SaveAvailable(ctx context.Context, res *gormModels.ResourceAvailable) error {
	return r.db.WithContext(ctx).Save(res).Error
}

func (r *ResourceRepository) DeleteAvailable(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&gormModels.ResourceAvailable{}, id)
	return res.RowsAffected, res.Error
}

// DetachAvailableFromEvent releases every resource allocated to the event.
func (r *ResourceRepository) DetachAvailableFromEvent(ctx context.Context, eventID uint) error {
	err := r.db.WithContext(ctx).
		Model(&gormModels.ResourceAvailable{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"event_id":     nil,
			"is_allocated": false,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to detach resources: %w", err)
	}
	return nil
}
