package repositories

import (
	"context"
	"fmt"

	"mayday/coordinator/internal/models/dtos"
	gormModels "mayday/coordinator/internal/models/gorm"

	"gorm.io/gorm"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// WithTx returns a copy bound to an open transaction.
func (r *EventRepository) WithTx(tx *gorm.DB) *EventRepository {
	return &EventRepository{db: tx}
}

func (r *EventRepository) Create(ctx context.Context, event *gormModels.Event) error {
	return r.db.WithContext(ctx).Omit("Location").Create(event).Error
}

// FindByID returns nil, nil when the event does not exist.
func (r *EventRepository) FindByID(ctx context.Context, id uint) (*gormModels.Event, error) {
	var event gormModels.Event

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&event).Error

	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}
	return &event, nil
}

func (r *EventRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&gormModels.Event{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check event: %w", err)
	}
	return n > 0, nil
}

// List orders by id so paging is deterministic across storage engines.
func (r *EventRepository) List(ctx context.Context, filter dtos.EventFilter) ([]gormModels.Event, error) {
	var events []gormModels.Event

	q := r.db.WithContext(ctx).Model(&gormModels.Event{})
	if filter.Priority != nil {
		q = q.Where("priority = ?", *filter.Priority)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}

	err := q.Order("id ASC").
		Scopes(paginate(filter.Skip, filter.Limit)).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&gormModels.Event{}).
		Where("id = ?", id).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// CountByLocation reports how many events point at the location.
func (r *EventRepository) CountByLocation(ctx context.Context, locationID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&gormModels.Event{}).
		Where("location_id = ?", locationID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count events for location: %w", err)
	}
	return n, nil
}

func (r *EventRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&gormModels.Event{}, id)
	return res.RowsAffected, res.Error
}
