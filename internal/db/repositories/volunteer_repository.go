package repositories

import (
	"context"
	"fmt"
	"time"

	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/models/dtos"
	gormModels "mayday/coordinator/internal/models/gorm"

	"gorm.io/gorm"
)

// VolunteerRepository manages volunteer assignment rows
type VolunteerRepository struct {
	db *gorm.DB
}

func NewVolunteerRepository(db *gorm.DB) *VolunteerRepository {
	return &VolunteerRepository{db: db}
}

// WithTx returns a copy bound to an open transaction.
func (r *VolunteerRepository) WithTx(tx *gorm.DB) *VolunteerRepository {
	return &VolunteerRepository{db: tx}
}

func (r *VolunteerRepository) Create(ctx context.Context, v *gormModels.Volunteer) error {
	return r.db.WithContext(ctx).Create(v).Error
}

// FindByID returns nil, nil when the assignment does not exist.
func (r *VolunteerRepository) FindByID(ctx context.Context, id uint) (*gormModels.Volunteer, error) {
	var v gormModels.Volunteer

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&v).Error

	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch volunteer: %w", err)
	}
	return &v, nil
}

// FindByIDWithUser preloads the owning user; User stays nil if the weak reference dangles.
func (r *VolunteerRepository) FindByIDWithUser(ctx context.Context, id uint) (*gormModels.Volunteer, error) {
	var v gormModels.Volunteer

	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&v).Error

	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch volunteer: %w", err)
	}
	return &v, nil
}

// FindActive returns the user's active assignment on the event, if any.
func (r *VolunteerRepository) FindActive(ctx context.Context, userID uint, eventID *uint) (*gormModels.Volunteer, error) {
	var v gormModels.Volunteer

	q := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, constants.VolunteerStatusActive)
	if eventID != nil {
		q = q.Where("event_id = ?", *eventID)
	} else {
		q = q.Where("event_id IS NULL")
	}

	err := q.Order("id ASC").First(&v).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch active volunteer: %w", err)
	}
	return &v, nil
}

func (r *VolunteerRepository) List(ctx context.Context, filter dtos.VolunteerFilter) ([]gormModels.Volunteer, error) {
	var rows []gormModels.Volunteer

	q := r.db.WithContext(ctx).Preload("User")
	if filter.EventID != nil {
		q = q.Where("event_id = ?", *filter.EventID)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}

	err := q.Order("id ASC").
		Scopes(paginate(filter.Skip, filter.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list volunteers: %w", err)
	}
	return rows, nil
}

// HasActiveForUser reports whether the user holds at least one active assignment.
func (r *VolunteerRepository) HasActiveForUser(ctx context.Context, userID uint) (bool, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&gormModels.Volunteer{}).
		Where("user_id = ? AND status = ?", userID, constants.VolunteerStatusActive).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return false, fmt.Errorf("failed to check active assignments: %w", err)
	}
	return len(ids) > 0, nil
}

// CountByEvent counts assignments of every status.
func (r *VolunteerRepository) CountByEvent(ctx context.Context, eventID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&gormModels.Volunteer{}).
		Where("event_id = ?", eventID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count volunteers: %w", err)
	}
	return n, nil
}

type eventCount struct {
	EventID uint
	Total   int64
}

// CountByEvents returns assignment counts keyed by event id; events without rows are absent.
func (r *VolunteerRepository) CountByEvents(ctx context.Context, eventIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}

	var rows []eventCount
	err := r.db.WithContext(ctx).
		Model(&gormModels.Volunteer{}).
		Select("event_id, COUNT(*) AS total").
		Where("event_id IN ?", eventIDs).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count volunteers: %w", err)
	}
	for _, row := range rows {
		out[row.EventID] = row.Total
	}
	return out, nil
}

// UpdateVersioned writes v only if its row still carries expectedVersion, and
// bumps the version. A zero row count means another writer got there first.
func (r *VolunteerRepository) UpdateVersioned(ctx context.Context, v *gormModels.Volunteer, expectedVersion int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&gormModels.Volunteer{}).
		Where("id = ? AND version = ?", v.ID, expectedVersion).
		Updates(map[string]interface{}{
			"user_id":         v.UserID,
			"event_id":        v.EventID,
			"status":          v.Status,
			"completion_time": v.CompletionTime,
			"version":         expectedVersion + 1,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update volunteer: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		v.Version = expectedVersion + 1
	}
	return res.RowsAffected, nil
}

// ListOpenForEvent returns the event's assignments that are not yet completed.
func (r *VolunteerRepository) ListOpenForEvent(ctx context.Context, eventID uint) ([]gormModels.Volunteer, error) {
	var rows []gormModels.Volunteer
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND status <> ?", eventID, constants.VolunteerStatusCompleted).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list open volunteers: %w", err)
	}
	return rows, nil
}

// CompleteByIDs completes the listed rows that are still open. Rows completed
// concurrently are skipped and not counted; completion_time is never overwritten.
func (r *VolunteerRepository) CompleteByIDs(ctx context.Context, ids []uint, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&gormModels.Volunteer{}).
		Where("id IN ? AND status <> ?", ids, constants.VolunteerStatusCompleted).
		Updates(map[string]interface{}{
			"status":          constants.VolunteerStatusCompleted,
			"completion_time": gorm.Expr("COALESCE(completion_time, ?)", now),
			"version":         gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to complete volunteers: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DetachEvent clears the weak event reference on every assignment of the event.
func (r *VolunteerRepository) DetachEvent(ctx context.Context, eventID uint) error {
	err := r.db.WithContext(ctx).
		Model(&gormModels.Volunteer{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"event_id": nil,
			"version":  gorm.Expr("version + 1"),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to detach volunteers: %w", err)
	}
	return nil
}

func (r *VolunteerRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&gormModels.Volunteer{}, id)
	return res.RowsAffected, res.Error
}
