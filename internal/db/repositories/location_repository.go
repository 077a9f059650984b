package repositories

import (
	"context"
	"fmt"

	gormModels "mayday/coordinator/internal/models/gorm"

	"gorm.io/gorm"
)

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// WithTx returns a copy bound to an open transaction.
func (r *LocationRepository) WithTx(tx *gorm.DB) *LocationRepository {
	return &LocationRepository{db: tx}
}

func (r *LocationRepository) Create(ctx context.Context, loc *gormModels.Location) error {
	return r.db.WithContext(ctx).Create(loc).Error
}

// FindByID returns nil, nil when the location does not exist.
func (r *LocationRepository) FindByID(ctx context.Context, id uint) (*gormModels.Location, error) {
	var loc gormModels.Location

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&loc).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch location: %w", err)
	}
	return &loc, nil
}

func (r *LocationRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]gormModels.Location, error) {
	out := make(map[uint]gormModels.Location, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []gormModels.Location
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch locations: %w", err)
	}
	for _, loc := range rows {
		out[loc.ID] = loc
	}
	return out, nil
}

// FindByCoordinates returns the oldest row with the exact coordinate pair, or nil.
func (r *LocationRepository) FindByCoordinates(ctx context.Context, lat, lon float64) (*gormModels.Location, error) {
	var loc gormModels.Location

	err := r.db.WithContext(ctx).
		Where("latitude = ? AND longitude = ?", lat, lon).
		Order("id ASC").
		First(&loc).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch location by coordinates: %w", err)
	}
	return &loc, nil
}

// FindByFullAddress returns the oldest row with the exact address, or nil.
func (r *LocationRepository) FindByFullAddress(ctx context.Context, fullAddress string) (*gormModels.Location, error) {
	var loc gormModels.Location

	err := r.db.WithContext(ctx).
		Where("full_address = ?", fullAddress).
		Order("id ASC").
		First(&loc).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch location by address: %w", err)
	}
	return &loc, nil
}

func (r *LocationRepository) List(ctx context.Context, skip, limit int) ([]gormModels.Location, error) {
	var rows []gormModels.Location
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Scopes(paginate(skip, limit)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return rows, nil
}

func (r *LocationRepository) Save(ctx context.Context, loc *gormModels.Location) error {
	return r.db.WithContext(ctx).Save(loc).Error
}

func (r *LocationRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&gormModels.Location{}, id)
	return res.RowsAffected, res.Error
}
