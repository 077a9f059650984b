package repositories

import (
	"context"
	"fmt"

	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/models/dtos"
	gormModels "mayday/coordinator/internal/models/gorm"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new GORM-based user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy bound to an open transaction.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// FindByID returns nil, nil when the user does not exist.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*gormModels.User, error) {
	var user gormModels.User

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error

	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

// FindByEmail returns nil, nil when no user has the address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*gormModels.User, error) {
	var user gormModels.User

	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error

	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]gormModels.User, error) {
	out := make(map[uint]gormModels.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []gormModels.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (r *UserRepository) Create(ctx context.Context, user *gormModels.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) List(ctx context.Context, filter dtos.UserFilter) ([]gormModels.User, error) {
	var users []gormModels.User

	q := r.db.WithContext(ctx).Model(&gormModels.User{})
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}

	err := q.Order("id ASC").
		Scopes(paginate(filter.Skip, filter.Limit)).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListIDsAfter pages through user ids in ascending order (keyset pagination).
func (r *UserRepository) ListIDsAfter(ctx context.Context, afterID uint, batch int) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&gormModels.User{}).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(batch).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	return ids, nil
}

// Update writes the given columns and reports how many rows matched.
func (r *UserRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&gormModels.User{}).
		Where("id = ?", id).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id uint, status constants.UserStatus) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.User{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update user status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d vanished during status update", id)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&gormModels.User{}, id)
	return res.RowsAffected, res.Error
}
