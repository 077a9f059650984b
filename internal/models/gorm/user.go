package gorm

import (
	"mayday/coordinator/internal/constants"
	"time"
)

type User struct {
	ID           uint                 `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string               `gorm:"column:name;not null"`
	Email        string               `gorm:"column:email;uniqueIndex;not null"`
	PhoneNumber  *string              `gorm:"column:phonenumber"`
	PasswordHash string               `gorm:"column:password_hash;not null"`
	Role         constants.UserRole   `gorm:"column:role;type:varchar(16);not null"`
	Status       constants.UserStatus `gorm:"column:status;type:varchar(16);not null;index"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
