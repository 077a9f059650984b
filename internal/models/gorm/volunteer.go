package gorm

import (
	"mayday/coordinator/internal/constants"
	"time"
)

// Volunteer is one assignment of a user to an event. UserID and EventID are
// weak references; integrity is checked by the services, not the schema.
type Volunteer struct {
	ID             uint                      `gorm:"column:id;primaryKey;autoIncrement"`
	UserID         uint                      `gorm:"column:user_id;not null;index"`
	EventID        *uint                     `gorm:"column:event_id;index"`
	Status         constants.VolunteerStatus `gorm:"column:status;type:varchar(16);not null;index"`
	CreateTime     time.Time                 `gorm:"column:create_time;not null"`
	CompletionTime *time.Time                `gorm:"column:completion_time"`
	Version        int                       `gorm:"column:version;not null"`

	// Relationships
	User *User `gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for GORM
func (Volunteer) TableName() string {
	return "volunteers"
}

func (v *Volunteer) IsCompleted() bool {
	return v.Status == constants.VolunteerStatusCompleted
}
