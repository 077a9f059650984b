package gorm

import "time"

// Event owns exactly one Location row through LocationID.
type Event struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Description  string    `gorm:"column:description;not null"`
	Priority     int       `gorm:"column:priority;not null;index"`
	Status       string    `gorm:"column:status;not null;index"`
	LocationID   uint      `gorm:"column:location_id;not null;index"`
	CreateTime   time.Time `gorm:"column:create_time;not null"`
	ModifiedTime time.Time `gorm:"column:modified_time;not null"`

	// Relationships
	Location *Location `gorm:"foreignKey:LocationID"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}
