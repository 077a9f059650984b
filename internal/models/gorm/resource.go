package gorm

import "time"

type ResourceNeeded struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string    `gorm:"column:name;not null"`
	ResourceType string    `gorm:"column:resource_type;not null"`
	Description  *string   `gorm:"column:description"`
	Quantity     int       `gorm:"column:quantity;not null"`
	IsFulfilled  bool      `gorm:"column:is_fulfilled;not null"`
	EventID      uint      `gorm:"column:event_id;not null;index"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ResourceNeeded) TableName() string {
	return "resources_needed"
}

type ResourceAvailable struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string    `gorm:"column:name;not null"`
	ResourceType string    `gorm:"column:resource_type;not null"`
	Quantity     int       `gorm:"column:quantity;not null"`
	Description  *string   `gorm:"column:description"`
	Status       string    `gorm:"column:status;not null"`
	VolunteerID  uint      `gorm:"column:volunteer_id;not null;index"`
	EventID      *uint     `gorm:"column:event_id;index"`
	IsAllocated  bool      `gorm:"column:is_allocated;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ResourceAvailable) TableName() string {
	return "resources_available"
}
