package gorm

import "time"

type Location struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Street      *string   `gorm:"column:street"`
	City        *string   `gorm:"column:city"`
	Postcode    *string   `gorm:"column:postcode"`
	Country     *string   `gorm:"column:country"`
	FullAddress *string   `gorm:"column:full_address;index"`
	Latitude    *float64  `gorm:"column:latitude;index:idx_locations_coords"`
	Longitude   *float64  `gorm:"column:longitude;index:idx_locations_coords"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Location) TableName() string {
	return "locations"
}

func (l *Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}
