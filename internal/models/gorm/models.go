package gorm

// All lists every model managed by AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Location{},
		&Event{},
		&Volunteer{},
		&ResourceNeeded{},
		&ResourceAvailable{},
	}
}
