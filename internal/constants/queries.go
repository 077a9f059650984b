package constants

// Stats queries use ? placeholders and are rebound per driver.
const (
	CountEventsByStatus = `
	SELECT COUNT(*) FROM events WHERE status = ?
	`

	CountVolunteers = `
	SELECT COUNT(*) FROM volunteers
	`

	SumAvailableResourceQuantity = `
	SELECT COALESCE(SUM(quantity), 0) FROM resources_available
	`

	CountLocations = `
	SELECT COUNT(*) FROM locations
	`
)
