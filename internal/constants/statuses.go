package constants

type (
	UserStatus      string
	VolunteerStatus string
)

const (
	UserStatusAvailable   UserStatus = "available"
	UserStatusAssigned    UserStatus = "assigned"
	UserStatusUnavailable UserStatus = "unavailable"

	VolunteerStatusActive    VolunteerStatus = "active"
	VolunteerStatusCompleted VolunteerStatus = "completed"
)

func (s UserStatus) String() string      { return string(s) }
func (s VolunteerStatus) String() string { return string(s) }

func (s VolunteerStatus) IsValid() bool {
	return s == VolunteerStatusActive || s == VolunteerStatusCompleted
}

// Event status is free-form; these are the values the service itself writes or counts.
const (
	EventStatusActive   = "active"
	EventStatusPending  = "pending"
	EventStatusResolved = "resolved"
)
