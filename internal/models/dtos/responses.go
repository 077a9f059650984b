package dtos

import "time"

type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

// UserResponse is the public profile; it never carries the password hash.
type UserResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	PhoneNumber *string `json:"phonenumber,omitempty"`
	Role        string  `json:"role"`
	Status      string  `json:"status"`
}

type LocationResponse struct {
	ID        uint            `json:"id"`
	Address   LocationAddress `json:"address"`
	Latitude  *float64        `json:"latitude"`
	Longitude *float64        `json:"longitude"`
}

type EventResponse struct {
	ID              uint             `json:"id"`
	Description     string           `json:"description"`
	Priority        int              `json:"priority"`
	Status          string           `json:"status"`
	Location        LocationResponse `json:"location"`
	VolunteersCount int64            `json:"volunteers_count"`
	CreateTime      time.Time        `json:"create_time"`
	ModifiedTime    time.Time        `json:"modified_time"`
}

type VolunteerResponse struct {
	ID             uint          `json:"id"`
	UserID         uint          `json:"user_id"`
	EventID        *uint         `json:"event_id"`
	Status         string        `json:"status"`
	CreateTime     time.Time     `json:"create_time"`
	CompletionTime *time.Time    `json:"completion_time"`
	User           *UserResponse `json:"user,omitempty"`
}

type CompleteVolunteersResponse struct {
	EventID uint  `json:"event_id"`
	Updated int64 `json:"updated"`
}

type CloseEventResponse struct {
	Event   *EventResponse `json:"event"`
	Updated int64          `json:"volunteers_completed"`
}

type IngestEventResponse struct {
	Event           *EventResponse           `json:"event"`
	ResourcesNeeded []ResourceNeededResponse `json:"resources_needed"`
}

type ResourceNeededResponse struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	ResourceType string  `json:"resource_type"`
	Description  *string `json:"description"`
	Quantity     int     `json:"quantity"`
	IsFulfilled  bool    `json:"is_fulfilled"`
	EventID      uint    `json:"event_id"`
}

type ResourceAvailableResponse struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	ResourceType string  `json:"resource_type"`
	Quantity     int     `json:"quantity"`
	Description  *string `json:"description"`
	Status       string  `json:"status"`
	VolunteerID  uint    `json:"volunteer_id"`
	EventID      *uint   `json:"event_id"`
	IsAllocated  bool    `json:"is_allocated"`
}

type StatsResponse struct {
	ActiveEvents       int64 `json:"activeEvents"`
	TotalVolunteers    int64 `json:"totalVolunteers"`
	ResourcesAvailable int64 `json:"resourcesAvailable"`
	TotalLocations     int64 `json:"totalLocations"`
}

type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresAt   time.Time     `json:"expires_at"`
	User        *UserResponse `json:"user"`
}
