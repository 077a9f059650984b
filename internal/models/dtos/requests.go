package dtos

// LocationAddress carries the optional free-text address components.
type LocationAddress struct {
	Street   *string `json:"street,omitempty" validate:"omitempty,max=255"`
	City     *string `json:"city,omitempty" validate:"omitempty,max=255"`
	Postcode *string `json:"postcode,omitempty" validate:"omitempty,max=32"`
	Country  *string `json:"country,omitempty" validate:"omitempty,max=255"`
}

// LocationInput is accepted wherever a location is created: directly, or nested
// in an event payload. Either an address, a coordinate pair, or both.
type LocationInput struct {
	Address   *LocationAddress `json:"address,omitempty"`
	Latitude  *float64         `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64         `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

type UpdateLocationReq struct {
	Address   *LocationAddress `json:"address,omitempty"`
	Latitude  *float64         `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64         `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

type CreateEventReq struct {
	Description string         `json:"description" validate:"required,max=2000"`
	Priority    int            `json:"priority" validate:"required,min=1,max=5"`
	Status      string         `json:"status" validate:"omitempty,max=32"`
	Location    *LocationInput `json:"location" validate:"required"`
}

// UpdateEventReq is a partial patch; nil fields are left untouched.
type UpdateEventReq struct {
	Description *string        `json:"description,omitempty" validate:"omitempty,min=1,max=2000"`
	Priority    *int           `json:"priority,omitempty" validate:"omitempty,min=1,max=5"`
	Status      *string        `json:"status,omitempty" validate:"omitempty,min=1,max=32"`
	Location    *LocationInput `json:"location,omitempty"`
}

type IngestEventReq struct {
	Event           CreateEventReq       `json:"event"`
	ResourcesNeeded []ResourceNeededItem `json:"resources_needed" validate:"dive"`
}

type CreateVolunteerReq struct {
	UserID  uint    `json:"user_id" validate:"required"`
	EventID *uint   `json:"event_id,omitempty" validate:"omitempty,min=1"`
	Status  *string `json:"status,omitempty" validate:"omitempty,oneof=active completed"`
}

// UpdateVolunteerReq is a partial patch; nil fields are left untouched.
type UpdateVolunteerReq struct {
	UserID  *uint   `json:"user_id,omitempty" validate:"omitempty,min=1"`
	EventID *uint   `json:"event_id,omitempty" validate:"omitempty,min=1"`
	Status  *string `json:"status,omitempty" validate:"omitempty,oneof=active completed"`
}

type CompleteVolunteersReq struct {
	EventID uint `json:"event_id" validate:"required"`
}

type RegisterUserReq struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Email       string  `json:"email" validate:"required,email,max=255"`
	PhoneNumber *string `json:"phonenumber,omitempty" validate:"omitempty,max=32"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
}

type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserReq is a partial patch. Status accepts only "unavailable" (set the
// manual override) or "available" (clear it and recompute).
type UpdateUserReq struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	PhoneNumber *string `json:"phonenumber,omitempty" validate:"omitempty,max=32"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	Role        *string `json:"role,omitempty" validate:"omitempty,oneof=SUV VC AUTHORITY"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=available unavailable"`
}

// ResourceNeededItem is a needed resource without its event, used by ingestion.
type ResourceNeededItem struct {
	Name         string  `json:"name" validate:"required,max=255"`
	ResourceType string  `json:"resource_type" validate:"required,max=64"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Quantity     int     `json:"quantity" validate:"required,min=1"`
	IsFulfilled  bool    `json:"is_fulfilled"`
}

type CreateResourceNeededReq struct {
	Name         string  `json:"name" validate:"required,max=255"`
	ResourceType string  `json:"resource_type" validate:"required,max=64"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Quantity     int     `json:"quantity" validate:"required,min=1"`
	IsFulfilled  bool    `json:"is_fulfilled"`
	EventID      uint    `json:"event_id" validate:"required"`
}

type UpdateResourceNeededReq struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	ResourceType *string `json:"resource_type,omitempty" validate:"omitempty,min=1,max=64"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Quantity     *int    `json:"quantity,omitempty" validate:"omitempty,min=1"`
	IsFulfilled  *bool   `json:"is_fulfilled,omitempty"`
	EventID      *uint   `json:"event_id,omitempty" validate:"omitempty,min=1"`
}

type CreateResourceAvailableReq struct {
	Name         string  `json:"name" validate:"required,max=255"`
	ResourceType string  `json:"resource_type" validate:"required,max=64"`
	Quantity     int     `json:"quantity" validate:"required,min=1"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status       string  `json:"status" validate:"omitempty,max=32"`
	VolunteerID  uint    `json:"volunteer_id" validate:"required"`
	EventID      *uint   `json:"event_id,omitempty" validate:"omitempty,min=1"`
	IsAllocated  bool    `json:"is_allocated"`
}

type UpdateResourceAvailableReq struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	ResourceType *string `json:"resource_type,omitempty" validate:"omitempty,min=1,max=64"`
	Quantity     *int    `json:"quantity,omitempty" validate:"omitempty,min=1"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status       *string `json:"status,omitempty" validate:"omitempty,min=1,max=32"`
	VolunteerID  *uint   `json:"volunteer_id,omitempty" validate:"omitempty,min=1"`
	EventID      *uint   `json:"event_id,omitempty" validate:"omitempty,min=1"`
	IsAllocated  *bool   `json:"is_allocated,omitempty"`
}

type AllocateResourceReq struct {
	EventID uint `json:"event_id" validate:"required"`
}
