package dtos

// Page is the offset/limit pair shared by every list endpoint.
type Page struct {
	Skip  int `validate:"min=0"`
	Limit int `validate:"min=1,max=1000"`
}

type EventFilter struct {
	Page
	Priority *int    `validate:"omitempty,min=1,max=5"`
	Status   *string `validate:"omitempty,max=32"`
}

type VolunteerFilter struct {
	Page
	EventID *uint
	UserID  *uint
	Status  *string `validate:"omitempty,oneof=active completed"`
}

type UserFilter struct {
	Page
	Status *string `validate:"omitempty,oneof=available assigned unavailable"`
}

type ResourceFilter struct {
	Page
	EventID     *uint
	VolunteerID *uint
	Flag        *bool // is_fulfilled for needed resources, is_allocated for available ones
}
