package services

import (
	"mayday/coordinator/internal/models/dtos"
	gormModels "mayday/coordinator/internal/models/gorm"
)

func toUserResponse(u *gormModels.User) *dtos.UserResponse {
	if u == nil {
		return nil
	}
	return &dtos.UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role.String(),
		Status:      u.Status.String(),
	}
}

func toLocationResponse(l *gormModels.Location) dtos.LocationResponse {
	return dtos.LocationResponse{
		ID: l.ID,
		Address: dtos.LocationAddress{
			Street:   l.Street,
			City:     l.City,
			Postcode: l.Postcode,
			Country:  l.Country,
		},
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
	}
}

func toEventResponse(e *gormModels.Event, loc *gormModels.Location, volunteers int64) *dtos.EventResponse {
	return &dtos.EventResponse{
		ID:              e.ID,
		Description:     e.Description,
		Priority:        e.Priority,
		Status:          e.Status,
		Location:        toLocationResponse(loc),
		VolunteersCount: volunteers,
		CreateTime:      e.CreateTime,
		ModifiedTime:    e.ModifiedTime,
	}
}

func toVolunteerResponse(v *gormModels.Volunteer) *dtos.VolunteerResponse {
	return &dtos.VolunteerResponse{
		ID:             v.ID,
		UserID:         v.UserID,
		EventID:        v.EventID,
		Status:         v.Status.String(),
		CreateTime:     v.CreateTime,
		CompletionTime: v.CompletionTime,
		User:           toUserResponse(v.User),
	}
}

func toResourceNeededResponse(r *gormModels.ResourceNeeded) dtos.ResourceNeededResponse {
	return dtos.ResourceNeededResponse{
		ID:           r.ID,
		Name:         r.Name,
		ResourceType: r.ResourceType,
		Description:  r.Description,
		Quantity:     r.Quantity,
		IsFulfilled:  r.IsFulfilled,
		EventID:      r.EventID,
	}
}

func toResourceAvailableResponse(r *gormModels.ResourceAvailable) dtos.ResourceAvailableResponse {
	return dtos.ResourceAvailableResponse{
		ID:           r.ID,
		Name:         r.Name,
		ResourceType: r.ResourceType,
		Quantity:     r.Quantity,
		Description:  r.Description,
		Status:       r.Status,
		VolunteerID:  r.VolunteerID,
		EventID:      r.EventID,
		IsAllocated:  r.IsAllocated,
	}
}
