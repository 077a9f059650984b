package services

import (
	"context"
	"fmt"

	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/db/repositories"
	"mayday/coordinator/internal/models/dtos"
	gormModels "mayday/coordinator/internal/models/gorm"

	"gorm.io/gorm"
)

// ResourceService manages what events need and what volunteers can offer.
type ResourceService struct {
	db         *gorm.DB
	resources  *repositories.ResourceRepository
	events     *repositories.EventRepository
	volunteers *repositories.VolunteerRepository
	sink       common.NotificationSink
}

func NewResourceService(db *gorm.DB, sink common.NotificationSink) *ResourceService {
	if sink == nil {
		sink = common.NopSink{}
	}
	return &ResourceService{
		db:         db,
		resources:  repositories.NewResourceRepository(db),
		events:     repositories.NewEventRepository(db),
		volunteers: repositories.NewVolunteerRepository(db),
		sink:       sink,
	}
}

/* ---------- needed ---------- */

func (s *ResourceService) GetNeeded(ctx context.Context, id uint) (*dtos.ResourceNeededResponse, error) {
	res, err := s.resources.FindNeeded(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, notFound("needed resource", id)
	}
	out := toResourceNeededResponse(res)
	return &out, nil
}

func (s *ResourceService) ListNeeded(ctx context.Context, filter dtos.ResourceFilter) ([]dtos.ResourceNeededResponse, error) {
	if err := validateStruct(filter); err != nil {
		return nil, err
	}
	rows, err := s.resources.ListNeeded(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dtos.ResourceNeededResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toResourceNeededResponse(&rows[i]))
	}
	return out, nil
}

func (s *ResourceService) CreateNeeded(ctx context.Context, req dtos.CreateResourceNeededReq) (*dtos.ResourceNeededResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	res := &gormModels.ResourceNeeded{
		Name:         req.Name,
		ResourceType: req.ResourceType,
		Description:  req.Description,
		Quantity:     req.Quantity,
		IsFulfilled:  req.IsFulfilled,
		EventID:      req.EventID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireEvent(ctx, tx, req.EventID); err != nil {
			return err
		}
		return s.resources.WithTx(tx).CreateNeeded(ctx, res)
	})
	if err != nil {
		return nil, classifyDBError(err)
	}

	out := toResourceNeededResponse(res)
	s.sink.Publish(ctx, common.NewNotification(constants.NotifyResourceCreated, out))
	return &out, nil
}

func (s *ResourceService) UpdateNeeded(ctx context.Context, id uint, req dtos.UpdateResourceNeededReq) (*dtos.ResourceNeededResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var res *gormModels.ResourceNeeded
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.resources.WithTx(tx)

		var err error
		if res, err = repo.FindNeeded(ctx, id); err != nil {
			return err
		}
		if res == nil {
			return notFound("needed resource", id)
		}

		if req.Name != nil {
			res.Name = *req.Name
		}
		if req.ResourceType != nil {
			res.ResourceType = *req.ResourceType
		}
		if req.Description != nil {
			res.Description = req.Description
		}
		if req.Quantity != nil {
			res.Quantity = *req.Quantity
		}
		if req.IsFulfilled != nil {
			res.IsFulfilled = *req.IsFulfilled
		}
		if req.EventID != nil && *req.EventID != res.EventID {
			if err := s.requireEvent(ctx, tx, *req.EventID); err != nil {
				return err
			}
			res.EventID = *req.EventID
		}
		return repo.SaveNeeded(ctx, res)
	})
	if err != nil {
		return nil, classifyDBError(err)
	}

	out := toResourceNeededResponse(res)
	s.sink.Publish(ctx, common.NewNotification(constants.NotifyResourceUpdated, out))
	return &out, nil
}

func (s *ResourceService) DeleteNeeded(ctx context.Context, id uint) error {
	rows, err := s.resources.DeleteNeeded(ctx, id)
	if err != nil {
		return classifyDBError(fmt.Errorf("failed to delete needed resource: %w", err))
	}
	if rows == 0 {
		return notFound("needed resource", id)
	}
	s.sink.Publish(ctx, common.NewNotification(constants.NotifyResourceDeleted, map[string]any{"kind": "needed", "id": id}))
	return nil
}

/* ---------- available ---------- */

func (s *ResourceService) GetAvailable(ctx context.Context, id uint) (*dtos.ResourceAvailableResponse, error) {
	res, err := s.resources.FindAvailable(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, notFound("available resource", id)
	}
	out := toResourceAvailableResponse(res)
	return &out, nil
}

func (s *ResourceService) ListAvailable(ctx context.Context, filter dtos.ResourceFilter) ([]dtos.ResourceAvailableResponse, error) {
	if err := validateStruct(filter); err != nil {
		return nil, err
	}
	rows, err := s.resources.ListAvailable(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dtos.ResourceAvailableResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toResourceAvailableResponse(&rows[i]))
	}
	return out, nil
}

func (s *ResourceService) CreateAvailable(ctx context.Context, req dtos.CreateResourceAvailableReq) (*dtos.ResourceAvailableResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	res := &gormModels.ResourceAvailable{
		Name:         req.Name,
		ResourceType: req.ResourceType,
		Quantity:     req.Quantity,
		Description:  req.Description,
		Status:       req.Status,
		VolunteerID:  req.VolunteerID,
		EventID:      req.EventID,
		IsAllocated:  req.IsAllocated && req.EventID != nil,
	}
	if res.Status == "" {
		res.Status = "available"
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireVolunteer(ctx, tx, req.VolunteerID); err != nil {
			return err
		}
		if req.EventID != nil {
			if err := s.requireEvent(ctx, tx, *req.EventID); err != nil {
				return err
			}
		}
		return s.resources.WithTx(tx).CreateAvailable(ctx, res)
	})
	if err != nil {
		return nil, classifyDBError(err)
	}

	out := toResourceAvailableResponse(res)
	s.sink.Publish(ctx, common.NewNotification(constants.NotifyResourceCreated, out))
	return &out, nil
}

func (s *ResourceService) UpdateAvailable(ctx context.Context, id uint, req dtos.UpdateResourceAvailableReq) (*dtos.ResourceAvailableResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var res *gormModels.ResourceAvailable
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.resources.WithTx(tx)

		var err error
		if res, err = repo.FindAvailable(ctx, id); err != nil {
			return err
		}
		if res == nil {
			return notFound("available resource", id)
		}

		if req.Name != nil {
			res.Name = *req.Name
		}
		if req.ResourceType != nil {
			res.ResourceType = *req.ResourceType
		}
		if req.Quantity != nil {
			res.Quantity = *req.Quantity
		}
		if req.Description != nil {
			res.Description = req.Description
		}
		if req.Status != nil {
			res.Status = *req.Status
		}
		if req.VolunteerID != nil && *req.VolunteerID != res.VolunteerID {
			if err := s.requireVolunteer(ctx, tx, *req.VolunteerID); err != nil {
				return err
			}
			res.VolunteerID = *req.VolunteerID
		}
		if req.EventID != nil {
			if err := s.requireEvent(ctx, tx, *req.EventID); err != nil {
				return err
			}
			res.EventID = req.EventID
		}
		if req.IsAllocated != nil {
			res.IsAllocated = *req.IsAllocated && res.EventID != nil
		}
		return repo.SaveAvailable(ctx, res)
	})
	if err != nil {
		return nil, classifyDBError(err)
	}

	out := toResourceAvailableResponse(res)
	s.sink.Publish(ctx, common.NewNotification(constants.NotifyResourceUpdated, out))
	return &out, nil
}

// Allocate commits an offered resource to an event.
func (s *ResourceService) Allocate(ctx context.Context, id uint, req dtos.AllocateResourceReq) (*dtos.ResourceAvailableResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var res *gormModels.ResourceAvailable
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.resources.WithTx(tx)

		var err error
		if res, err = repo.FindAvailable(ctx, id); err != nil {
			return err
		}
		if res == nil {
			return notFound("available resource", id)
		}
		if err := s.requireEvent(ctx, tx, req.EventID); err != nil {
			return err
		}

		res.EventID = &req.EventID
		res.IsAllocated = true
		return repo.SaveAvailable(ctx, res)
	})
	if err != nil {
		return nil, classifyDBError(err)
	}

	out := toResourceAvailableResponse(res)
	s.sink.Publish(ctx, common.NewNotification(constants.NotifyResourceAllocated, out))
	return &out, nil
}

func (s *ResourceService) DeleteAvailable(ctx context.Context, id uint) error {
	rows, err := s.resources.DeleteAvailable(ctx, id)
	if err != nil {
		return classifyDBError(fmt.Errorf("failed to delete available resource: %w", err))
	}
	if rows == 0 {
		return notFound("available resource", id)
	}
	s.sink.Publish(ctx, common.NewNotification(constants.NotifyResourceDeleted, map[string]any{"kind": "available", "id": id}))
	return nil
}

func (s *ResourceService) requireEvent(ctx context.Context, tx *gorm.DB, eventID uint) error {
	ok, err := s.events.WithTx(tx).Exists(ctx, eventID)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("event", eventID)
	}
	return nil
}

func (s *ResourceService) requireVolunteer(ctx context.Context, tx *gorm.DB, volunteerID uint) error {
	v, err := s.volunteers.WithTx(tx).FindByID(ctx, volunteerID)
	if err != nil {
		return err
	}
	if v == nil {
		return notFound("volunteer", volunteerID)
	}
	return nil
}
