package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/db/repositories"
	"mayday/coordinator/internal/logging"
	"mayday/coordinator/internal/models/dtos"
	gormModels "mayday/coordinator/internal/models/gorm"

	"gorm.io/gorm"
)

// EventService serves the aggregated event view (event + location + live
// volunteer count) and the event write paths.
type EventService struct {
	db         *gorm.DB
	events     *repositories.EventRepository
	locations  *repositories.LocationRepository
	volunteers *repositories.VolunteerRepository
	resources  *repositories.ResourceRepository
	locSvc     *LocationService
	volSvc     *VolunteerService
	sink       common.NotificationSink
	now        func() time.Time
}

func NewEventService(db *gorm.DB, locSvc *LocationService, volSvc *VolunteerService, sink common.NotificationSink) *EventService {
	if sink == nil {
		sink = common.NopSink{}
	}
	return &EventService{
		db:         db,
		events:     repositories.NewEventRepository(db),
		locations:  repositories.NewLocationRepository(db),
		volunteers: repositories.NewVolunteerRepository(db),
		resources:  repositories.NewResourceRepository(db),
		locSvc:     locSvc,
		volSvc:     volSvc,
		sink:       sink,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Get returns ErrNotFound when either the event or its location is missing.
func (s *EventService) Get(ctx context.Context, id uint) (*dtos.EventResponse, error) {
	return s.aggregate(ctx, s.db, id)
}

func (s *EventService) aggregate(ctx context.Context, db *gorm.DB, id uint) (*dtos.EventResponse, error) {
	event, err := s.events.WithTx(db).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, notFound("event", id)
	}

	loc, err := s.locations.WithTx(db).FindByID(ctx, event.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		logging.Warn("Event references a missing location", "event_id", id, "location_id", event.LocationID)
		return nil, fmt.Errorf("location %d of event %d: %w", event.LocationID, id, ErrNotFound)
	}

	count, err := s.volunteers.WithTx(db).CountByEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEventResponse(event, loc, count), nil
}

// List pages events by id. Events whose location row is gone are skipped.
func (s *EventService) List(ctx context.Context, filter dtos.EventFilter) ([]dtos.EventResponse, error) {
	if err := validateStruct(filter); err != nil {
		return nil, err
	}

	events, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return []dtos.EventResponse{}, nil
	}

	eventIDs := make([]uint, 0, len(events))
	locationIDs := make([]uint, 0, len(events))
	for _, e := range events {
		eventIDs = append(eventIDs, e.ID)
		locationIDs = append(locationIDs, e.LocationID)
	}

	locs, err := s.locations.FindByIDs(ctx, locationIDs)
	if err != nil {
		return nil, err
	}
	counts, err := s.volunteers.CountByEvents(ctx, eventIDs)
	if err != nil {
		return nil, err
	}

	out := make([]dtos.EventResponse, 0, len(events))
	for i := range events {
		e := &events[i]
		loc, ok := locs[e.LocationID]
		if !ok {
			logging.Warn("Skipping event with missing location", "event_id", e.ID, "location_id", e.LocationID)
			continue
		}
		out = append(out, *toEventResponse(e, &loc, counts[e.ID]))
	}
	return out, nil
}

// Create stores the location first, then the event pointing at it.
func (s *EventService) Create(ctx context.Context, req dtos.CreateEventReq) (*dtos.EventResponse, error) {
	resp, _, err := s.create(ctx, req, nil)
	return resp, err
}

// Ingest creates an event, its location and its needed resources atomically.
func (s *EventService) Ingest(ctx context.Context, req dtos.IngestEventReq) (*dtos.IngestEventResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	resp, needed, err := s.create(ctx, req.Event, req.ResourcesNeeded)
	if err != nil {
		return nil, err
	}

	out := &dtos.IngestEventResponse{
		Event:           resp,
		ResourcesNeeded: make([]dtos.ResourceNeededResponse, 0, len(needed)),
	}
	for i := range needed {
		out.ResourcesNeeded = append(out.ResourcesNeeded, toResourceNeededResponse(&needed[i]))
	}
	return out, nil
}

func (s *EventService) create(ctx context.Context, req dtos.CreateEventReq, items []dtos.ResourceNeededItem) (*dtos.EventResponse, []gormModels.ResourceNeeded, error) {
	if err := validateStruct(req); err != nil {
		return nil, nil, err
	}
	if err := validateLocationInput("location.", *req.Location); err != nil {
		return nil, nil, err
	}

	prepared, err := s.locSvc.Prepare(ctx, *req.Location)
	if err != nil {
		return nil, nil, err
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = constants.EventStatusActive
	}

	var (
		event   *gormModels.Event
		loc     *gormModels.Location
		needed  []gormModels.ResourceNeeded
		notes   []common.Notification
		created bool
	)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		loc, created, err = s.locSvc.FindOrCreateTx(ctx, tx, prepared)
		if err != nil {
			return err
		}

		now := s.now()
		event = &gormModels.Event{
			Description:  req.Description,
			Priority:     req.Priority,
			Status:       status,
			LocationID:   loc.ID,
			CreateTime:   now,
			ModifiedTime: now,
		}
		if err := s.events.WithTx(tx).Create(ctx, event); err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}

		if len(items) > 0 {
			needed = make([]gormModels.ResourceNeeded, 0, len(items))
			for _, it := range items {
				needed = append(needed, gormModels.ResourceNeeded{
					Name:         it.Name,
					ResourceType: it.ResourceType,
					Description:  it.Description,
					Quantity:     it.Quantity,
					IsFulfilled:  it.IsFulfilled,
					EventID:      event.ID,
				})
			}
			if err := s.resources.WithTx(tx).CreateNeededBatch(ctx, needed); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, classifyDBError(err)
	}

	resp := toEventResponse(event, loc, 0)
	if created {
		notes = append(notes, common.NewNotification(constants.NotifyLocationCreated, resp.Location))
	}
	notes = append(notes, common.NewNotification(constants.NotifyEventCreated, resp))
	common.PublishAll(ctx, s.sink, notes)

	logging.Info("Event created", "event_id", event.ID, "location_id", loc.ID, "resources_needed", len(needed))
	return resp, needed, nil
}

// Update applies the provided fields. A location payload stores a new location
// and repoints the event; the previous row is left in place.
func (s *EventService) Update(ctx context.Context, id uint, req dtos.UpdateEventReq) (*dtos.EventResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var prepared *gormModels.Location
	if req.Location != nil {
		if err := validateLocationInput("location.", *req.Location); err != nil {
			return nil, err
		}
		var err error
		if prepared, err = s.locSvc.Prepare(ctx, *req.Location); err != nil {
			return nil, err
		}
	}

	var resp *dtos.EventResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := s.events.WithTx(tx)

		ok, err := events.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("event", id)
		}

		updates := map[string]interface{}{"modified_time": s.now()}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Priority != nil {
			updates["priority"] = *req.Priority
		}
		if req.Status != nil {
			updates["status"] = strings.TrimSpace(*req.Status)
		}
		if prepared != nil {
			loc, _, err := s.locSvc.FindOrCreateTx(ctx, tx, prepared)
			if err != nil {
				return err
			}
			updates["location_id"] = loc.ID
		}

		if _, err := events.Update(ctx, id, updates); err != nil {
			return fmt.Errorf("failed to update event: %w", err)
		}

		resp, err = s.aggregate(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, classifyDBError(err)
	}

	s.sink.Publish(ctx, common.NewNotification(constants.NotifyEventUpdated, resp))
	return resp, nil
}

// Close resolves the event and completes every open assignment on it.
func (s *EventService) Close(ctx context.Context, id uint) (*dtos.CloseEventResponse, error) {
	var (
		resp    *dtos.EventResponse
		updated int64
		notes   []common.Notification
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := s.events.WithTx(tx)

		ok, err := events.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("event", id)
		}

		_, err = events.Update(ctx, id, map[string]interface{}{
			"status":        constants.EventStatusResolved,
			"modified_time": s.now(),
		})
		if err != nil {
			return fmt.Errorf("failed to close event: %w", err)
		}

		if updated, err = s.volSvc.completeAllTx(ctx, tx, id, &notes); err != nil {
			return err
		}

		resp, err = s.aggregate(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, classifyDBError(err)
	}

	s.volSvc.metrics.RecordVolunteersCompleted(updated)
	notes = append(notes, common.NewNotification(constants.NotifyEventClosed, resp))
	common.PublishAll(ctx, s.sink, notes)

	logging.Info("Event closed", "event_id", id, "volunteers_completed", updated)
	return &dtos.CloseEventResponse{Event: resp, Updated: updated}, nil
}

// Delete completes the event's open assignments, detaches volunteers and
// allocated resources, drops its needed resources and finally the event.
func (s *EventService) Delete(ctx context.Context, id uint) error {
	var (
		updated int64
		notes   []common.Notification
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := s.events.WithTx(tx)
		resources := s.resources.WithTx(tx)

		ok, err := events.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("event", id)
		}

		if updated, err = s.volSvc.completeAllTx(ctx, tx, id, &notes); err != nil {
			return err
		}
		if err := s.volunteers.WithTx(tx).DetachEvent(ctx, id); err != nil {
			return err
		}
		if err := resources.DetachAvailableFromEvent(ctx, id); err != nil {
			return err
		}
		if _, err := resources.DeleteNeededByEvent(ctx, id); err != nil {
			return err
		}
		if _, err := events.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
		return nil
	})
	if err != nil {
		return classifyDBError(err)
	}

	s.volSvc.metrics.RecordVolunteersCompleted(updated)
	notes = append(notes, common.NewNotification(constants.NotifyEventDeleted, map[string]uint{"id": id}))
	common.PublishAll(ctx, s.sink, notes)
	return nil
}
