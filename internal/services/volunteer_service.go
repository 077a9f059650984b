package services

import (
	"context"
	"fmt"
	"time"

	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/db/repositories"
	"mayday/coordinator/internal/logging"
	"mayday/coordinator/internal/metrics"
	"mayday/coordinator/internal/models/dtos"
	gormModels "mayday/coordinator/internal/models/gorm"

	"gorm.io/gorm"
)

// VolunteerService owns the assignment lifecycle. Every write reconciles the
// affected users in the same transaction and notifies only after commit.
type VolunteerService struct {
	db         *gorm.DB
	volunteers *repositories.VolunteerRepository
	users      *repositories.UserRepository
	events     *repositories.EventRepository
	reconciler Reconciler
	sink       common.NotificationSink
	metrics    *metrics.MetricsRegistry
	now        func() time.Time
}

func NewVolunteerService(db *gorm.DB, reconciler Reconciler, sink common.NotificationSink, m *metrics.MetricsRegistry) *VolunteerService {
	if sink == nil {
		sink = common.NopSink{}
	}
	return &VolunteerService{
		db:         db,
		volunteers: repositories.NewVolunteerRepository(db),
		users:      repositories.NewUserRepository(db),
		events:     repositories.NewEventRepository(db),
		reconciler: reconciler,
		sink:       sink,
		metrics:    m,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *VolunteerService) Get(ctx context.Context, id uint) (*dtos.VolunteerResponse, error) {
	v, err := s.volunteers.FindByIDWithUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, notFound("volunteer", id)
	}
	return toVolunteerResponse(v), nil
}

func (s *VolunteerService) List(ctx context.Context, filter dtos.VolunteerFilter) ([]dtos.VolunteerResponse, error) {
	if err := validateStruct(filter); err != nil {
		return nil, err
	}
	rows, err := s.volunteers.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dtos.VolunteerResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toVolunteerResponse(&rows[i]))
	}
	return out, nil
}

// Create inserts an assignment. If the user already holds an active assignment
// on the same event that row is returned instead and created is false.
func (s *VolunteerService) Create(ctx context.Context, req dtos.CreateVolunteerReq) (*dtos.VolunteerResponse, bool, error) {
	if err := validateStruct(req); err != nil {
		return nil, false, err
	}

	status := constants.VolunteerStatusActive
	if req.Status != nil {
		status = constants.VolunteerStatus(*req.Status)
	}

	var (
		result  *gormModels.Volunteer
		created bool
		notes   []common.Notification
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vols := s.volunteers.WithTx(tx)

		user, err := s.users.WithTx(tx).FindByID(ctx, req.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return notFound("user", req.UserID)
		}
		if req.EventID != nil {
			if err := s.requireEvent(ctx, tx, *req.EventID); err != nil {
				return err
			}
		}

		if status == constants.VolunteerStatusActive {
			existing, err := vols.FindActive(ctx, req.UserID, req.EventID)
			if err != nil {
				return err
			}
			if existing != nil {
				existing.User = user
				result = existing
				return nil
			}
		}

		now := s.now()
		v := &gormModels.Volunteer{
			UserID:     req.UserID,
			EventID:    req.EventID,
			Status:     status,
			CreateTime: now,
			Version:    1,
		}
		if status == constants.VolunteerStatusCompleted {
			v.CompletionTime = &now
		}
		if err := vols.Create(ctx, v); err != nil {
			return fmt.Errorf("failed to create volunteer: %w", err)
		}

		if err := reconcileUsers(ctx, tx, s.reconciler, s.users, []uint{v.UserID}, &notes); err != nil {
			return err
		}

		// status may have moved during reconciliation
		if user, err = s.users.WithTx(tx).FindByID(ctx, v.UserID); err != nil {
			return err
		}
		v.User = user
		result = v
		created = true
		return nil
	})
	if err != nil {
		return nil, false, classifyDBError(err)
	}

	resp := toVolunteerResponse(result)
	if created {
		s.metrics.RecordVolunteersCreated(1)
		notes = append([]common.Notification{common.NewNotification(constants.NotifyVolunteerCreated, resp)}, notes...)
		common.PublishAll(ctx, s.sink, notes)
		logging.Info("Volunteer created", "volunteer_id", result.ID, "user_id", result.UserID)
	}
	return resp, created, nil
}

// Update applies only the provided fields. Moving to completed stamps
// completion_time once and is final; both the old and the new owner are reconciled.
func (s *VolunteerService) Update(ctx context.Context, id uint, patch dtos.UpdateVolunteerReq) (*dtos.VolunteerResponse, error) {
	if err := validateStruct(patch); err != nil {
		return nil, err
	}

	var (
		result    *gormModels.Volunteer
		completed bool
		notes     []common.Notification
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vols := s.volunteers.WithTx(tx)

		v, err := vols.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if v == nil {
			return notFound("volunteer", id)
		}
		version := v.Version
		affected := []uint{v.UserID}
		wasCompleted := v.IsCompleted()

		if wasCompleted && patch.Status != nil && constants.VolunteerStatus(*patch.Status) == constants.VolunteerStatusActive {
			return NewValidationError("status", "a completed assignment cannot be reopened")
		}
		prevUser, prevEvent := v.UserID, v.EventID

		if patch.UserID != nil && *patch.UserID != v.UserID {
			u, err := s.users.WithTx(tx).FindByID(ctx, *patch.UserID)
			if err != nil {
				return err
			}
			if u == nil {
				return notFound("user", *patch.UserID)
			}
			v.UserID = *patch.UserID
			affected = append(affected, v.UserID)
		}
		if patch.EventID != nil {
			if err := s.requireEvent(ctx, tx, *patch.EventID); err != nil {
				return err
			}
			v.EventID = patch.EventID
		}
		if patch.Status != nil {
			v.Status = constants.VolunteerStatus(*patch.Status)
		}
		moved := v.UserID != prevUser || !sameEvent(v.EventID, prevEvent)
		if moved && v.Status == constants.VolunteerStatusActive {
			dup, err := vols.FindActive(ctx, v.UserID, v.EventID)
			if err != nil {
				return err
			}
			if dup != nil && dup.ID != v.ID {
				return fmt.Errorf("user %d already has active assignment %d for this event: %w", v.UserID, dup.ID, ErrConflict)
			}
		}
		if v.IsCompleted() && v.CompletionTime == nil {
			now := s.now()
			v.CompletionTime = &now
		}

		rows, err := vols.UpdateVersioned(ctx, v, version)
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("volunteer %d: %w", id, ErrConcurrentUpdate)
		}

		if err := reconcileUsers(ctx, tx, s.reconciler, s.users, affected, &notes); err != nil {
			return err
		}

		if result, err = vols.FindByIDWithUser(ctx, id); err != nil {
			return err
		}
		completed = !wasCompleted && result.IsCompleted()
		return nil
	})
	if err != nil {
		return nil, classifyDBError(err)
	}

	resp := toVolunteerResponse(result)
	notifyType := constants.NotifyVolunteerUpdated
	if completed {
		notifyType = constants.NotifyVolunteerCompleted
		s.metrics.RecordVolunteersCompleted(1)
	}
	notes = append([]common.Notification{common.NewNotification(notifyType, resp)}, notes...)
	common.PublishAll(ctx, s.sink, notes)
	return resp, nil
}

// Complete is idempotent: an already completed assignment is returned untouched.
func (s *VolunteerService) Complete(ctx context.Context, id uint) (*dtos.VolunteerResponse, error) {
	var (
		result  *gormModels.Volunteer
		changed bool
		notes   []common.Notification
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vols := s.volunteers.WithTx(tx)

		v, err := vols.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if v == nil {
			return notFound("volunteer", id)
		}

		if !v.IsCompleted() {
			version := v.Version
			v.Status = constants.VolunteerStatusCompleted
			if v.CompletionTime == nil {
				now := s.now()
				v.CompletionTime = &now
			}

			rows, err := vols.UpdateVersioned(ctx, v, version)
			if err != nil {
				return err
			}
			if rows == 0 {
				return fmt.Errorf("volunteer %d: %w", id, ErrConcurrentUpdate)
			}
			if err := reconcileUsers(ctx, tx, s.reconciler, s.users, []uint{v.UserID}, &notes); err != nil {
				return err
			}
			changed = true
		}

		result, err = vols.FindByIDWithUser(ctx, id)
		return err
	})
	if err != nil {
		return nil, classifyDBError(err)
	}

	resp := toVolunteerResponse(result)
	if changed {
		s.metrics.RecordVolunteersCompleted(1)
		notes = append([]common.Notification{common.NewNotification(constants.NotifyVolunteerCompleted, resp)}, notes...)
		common.PublishAll(ctx, s.sink, notes)
	}
	return resp, nil
}

// CompleteAllForEvent completes every open assignment on the event and returns
// how many rows moved.
func (s *VolunteerService) CompleteAllForEvent(ctx context.Context, eventID uint) (int64, error) {
	var (
		updated int64
		notes   []common.Notification
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireEvent(ctx, tx, eventID); err != nil {
			return err
		}
		var err error
		updated, err = s.completeAllTx(ctx, tx, eventID, &notes)
		return err
	})
	if err != nil {
		return 0, classifyDBError(err)
	}

	s.metrics.RecordVolunteersCompleted(updated)
	common.PublishAll(ctx, s.sink, notes)
	logging.Info("Completed volunteers for event", "event_id", eventID, "updated", updated)
	return updated, nil
}

// completeAllTx is the transactional core shared with event close-out and delete.
func (s *VolunteerService) completeAllTx(ctx context.Context, tx *gorm.DB, eventID uint, notes *[]common.Notification) (int64, error) {
	vols := s.volunteers.WithTx(tx)

	open, err := vols.ListOpenForEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if len(open) == 0 {
		return 0, nil
	}

	ids := make([]uint, 0, len(open))
	userIDs := make([]uint, 0, len(open))
	for _, v := range open {
		ids = append(ids, v.ID)
		userIDs = append(userIDs, v.UserID)
	}

	updated, err := vols.CompleteByIDs(ctx, ids, s.now())
	if err != nil {
		return 0, err
	}

	if err := reconcileUsers(ctx, tx, s.reconciler, s.users, userIDs, notes); err != nil {
		return 0, err
	}

	*notes = append(*notes, common.NewNotification(constants.NotifyVolunteerCompleted,
		dtos.CompleteVolunteersResponse{EventID: eventID, Updated: updated}))
	return updated, nil
}

// Delete removes the assignment and reconciles its user.
func (s *VolunteerService) Delete(ctx context.Context, id uint) error {
	var notes []common.Notification

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vols := s.volunteers.WithTx(tx)

		v, err := vols.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if v == nil {
			return notFound("volunteer", id)
		}
		if _, err := vols.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete volunteer: %w", err)
		}

		notes = append(notes, common.NewNotification(constants.NotifyVolunteerDeleted, toVolunteerResponse(v)))
		return reconcileUsers(ctx, tx, s.reconciler, s.users, []uint{v.UserID}, &notes)
	})
	if err != nil {
		return classifyDBError(err)
	}

	common.PublishAll(ctx, s.sink, notes)
	return nil
}

func (s *VolunteerService) requireEvent(ctx context.Context, tx *gorm.DB, eventID uint) error {
	ok, err := s.events.WithTx(tx).Exists(ctx, eventID)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("event", eventID)
	}
	return nil
}

func sameEvent(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
