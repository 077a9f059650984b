package services

import (
	"context"
	"fmt"
	"strings"

	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/db/repositories"
	"mayday/coordinator/internal/logging"
	"mayday/coordinator/internal/models/dtos"
	gormModels "mayday/coordinator/internal/models/gorm"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	db         *gorm.DB
	users      *repositories.UserRepository
	volunteers *repositories.VolunteerRepository
	reconciler Reconciler
	sink       common.NotificationSink
	hashCost   int
}

func NewUserService(db *gorm.DB, reconciler Reconciler, sink common.NotificationSink) *UserService {
	if sink == nil {
		sink = common.NopSink{}
	}
	return &UserService{
		db:         db,
		users:      repositories.NewUserRepository(db),
		volunteers: repositories.NewVolunteerRepository(db),
		reconciler: reconciler,
		sink:       sink,
		hashCost:   bcrypt.DefaultCost,
	}
}

// Register creates a self-service account (role SUV).
func (s *UserService) Register(ctx context.Context, req dtos.RegisterUserReq) (*dtos.UserResponse, error) {
	return s.CreateWithRole(ctx, req, constants.RoleSUV)
}

// CreateWithRole is used by operators to provision coordinators and authorities.
func (s *UserService) CreateWithRole(ctx context.Context, req dtos.RegisterUserReq, role constants.UserRole) (*dtos.UserResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, NewValidationError("role", "must be one of: SUV VC AUTHORITY")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &gormModels.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PhoneNumber:  trimmed(req.PhoneNumber),
		PasswordHash: string(hash),
		Role:         role,
		Status:       constants.UserStatusAvailable,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		existing, err := users.FindByEmail(ctx, user.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("email %s: %w", user.Email, ErrConflict)
		}
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, classifyDBError(err)
	}

	logging.Info("User registered", "user_id", user.ID, "role", user.Role)
	return toUserResponse(user), nil
}

// Authenticate does not reveal whether the email or the password was wrong.
func (s *UserService) Authenticate(ctx context.Context, req dtos.LoginReq) (*dtos.UserResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return toUserResponse(user), nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*dtos.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("user", id)
	}
	return toUserResponse(user), nil
}

func (s *UserService) List(ctx context.Context, filter dtos.UserFilter) ([]dtos.UserResponse, error) {
	if err := validateStruct(filter); err != nil {
		return nil, err
	}
	rows, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dtos.UserResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toUserResponse(&rows[i]))
	}
	return out, nil
}

// Update applies the provided fields. Status "unavailable" sets the manual
// override; "available" clears it and lets reconciliation decide.
func (s *UserService) Update(ctx context.Context, id uint, req dtos.UpdateUserReq) (*dtos.UserResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var (
		user  *gormModels.User
		notes []common.Notification
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		current, err := users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return notFound("user", id)
		}

		updates := map[string]interface{}{}
		if req.Name != nil {
			updates["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Email != nil {
			email := normalizeEmail(*req.Email)
			if email != current.Email {
				other, err := users.FindByEmail(ctx, email)
				if err != nil {
					return err
				}
				if other != nil {
					return fmt.Errorf("email %s: %w", email, ErrConflict)
				}
				updates["email"] = email
			}
		}
		if req.PhoneNumber != nil {
			updates["phonenumber"] = trimmed(req.PhoneNumber)
		}
		if req.Password != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.hashCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			updates["password_hash"] = string(hash)
		}
		if req.Role != nil {
			updates["role"] = constants.UserRole(*req.Role)
		}
		if req.Status != nil {
			updates["status"] = constants.UserStatus(*req.Status)
		}

		if len(updates) > 0 {
			if _, err := users.Update(ctx, id, updates); err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}
		}

		if req.Status != nil && constants.UserStatus(*req.Status) == constants.UserStatusAvailable {
			if _, err := s.reconciler.Reconcile(ctx, tx, id); err != nil {
				return err
			}
		}

		if user, err = users.FindByID(ctx, id); err != nil {
			return err
		}
		if user.Status != current.Status {
			notes = append(notes, common.NewNotification(constants.NotifyUserStatusChanged,
				UserStatusChange{UserID: id, Status: user.Status.String()}))
		}
		return nil
	})
	if err != nil {
		return nil, classifyDBError(err)
	}

	common.PublishAll(ctx, s.sink, notes)
	return toUserResponse(user), nil
}

// Delete refuses while the user still holds active assignments.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		active, err := s.volunteers.WithTx(tx).HasActiveForUser(ctx, id)
		if err != nil {
			return err
		}
		if active {
			return fmt.Errorf("user %d has active volunteer assignments: %w", id, ErrConflict)
		}

		rows, err := s.users.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		if rows == 0 {
			return notFound("user", id)
		}
		return nil
	})
	return classifyDBError(err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
