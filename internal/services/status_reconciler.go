package services

import (
	"context"
	"fmt"

	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/db/repositories"
	"mayday/coordinator/internal/logging"
	"mayday/coordinator/internal/metrics"

	"gorm.io/gorm"
)

// Reconciler recomputes a user's derived status inside the caller's transaction.
type Reconciler interface {
	Reconcile(ctx context.Context, tx *gorm.DB, userID uint) (bool, error)
}

// StatusReconciler keeps users.status in line with their active volunteer rows.
//
// A stored "unavailable" is a manual override and is never touched. Otherwise the
// user is "assigned" while at least one active assignment exists, else "available".
type StatusReconciler struct {
	db         *gorm.DB
	users      *repositories.UserRepository
	volunteers *repositories.VolunteerRepository
	metrics    *metrics.MetricsRegistry
}

var _ Reconciler = (*StatusReconciler)(nil)

func NewStatusReconciler(db *gorm.DB, m *metrics.MetricsRegistry) *StatusReconciler {
	return &StatusReconciler{
		db:         db,
		users:      repositories.NewUserRepository(db),
		volunteers: repositories.NewVolunteerRepository(db),
		metrics:    m,
	}
}

// Reconcile reports whether it wrote a new status. A missing user is a no-op.
func (r *StatusReconciler) Reconcile(ctx context.Context, tx *gorm.DB, userID uint) (bool, error) {
	users := r.users.WithTx(tx)

	user, err := users.FindByID(ctx, userID)
	if err != nil {
		r.metrics.RecordReconciliation("error")
		return false, err
	}
	if user == nil {
		r.metrics.RecordReconciliation("missing")
		logging.Debug("Reconcile skipped, user not found", "user_id", userID)
		return false, nil
	}
	if user.Status == constants.UserStatusUnavailable {
		r.metrics.RecordReconciliation("override")
		return false, nil
	}

	active, err := r.volunteers.WithTx(tx).HasActiveForUser(ctx, userID)
	if err != nil {
		r.metrics.RecordReconciliation("error")
		return false, err
	}

	want := constants.UserStatusAvailable
	if active {
		want = constants.UserStatusAssigned
	}
	if user.Status == want {
		r.metrics.RecordReconciliation("unchanged")
		return false, nil
	}

	if err := users.UpdateStatus(ctx, userID, want); err != nil {
		r.metrics.RecordReconciliation("error")
		return false, err
	}
	r.metrics.RecordReconciliation("changed")
	return true, nil
}

// ReconcileStandalone runs Reconcile in a transaction of its own.
func (r *StatusReconciler) ReconcileStandalone(ctx context.Context, userID uint) (bool, error) {
	var changed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		changed, err = r.Reconcile(ctx, tx, userID)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("reconcile user %d: %w", userID, classifyDBError(err))
	}
	return changed, nil
}
