package services

import (
	"context"

	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/db/repositories"

	"gorm.io/gorm"
)

// UserStatusChange is the payload of a user.status_changed notification.
type UserStatusChange struct {
	UserID uint   `json:"user_id"`
	Status string `json:"status"`
}

// reconcileUsers reconciles each distinct user once and appends a status
// notification for every user whose status moved.
func reconcileUsers(ctx context.Context, tx *gorm.DB, rec Reconciler, users *repositories.UserRepository, userIDs []uint, notes *[]common.Notification) error {
	seen := make(map[uint]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		changed, err := rec.Reconcile(ctx, tx, id)
		if err != nil {
			return err
		}
		if !changed {
			continue
		}

		u, err := users.WithTx(tx).FindByID(ctx, id)
		if err != nil {
			return err
		}
		if u != nil {
			*notes = append(*notes, common.NewNotification(constants.NotifyUserStatusChanged,
				UserStatusChange{UserID: u.ID, Status: u.Status.String()}))
		}
	}
	return nil
}
