package jobs

import (
	"context"
	"fmt"
	"time"

	"mayday/coordinator/internal/db/repositories"
	"mayday/coordinator/internal/logging"
	"mayday/coordinator/internal/metrics"

	"gorm.io/gorm"
)

const reconcileBatchSize = 500

// StandaloneReconciler recomputes one user's status in its own transaction.
type StandaloneReconciler interface {
	ReconcileStandalone(ctx context.Context, userID uint) (bool, error)
}

// ReconcileResult summarises one sweep.
type ReconcileResult struct {
	Checked int
	Changed int
	Failed  int
}

// ReconcileJob walks every user and recomputes their status, repairing drift
// left by writes that bypassed the services.
type ReconcileJob struct {
	users      *repositories.UserRepository
	reconciler StandaloneReconciler
	metrics    *metrics.MetricsRegistry
	batchSize  int
}

func NewReconcileJob(db *gorm.DB, reconciler StandaloneReconciler, m *metrics.MetricsRegistry) *ReconcileJob {
	return &ReconcileJob{
		users:      repositories.NewUserRepository(db),
		reconciler: reconciler,
		metrics:    m,
		batchSize:  reconcileBatchSize,
	}
}

// Run performs one full sweep. A failure on one user is logged and the sweep
// continues; only listing failures abort it.
func (j *ReconcileJob) Run(ctx context.Context) (ReconcileResult, error) {
	start := time.Now()
	defer func() { j.metrics.RecordReconcileJob(time.Since(start)) }()

	var (
		res    ReconcileResult
		lastID uint
	)
	for {
		ids, err := j.users.ListIDsAfter(ctx, lastID, j.batchSize)
		if err != nil {
			return res, fmt.Errorf("reconcile sweep aborted after %d users: %w", res.Checked, err)
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			res.Checked++
			changed, err := j.reconciler.ReconcileStandalone(ctx, id)
			if err != nil {
				res.Failed++
				logging.Warn("Failed to reconcile user", "user_id", id, "error", err.Error())
				continue
			}
			if changed {
				res.Changed++
			}
		}
		lastID = ids[len(ids)-1]
	}

	logging.Info("Reconcile sweep finished",
		"checked", res.Checked,
		"changed", res.Changed,
		"failed", res.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// RunScheduled sweeps once at startup and then every interval until ctx ends.
func (j *ReconcileJob) RunScheduled(ctx context.Context, interval time.Duration) {
	if _, err := j.Run(ctx); err != nil {
		logging.Error("Initial reconcile sweep failed", "error", err.Error())
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := j.Run(ctx); err != nil {
				logging.Error("Scheduled reconcile sweep failed", "error", err.Error())
			}
		case <-ctx.Done():
			logging.Info("Shutting down reconcile sweep")
			return
		}
	}
}
