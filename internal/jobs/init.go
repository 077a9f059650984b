package jobs

import (
	"context"
	"time"

	"mayday/coordinator/internal/logging"
	"mayday/coordinator/internal/metrics"

	"gorm.io/gorm"
)

// InitializeJobs starts the background jobs. A zero interval disables the sweep.
func InitializeJobs(ctx context.Context, db *gorm.DB, reconciler StandaloneReconciler, m *metrics.MetricsRegistry, interval time.Duration) *ReconcileJob {
	job := NewReconcileJob(db, reconciler, m)
	if interval <= 0 {
		logging.Info("Reconcile sweep disabled")
		return job
	}

	go job.RunScheduled(ctx, interval)
	return job
}
