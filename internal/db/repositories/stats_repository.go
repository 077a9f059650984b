package repositories

import (
	"context"
	"fmt"

	"mayday/coordinator/internal/constants"

	"github.com/jmoiron/sqlx"
)

// StatsRepository runs the dashboard aggregates through sqlx.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) CountEventsByStatus(ctx context.Context, status string) (int64, error) {
	return r.scalar(ctx, constants.CountEventsByStatus, status)
}

func (r *StatsRepository) CountVolunteers(ctx context.Context) (int64, error) {
	return r.scalar(ctx, constants.CountVolunteers)
}

func (r *StatsRepository) SumAvailableResources(ctx context.Context) (int64, error) {
	return r.scalar(ctx, constants.SumAvailableResourceQuantity)
}

func (r *StatsRepository) CountLocations(ctx context.Context) (int64, error) {
	return r.scalar(ctx, constants.CountLocations)
}

func (r *StatsRepository) scalar(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("stats query failed: %w", err)
	}
	return n, nil
}
