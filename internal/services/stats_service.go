package services

import (
	"context"
	"time"

	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/metrics"
	"mayday/coordinator/internal/models/dtos"

	"golang.org/x/sync/errgroup"
)

// StatsStore is the read side the dashboard aggregates come from.
type StatsStore interface {
	CountEventsByStatus(ctx context.Context, status string) (int64, error)
	CountVolunteers(ctx context.Context) (int64, error)
	SumAvailableResources(ctx context.Context) (int64, error)
	CountLocations(ctx context.Context) (int64, error)
}

type StatsService struct {
	store   StatsStore
	cache   common.CacheInterface
	ttl     time.Duration
	metrics *metrics.MetricsRegistry
}

func NewStatsService(store StatsStore, cache common.CacheInterface, m *metrics.MetricsRegistry) *StatsService {
	return &StatsService{
		store:   store,
		cache:   cache,
		ttl:     constants.StatsCacheTTL,
		metrics: m,
	}
}

// Get serves the summary from cache for a few seconds between recomputations.
func (s *StatsService) Get(ctx context.Context) (*dtos.StatsResponse, error) {
	key := string(constants.CachePrefixStats) + "summary"

	stats, hit, err := common.GetOrLoad(ctx, s.cache, key, s.ttl, func() (dtos.StatsResponse, error) {
		return s.compute(ctx)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCache(string(constants.CachePrefixStats), hit)
	return &stats, nil
}

func (s *StatsService) compute(ctx context.Context) (dtos.StatsResponse, error) {
	var out dtos.StatsResponse

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.ActiveEvents, err = s.store.CountEventsByStatus(gctx, constants.EventStatusActive)
		return err
	})
	g.Go(func() (err error) {
		out.TotalVolunteers, err = s.store.CountVolunteers(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.ResourcesAvailable, err = s.store.SumAvailableResources(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TotalLocations, err = s.store.CountLocations(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return dtos.StatsResponse{}, err
	}
	return out, nil
}
