package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/constants"
	"mayday/coordinator/internal/logging"
	"mayday/coordinator/internal/metrics"

	"golang.org/x/sync/singleflight"
)

const defaultLoadTimeout = 15 * time.Second

// CachedGeocoder memoizes lookups and collapses concurrent identical queries
// into one upstream call. The shared call is detached from any single
// caller's context; each caller stops waiting when its own context ends.
type CachedGeocoder struct {
	next        Geocoder
	cache       common.CacheInterface
	ttl         time.Duration
	loadTimeout time.Duration
	group       singleflight.Group
	metrics     *metrics.MetricsRegistry
}

var _ Geocoder = (*CachedGeocoder)(nil)

func NewCachedGeocoder(next Geocoder, cache common.CacheInterface, ttl time.Duration, m *metrics.MetricsRegistry) *CachedGeocoder {
	if ttl <= 0 {
		ttl = constants.GeocodeCacheTTL
	}
	return &CachedGeocoder{next: next, cache: cache, ttl: ttl, loadTimeout: defaultLoadTimeout, metrics: m}
}

// shared runs load once per key. load gets a context that survives the
// first caller going away, bounded by loadTimeout.
func (g *CachedGeocoder) shared(ctx context.Context, key string, load func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := g.group.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.loadTimeout)
		defer cancel()
		return load(loadCtx)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *CachedGeocoder) Geocode(ctx context.Context, query string) (*Coordinates, error) {
	key := string(constants.CachePrefixGeocode) + strings.ToLower(strings.TrimSpace(query))

	v, err := g.shared(ctx, key, func(loadCtx context.Context) (interface{}, error) {
		coords, hit, err := common.GetOrLoad(loadCtx, g.cache, key, g.ttl, func() (*Coordinates, error) {
			return g.next.Geocode(loadCtx, query)
		})
		g.metrics.RecordCache(string(constants.CachePrefixGeocode), hit)
		return coords, err
	})
	g.record("search", err)
	if err != nil {
		return nil, err
	}
	return v.(*Coordinates), nil
}

func (g *CachedGeocoder) Reverse(ctx context.Context, lat, lon float64) (*Address, error) {
	key := fmt.Sprintf("%s%.6f,%.6f", constants.CachePrefixReverse, lat, lon)

	v, err := g.shared(ctx, key, func(loadCtx context.Context) (interface{}, error) {
		addr, hit, err := common.GetOrLoad(loadCtx, g.cache, key, g.ttl, func() (*Address, error) {
			return g.next.Reverse(loadCtx, lat, lon)
		})
		g.metrics.RecordCache(string(constants.CachePrefixReverse), hit)
		return addr, err
	})
	g.record("reverse", err)
	if err != nil {
		return nil, err
	}
	return v.(*Address), nil
}

func (g *CachedGeocoder) record(kind string, err error) {
	switch {
	case err == nil:
		g.metrics.RecordGeocode(kind, "ok")
	case ErrorCode(err) == constants.ErrCodeNoResult:
		g.metrics.RecordGeocode(kind, "no_result")
	default:
		g.metrics.RecordGeocode(kind, "error")
		logging.Warn("Geocoder lookup failed", "kind", kind, "code", ErrorCode(err), "error", err.Error())
	}
}
