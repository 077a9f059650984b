package common

import (
	"context"
	"time"

	"mayday/coordinator/internal/logging"
)

// CacheInterface defines the contract for cache implementations.
// Values are stored JSON-encoded so every backend round-trips the same way.
type CacheInterface interface {
	// Set stores a value in cache with the given key and duration
	Set(ctx context.Context, key string, value interface{}, duration time.Duration) error

	// Get decodes the cached value into dest.
	// Returns false on a miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Delete removes a value from cache by key
	Delete(ctx context.Context, key string) error

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}

// GetOrLoad returns the cached value for key, or calls loader and caches its
// result. Cache failures are logged and fall through to the loader.
func GetOrLoad[T any](ctx context.Context, c CacheInterface, key string, ttl time.Duration, loader func() (T, error)) (T, bool, error) {
	var cached T
	if c != nil {
		found, err := c.Get(ctx, key, &cached)
		if err != nil {
			logging.Warn("Cache read failed", "key", key, "error", err.Error())
		} else if found {
			return cached, true, nil
		}
	}

	val, err := loader()
	if err != nil {
		return val, false, err
	}

	if c != nil {
		if err := c.Set(ctx, key, val, ttl); err != nil {
			logging.Warn("Cache write failed", "key", key, "error", err.Error())
		}
	}
	return val, false, nil
}
