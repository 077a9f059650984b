package common

import (
	"context"
	"fmt"
	"time"

	"mayday/coordinator/internal/logging"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to addr and pings it. The client is returned even
// when the ping fails; the pool keeps trying to reconnect.
func NewRedisClient(addr, password string) (*redis.Client, error) {
	logging.Info("Initializing Redis client", "addr", addr)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logging.Error("Failed to ping Redis", "addr", addr, "error", err.Error())
		return client, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Info("Successfully connected to Redis", "addr", addr)
	return client, nil
}
