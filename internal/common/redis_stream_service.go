package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mayday/coordinator/internal/logging"
	"mayday/coordinator/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// RedisStreamService publishes notifications to a Redis Stream and reads them
// back for relaying to local listeners on every instance.
type RedisStreamService struct {
	client  *redis.Client
	stream  string
	maxLen  int64
	timeout time.Duration
	metrics *metrics.MetricsRegistry
}

var _ NotificationSink = (*RedisStreamService)(nil)

// NewRedisStreamService creates a new Redis stream service
func NewRedisStreamService(client *redis.Client, stream string, maxLen int64, m *metrics.MetricsRegistry) *RedisStreamService {
	return &RedisStreamService{
		client:  client,
		stream:  stream,
		maxLen:  maxLen,
		timeout: 2 * time.Second,
		metrics: m,
	}
}

// Publish enqueues in the background; failures are logged and dropped.
func (s *RedisStreamService) Publish(ctx context.Context, n Notification) {
	go func() {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		if err := s.Enqueue(pubCtx, n); err != nil {
			s.metrics.RecordNotification("redis", "failed")
			logging.Warn("Failed to publish notification to Redis", "type", n.Type, "error", err.Error())
			return
		}
		s.metrics.RecordNotification("redis", "delivered")
	}()
}

// Enqueue adds a notification to the stream
// XADD stream MAXLEN ~ n * data <json>
func (s *RedisStreamService) Enqueue(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}

	if _, err := s.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}
	return nil
}

// Read blocks up to blockTime for entries after lastID and returns them with
// the id to resume from.
func (s *RedisStreamService) Read(ctx context.Context, lastID string, count int64, blockTime time.Duration) ([]Notification, string, error) {
	streams, err := s.client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{s.stream, lastID},
		Count:   count,
		Block:   blockTime,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// No messages available (timeout)
			return nil, lastID, nil
		}
		return nil, lastID, fmt.Errorf("failed to read from stream: %w", err)
	}

	var out []Notification
	for _, stream := range streams {
		var batch []Notification
		batch, lastID = decodeStreamMessages(stream.Messages, lastID)
		out = append(out, batch...)
	}
	return out, lastID, nil
}

// decodeStreamMessages skips entries without a decodable data field; the
// returned id still advances past them.
func decodeStreamMessages(msgs []redis.XMessage, lastID string) ([]Notification, string) {
	var out []Notification
	for _, msg := range msgs {
		lastID = msg.ID

		dataStr, ok := msg.Values["data"].(string)
		if !ok {
			logging.Warn("Skipping stream entry without data field", "id", msg.ID)
			continue
		}

		var n Notification
		if err := json.Unmarshal([]byte(dataStr), &n); err != nil {
			logging.Warn("Skipping malformed stream entry", "id", msg.ID, "error", err.Error())
			continue
		}
		out = append(out, n)
	}
	return out, lastID
}

// LastID returns the id of the newest entry, or "0-0" for an empty stream.
// Reading after it sees everything added from now on, unlike "$" which is
// re-evaluated on every blocking read.
func (s *RedisStreamService) LastID(ctx context.Context) (string, error) {
	msgs, err := s.client.XRevRangeN(ctx, s.stream, "+", "-", 1).Result()
	if err != nil {
		return "", fmt.Errorf("failed to read stream tail: %w", err)
	}
	if len(msgs) == 0 {
		return "0-0", nil
	}
	return msgs[0].ID, nil
}

// Length returns the number of entries retained in the stream
func (s *RedisStreamService) Length(ctx context.Context) (int64, error) {
	length, err := s.client.XLen(ctx, s.stream).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get stream length: %w", err)
	}
	return length, nil
}
