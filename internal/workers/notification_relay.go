package workers

import (
	"context"
	"time"

	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/logging"
)

// StreamReader is the read side of the shared notification stream.
type StreamReader interface {
	Read(ctx context.Context, lastID string, count int64, blockTime time.Duration) ([]common.Notification, string, error)
	Length(ctx context.Context) (int64, error)
	LastID(ctx context.Context) (string, error)
}

// NotificationRelay tails the shared stream and republishes every entry to
// the local broadcaster, so listeners on any instance see every change.
// It starts after the newest entry present at startup: entries written while
// the relay was down are not replayed, but nothing written after Start is lost.
type NotificationRelay struct {
	stream     StreamReader
	local      common.NotificationSink
	batchSize  int64
	blockTime  time.Duration
	retryDelay time.Duration
}

func NewNotificationRelay(stream StreamReader, local common.NotificationSink) *NotificationRelay {
	return &NotificationRelay{
		stream:     stream,
		local:      local,
		batchSize:  100,
		blockTime:  5 * time.Second,
		retryDelay: 2 * time.Second,
	}
}

// Start blocks until ctx is cancelled.
func (r *NotificationRelay) Start(ctx context.Context) {
	if n, err := r.stream.Length(ctx); err == nil {
		logging.Info("Notification relay started", "retained_entries", n)
	}

	lastID, ok := r.startID(ctx)
	if !ok {
		logging.Info("Notification relay stopped")
		return
	}
	for {
		if ctx.Err() != nil {
			logging.Info("Notification relay stopped")
			return
		}

		batch, next, err := r.stream.Read(ctx, lastID, r.batchSize, r.blockTime)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			logging.Warn("Notification relay read failed", "error", err.Error())
			select {
			case <-time.After(r.retryDelay):
			case <-ctx.Done():
			}
			continue
		}

		lastID = next
		for _, n := range batch {
			r.local.Publish(ctx, n)
		}
	}
}

// startID pins the read position once so that entries added between two
// empty blocking reads are still delivered.
func (r *NotificationRelay) startID(ctx context.Context) (string, bool) {
	for {
		id, err := r.stream.LastID(ctx)
		if err == nil {
			return id, true
		}
		if ctx.Err() != nil {
			return "", false
		}
		logging.Warn("Notification relay cannot resolve start position", "error", err.Error())
		select {
		case <-time.After(r.retryDelay):
		case <-ctx.Done():
			return "", false
		}
	}
}
