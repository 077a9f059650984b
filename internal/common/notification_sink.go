package common

import (
	"context"
	"time"

	"mayday/coordinator/internal/constants"
)

// Notification is a change event pushed to listeners after a commit.
type Notification struct {
	Type      constants.NotificationType `json:"type"`
	Data      any                        `json:"data"`
	Timestamp time.Time                  `json:"timestamp"`
}

func NewNotification(t constants.NotificationType, data any) Notification {
	return Notification{Type: t, Data: data, Timestamp: time.Now().UTC()}
}

// NotificationSink receives change notifications. Delivery is best effort:
// implementations must not block the caller and must swallow (and log) failures.
type NotificationSink interface {
	Publish(ctx context.Context, n Notification)
}

// NopSink discards every notification.
type NopSink struct{}

func (NopSink) Publish(context.Context, Notification) {}

// MultiSink fans a notification out to several sinks.
type MultiSink []NotificationSink

func (m MultiSink) Publish(ctx context.Context, n Notification) {
	for _, s := range m {
		s.Publish(ctx, n)
	}
}

// PublishAll is a convenience for services that collect notifications during a
// transaction and emit them once it has committed.
func PublishAll(ctx context.Context, sink NotificationSink, ns []Notification) {
	if sink == nil {
		return
	}
	for _, n := range ns {
		sink.Publish(ctx, n)
	}
}
