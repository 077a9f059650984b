package workers

import (
	"context"

	"mayday/coordinator/internal/common"
)

type WorkersContainer struct {
	Relay *NotificationRelay
}

// InitWorkers starts the relay when a shared stream is configured. Without one,
// services publish straight to the broadcaster and nothing needs to run.
func InitWorkers(ctx context.Context, stream *common.RedisStreamService, broadcaster *common.Broadcaster) *WorkersContainer {
	container := &WorkersContainer{}
	if stream == nil {
		return container
	}

	container.Relay = NewNotificationRelay(stream, broadcaster)
	go container.Relay.Start(ctx)
	return container
}
