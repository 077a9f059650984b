package common

import (
	"context"
	"sync"

	"mayday/coordinator/internal/logging"
	"mayday/coordinator/internal/metrics"
)

// Broadcaster fans notifications out to in-process listeners (SSE streams).
// Slow listeners lose messages instead of stalling publishers.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[uint64]chan Notification
	nextID      uint64
	buffer      int
	closed      bool
	metrics     *metrics.MetricsRegistry
}

var _ NotificationSink = (*Broadcaster)(nil)

func NewBroadcaster(buffer int, m *metrics.MetricsRegistry) *Broadcaster {
	if buffer < 1 {
		buffer = 1
	}
	return &Broadcaster{
		subscribers: make(map[uint64]chan Notification),
		buffer:      buffer,
		metrics:     m,
	}
}

// Subscribe registers a listener. The returned cancel func must be called
// once the listener goes away; it closes the channel.
func (b *Broadcaster) Subscribe() (<-chan Notification, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Notification, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch
	b.setGauge()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subscribers[id]; ok {
				delete(b.subscribers, id)
				close(sub)
				b.setGauge()
			}
		})
	}
}

func (b *Broadcaster) Publish(_ context.Context, n Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- n:
			b.metrics.RecordNotification("sse", "delivered")
		default:
			b.metrics.RecordNotification("sse", "dropped")
			logging.Warn("Dropping notification for slow listener", "subscriber", id, "type", n.Type)
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close disconnects every listener; later subscriptions get a closed channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
	b.closed = true
	b.setGauge()
}

// setGauge must be called with mu held.
func (b *Broadcaster) setGauge() {
	if b.metrics != nil {
		b.metrics.SSESubscribers.Set(float64(len(b.subscribers)))
	}
}
