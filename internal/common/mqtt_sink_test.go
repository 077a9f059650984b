package common

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"mayday/coordinator/internal/constants"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeToken completes immediately with err.
type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// mockMQTTClient records publishes; methods the sink never calls panic via
// the nil embedded interface.
type mockMQTTClient struct {
	mqtt.Client

	mu           sync.Mutex
	sent         []published
	err          error
	disconnected bool
}

func (m *mockMQTTClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return &fakeToken{err: m.err}
}

func (m *mockMQTTClient) Disconnect(uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnected = true
}

func (m *mockMQTTClient) messages() []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]published(nil), m.sent...)
}

func TestMQTTSink_Topic(t *testing.T) {
	sink := newMQTTSinkWithClient(&mockMQTTClient{}, "mayday/", nil)

	tests := []struct {
		typ  constants.NotificationType
		want string
	}{
		{constants.NotifyVolunteerCreated, "mayday/volunteer/created"},
		{constants.NotifyUserStatusChanged, "mayday/user/status_changed"},
		{constants.NotifyResourceAllocated, "mayday/resource/allocated"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sink.Topic(NewNotification(tt.typ, nil)))
	}
}

func TestMQTTSink_PublishesJSON(t *testing.T) {
	client := &mockMQTTClient{}
	sink := newMQTTSinkWithClient(client, "ops", nil)

	sink.Publish(context.Background(), NewNotification(constants.NotifyEventClosed, map[string]int{"id": 9}))

	sent := client.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "ops/event/closed", sent[0].topic)
	assert.Equal(t, byte(0), sent[0].qos)

	var n struct {
		Type string         `json:"type"`
		Data map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(sent[0].payload, &n))
	assert.Equal(t, "event.closed", n.Type)
	assert.Equal(t, 9, n.Data["id"])
}

func TestMQTTSink_FailedPublishDoesNotBlock(t *testing.T) {
	client := &mockMQTTClient{err: errors.New("not connected")}
	sink := newMQTTSinkWithClient(client, "ops", nil)

	done := make(chan struct{})
	go func() {
		sink.Publish(context.Background(), NewNotification(constants.NotifyEventCreated, 1))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked the caller")
	}
	assert.Len(t, client.messages(), 1)
}

func TestMQTTSink_Close(t *testing.T) {
	client := &mockMQTTClient{}
	newMQTTSinkWithClient(client, "ops", nil).Close()

	client.mu.Lock()
	defer client.mu.Unlock()
	assert.True(t, client.disconnected)
}
