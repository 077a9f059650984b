package common

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mayday/coordinator/internal/config"
	"mayday/coordinator/internal/logging"
	"mayday/coordinator/internal/metrics"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// MQTTSink publishes notifications to <prefix>/<type> topics, e.g.
// mayday/volunteer/created.
type MQTTSink struct {
	client  mqtt.Client
	prefix  string
	timeout time.Duration
	metrics *metrics.MetricsRegistry
}

var _ NotificationSink = (*MQTTSink)(nil)

func NewMQTTSink(cfg config.MQTTConfig, m *metrics.MetricsRegistry) (*MQTTSink, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "mayday-" + uuid.NewString()
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("timed out connecting to MQTT broker %s", cfg.Broker)
	}
	if token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return newMQTTSinkWithClient(client, cfg.TopicPrefix, m), nil
}

func newMQTTSinkWithClient(client mqtt.Client, prefix string, m *metrics.MetricsRegistry) *MQTTSink {
	return &MQTTSink{
		client:  client,
		prefix:  strings.TrimSuffix(prefix, "/"),
		timeout: 2 * time.Second,
		metrics: m,
	}
}

// Topic maps a notification type onto the sink's topic tree.
func (s *MQTTSink) Topic(n Notification) string {
	return s.prefix + "/" + strings.ReplaceAll(string(n.Type), ".", "/")
}

// Publish sends with QoS 0 and waits for the token off the caller's goroutine.
func (s *MQTTSink) Publish(_ context.Context, n Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		logging.Warn("Failed to marshal MQTT notification", "type", n.Type, "error", err.Error())
		return
	}

	token := s.client.Publish(s.Topic(n), 0, false, payload)
	go func() {
		if !token.WaitTimeout(s.timeout) || token.Error() != nil {
			s.metrics.RecordNotification("mqtt", "failed")
			logging.Warn("MQTT publish did not complete", "type", n.Type, "error", fmt.Sprint(token.Error()))
			return
		}
		s.metrics.RecordNotification("mqtt", "delivered")
	}()
}

func (s *MQTTSink) Close() {
	s.client.Disconnect(250)
}
