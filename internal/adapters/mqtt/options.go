package mqtt

import (
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectQuiesce = 500 // milliseconds
	defaultKeepAlive         = 30 * time.Second
	maxQoS                   = 2
)

// Config describes the broker and topic layout.
type Config struct {
	// Broker is the broker URL, e.g. "tcp://localhost:1883".
	Broker   string
	ClientID string
	Username string
	Password string

	// TopicPrefix roots every topic. Frames go to {TopicPrefix}/{device}/poses.
	TopicPrefix string

	QoS      byte
	Retained bool
}

// Validate checks the fields Connect relies on.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("mqtt: broker is required")
	}
	if c.TopicPrefix == "" {
		return fmt.Errorf("mqtt: topic prefix is required")
	}
	if c.QoS > maxQoS {
		return fmt.Errorf("mqtt: qos %d out of range 0-%d", c.QoS, maxQoS)
	}
	return nil
}

// PosesTopic returns the topic frames from device are published on.
func PosesTopic(prefix string, device int) string {
	return fmt.Sprintf("%s/%d/poses", prefix, device)
}

// StatusTopic returns the retained online/offline topic for the agent.
func StatusTopic(prefix string) string {
	return prefix + "/status"
}

func buildClientOptions(cfg Config) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	// The broker announces an unexpected disconnect on our behalf.
	opts.SetWill(StatusTopic(cfg.TopicPrefix), statusPayload(cfg.ClientID, "offline"), 1, true)
	return opts
}

func statusPayload(clientID, status string) string {
	return fmt.Sprintf(`{"status":%q,"client_id":%q,"timestamp":%q}`,
		status, clientID, time.Now().UTC().Format(time.RFC3339))
}
