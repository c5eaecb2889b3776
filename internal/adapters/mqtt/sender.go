package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/bft-labs/headtrack/internal/domain"
	"github.com/bft-labs/headtrack/internal/ports"
	"github.com/bft-labs/headtrack/pkg/log"
)

// ErrConnectionFailed is returned when the broker cannot be reached.
var ErrConnectionFailed = errors.New("mqtt: connection failed")

// ErrPublishFailed wraps publish errors and timeouts.
var ErrPublishFailed = errors.New("mqtt: publish failed")

// publisher is the subset of pahomqtt.Client the sender uses.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Disconnect(quiesce uint)
	IsConnected() bool
}

// PoseSender implements ports.PoseSender by publishing JSON batches.
type PoseSender struct {
	client publisher
	cfg    Config
	logger log.Logger
}

// Connect dials the broker and announces the agent online.
func Connect(cfg Config, logger log.Logger) (*PoseSender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := buildClientOptions(cfg)
	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	s := newPoseSender(client, cfg, logger)
	s.publishStatus("online")
	return s, nil
}

func newPoseSender(client publisher, cfg Config, logger log.Logger) *PoseSender {
	return &PoseSender{client: client, cfg: cfg, logger: log.OrNoop(logger)}
}

// Send publishes the batch to {TopicPrefix}/{device}/poses.
func (s *PoseSender) Send(ctx context.Context, batch *domain.Batch, metadata ports.SendMetadata) error {
	if batch.Empty() {
		return nil
	}
	if !s.client.IsConnected() {
		return fmt.Errorf("%w: not connected", ErrPublishFailed)
	}

	payload, err := json.Marshal(batch.Payload(metadata.Device))
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	topic := PosesTopic(s.cfg.TopicPrefix, metadata.Device)
	if err := s.wait(ctx, s.client.Publish(topic, s.cfg.QoS, s.cfg.Retained, payload)); err != nil {
		return err
	}

	s.logger.Debug("poses published", log.String("topic", topic), log.Int("frames", batch.Size()))
	return nil
}

func (s *PoseSender) wait(ctx context.Context, token pahomqtt.Token) error {
	ctx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()

	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrPublishFailed, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

func (s *PoseSender) publishStatus(status string) {
	token := s.client.Publish(StatusTopic(s.cfg.TopicPrefix), 1, true, statusPayload(s.cfg.ClientID, status))
	if !token.WaitTimeout(defaultPublishTimeout) || token.Error() != nil {
		s.logger.Warn("status publish failed", log.String("status", status), log.Err(token.Error()))
	}
}

// Close announces the agent offline and disconnects.
func (s *PoseSender) Close() error {
	if s.client.IsConnected() {
		s.publishStatus("offline")
	}
	s.client.Disconnect(defaultDisconnectQuiesce)
	return nil
}
