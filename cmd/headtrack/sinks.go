package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bft-labs/headtrack/internal/adapters/influx"
	"github.com/bft-labs/headtrack/internal/adapters/mqtt"
	"github.com/bft-labs/headtrack/internal/adapters/stream"
	"github.com/bft-labs/headtrack/internal/cliconfig"
	"github.com/bft-labs/headtrack/pkg/headtrack"
	"github.com/bft-labs/headtrack/pkg/log"
)

// buildSink connects the configured sink. A nil sink selects the tracker's
// built-in HTTP sink. The returned func releases the connection.
func buildSink(ctx context.Context, cfg cliconfig.Config, logger log.Logger) (headtrack.Sink, func(), error) {
	noop := func() {}

	switch cfg.Sink {
	case cliconfig.SinkStdout:
		return stream.NewPoseWriter(os.Stdout), noop, nil

	case cliconfig.SinkHTTP:
		return nil, noop, nil

	case cliconfig.SinkMQTT:
		s, err := mqtt.Connect(mqtt.Config{
			Broker:      cfg.MQTTBroker,
			ClientID:    cfg.MQTTClientID,
			Username:    cfg.MQTTUsername,
			Password:    cfg.MQTTPassword,
			TopicPrefix: cfg.MQTTTopicPrefix,
			QoS:         byte(cfg.MQTTQoS),
		}, logger)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { closeSink(logger, "mqtt", s.Close) }, nil

	case cliconfig.SinkInflux:
		s, err := influx.Connect(ctx, influx.Config{
			URL:         cfg.InfluxURL,
			Token:       cfg.InfluxToken,
			Org:         cfg.InfluxOrg,
			Bucket:      cfg.InfluxBucket,
			Measurement: cfg.InfluxMeasurement,
		}, logger)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { closeSink(logger, "influx", s.Close) }, nil
	}

	return nil, noop, fmt.Errorf("unknown sink %q", cfg.Sink)
}

func closeSink(logger log.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Warn("sink close failed", log.String("sink", name), log.Err(err))
	}
}
