package cliconfig

import (
	"os"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HEADTRACK_"

// ApplyEnvConfig applies HEADTRACK_* environment variables to cfg, skipping
// flags in changed. Malformed numbers and durations are errors.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)
	env := func(name string) string { return os.Getenv(EnvPrefix + name) }

	s.setString("driver", env("DRIVER"), &cfg.Driver)
	if err := s.setDeviceIndexFromString("device", env("DEVICE_INDEX"), &cfg.DeviceIndex); err != nil {
		return err
	}

	for _, f := range []struct {
		flag, name string
		dst        *float64
	}{
		{"scale", "SCALE", &cfg.Scale},
		{"offset-x", "OFFSET_X", &cfg.OffsetX},
		{"offset-y", "OFFSET_Y", &cfg.OffsetY},
		{"offset-z", "OFFSET_Z", &cfg.OffsetZ},
	} {
		if err := s.setFloatFromString(f.flag, env(f.name), f.dst); err != nil {
			return err
		}
	}
	s.setString("calibration-file", env("CALIBRATION_FILE"), &cfg.CalibrationFile)

	s.setString("sink", env("SINK"), &cfg.Sink)
	s.setString("service-url", env("SERVICE_URL"), &cfg.ServiceURL)
	s.setString("auth-key", env("AUTH_KEY"), &cfg.AuthKey)

	s.setString("mqtt-broker", env("MQTT_BROKER"), &cfg.MQTTBroker)
	s.setString("mqtt-client-id", env("MQTT_CLIENT_ID"), &cfg.MQTTClientID)
	s.setString("mqtt-username", env("MQTT_USERNAME"), &cfg.MQTTUsername)
	s.setString("mqtt-password", env("MQTT_PASSWORD"), &cfg.MQTTPassword)
	s.setString("mqtt-topic-prefix", env("MQTT_TOPIC_PREFIX"), &cfg.MQTTTopicPrefix)

	s.setString("influx-url", env("INFLUX_URL"), &cfg.InfluxURL)
	s.setString("influx-token", env("INFLUX_TOKEN"), &cfg.InfluxToken)
	s.setString("influx-org", env("INFLUX_ORG"), &cfg.InfluxOrg)
	s.setString("influx-bucket", env("INFLUX_BUCKET"), &cfg.InfluxBucket)
	s.setString("influx-measurement", env("INFLUX_MEASUREMENT"), &cfg.InfluxMeasurement)

	for _, d := range []struct {
		flag, name string
		dst        *time.Duration
	}{
		{"timeout", "HTTP_TIMEOUT", &cfg.HTTPTimeout},
		{"sample-interval", "SAMPLE_INTERVAL", &cfg.SampleInterval},
		{"send-interval", "SEND_INTERVAL", &cfg.SendInterval},
		{"hard-interval", "HARD_INTERVAL", &cfg.HardInterval},
	} {
		if err := s.setDuration(d.flag, env(d.name), d.dst); err != nil {
			return err
		}
	}

	if err := s.setIntFromString("max-batch-frames", env("MAX_BATCH_FRAMES"), &cfg.MaxBatchFrames); err != nil {
		return err
	}
	s.setString("state-dir", env("STATE_DIR"), &cfg.StateDir)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)
	s.setBoolFromString("once", env("ONCE"), &cfg.Once)

	return nil
}
