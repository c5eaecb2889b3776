package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config with TOML-friendly types. Pointer fields
// distinguish an explicit zero from an absent key.
type FileConfig struct {
	Driver          string   `toml:"driver"`
	DeviceIndex     *int     `toml:"device_index"`
	Scale           *float64 `toml:"scale"`
	OffsetX         *float64 `toml:"offset_x"`
	OffsetY         *float64 `toml:"offset_y"`
	OffsetZ         *float64 `toml:"offset_z"`
	CalibrationFile string   `toml:"calibration_file"`

	Sink        string `toml:"sink"`
	ServiceURL  string `toml:"service_url"`
	AuthKey     string `toml:"auth_key"`
	HTTPTimeout string `toml:"http_timeout"`

	MQTT struct {
		Broker      string `toml:"broker"`
		ClientID    string `toml:"client_id"`
		Username    string `toml:"username"`
		Password    string `toml:"password"`
		TopicPrefix string `toml:"topic_prefix"`
		QoS         *int   `toml:"qos"`
	} `toml:"mqtt"`

	Influx struct {
		URL         string `toml:"url"`
		Token       string `toml:"token"`
		Org         string `toml:"org"`
		Bucket      string `toml:"bucket"`
		Measurement string `toml:"measurement"`
	} `toml:"influx"`

	SampleInterval string `toml:"sample_interval"`
	SendInterval   string `toml:"send_interval"`
	HardInterval   string `toml:"hard_interval"`
	MaxBatchFrames int    `toml:"max_batch_frames"`
	StateDir       string `toml:"state_dir"`
	LogLevel       string `toml:"log_level"`
	Once           *bool  `toml:"once"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.headtrack/config.toml, or "" if the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".headtrack", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies file values to cfg, skipping flags in changed.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("driver", fc.Driver, &cfg.Driver)
	if fc.DeviceIndex != nil && *fc.DeviceIndex < 0 {
		return fmt.Errorf("device_index %d must be non-negative", *fc.DeviceIndex)
	}
	s.setIntPtr("device", fc.DeviceIndex, &cfg.DeviceIndex)

	s.setFloatPtr("scale", fc.Scale, &cfg.Scale)
	s.setFloatPtr("offset-x", fc.OffsetX, &cfg.OffsetX)
	s.setFloatPtr("offset-y", fc.OffsetY, &cfg.OffsetY)
	s.setFloatPtr("offset-z", fc.OffsetZ, &cfg.OffsetZ)
	s.setString("calibration-file", fc.CalibrationFile, &cfg.CalibrationFile)

	s.setString("sink", fc.Sink, &cfg.Sink)
	s.setString("service-url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)

	s.setString("mqtt-broker", fc.MQTT.Broker, &cfg.MQTTBroker)
	s.setString("mqtt-client-id", fc.MQTT.ClientID, &cfg.MQTTClientID)
	s.setString("mqtt-username", fc.MQTT.Username, &cfg.MQTTUsername)
	s.setString("mqtt-password", fc.MQTT.Password, &cfg.MQTTPassword)
	s.setString("mqtt-topic-prefix", fc.MQTT.TopicPrefix, &cfg.MQTTTopicPrefix)
	s.setIntPtr("mqtt-qos", fc.MQTT.QoS, &cfg.MQTTQoS)

	s.setString("influx-url", fc.Influx.URL, &cfg.InfluxURL)
	s.setString("influx-token", fc.Influx.Token, &cfg.InfluxToken)
	s.setString("influx-org", fc.Influx.Org, &cfg.InfluxOrg)
	s.setString("influx-bucket", fc.Influx.Bucket, &cfg.InfluxBucket)
	s.setString("influx-measurement", fc.Influx.Measurement, &cfg.InfluxMeasurement)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("sample-interval", fc.SampleInterval, &cfg.SampleInterval); err != nil {
		return err
	}
	if err := s.setDuration("send-interval", fc.SendInterval, &cfg.SendInterval); err != nil {
		return err
	}
	if err := s.setDuration("hard-interval", fc.HardInterval, &cfg.HardInterval); err != nil {
		return err
	}

	s.setInt("max-batch-frames", fc.MaxBatchFrames, &cfg.MaxBatchFrames)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setBool("once", fc.Once, &cfg.Once)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
