package cliconfig

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/headtrack/pkg/ovr/sim"
	"github.com/bft-labs/headtrack/pkg/pose"
)

// Sink names accepted by Config.Sink.
const (
	SinkStdout = "stdout"
	SinkHTTP   = "http"
	SinkMQTT   = "mqtt"
	SinkInflux = "influx"
)

// DefaultServiceURL is the default ingestion endpoint for the http sink.
const DefaultServiceURL = "http://localhost:8080"

// Config holds CLI configuration for headtrack.
type Config struct {
	Driver      string
	DeviceIndex int

	Scale           float64
	OffsetX         float64
	OffsetY         float64
	OffsetZ         float64
	CalibrationFile string

	Sink string

	ServiceURL  string
	AuthKey     string
	HTTPTimeout time.Duration

	MQTTBroker      string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string
	MQTTQoS         int

	InfluxURL         string
	InfluxToken       string
	InfluxOrg         string
	InfluxBucket      string
	InfluxMeasurement string

	SampleInterval time.Duration
	SendInterval   time.Duration
	HardInterval   time.Duration
	MaxBatchFrames int

	StateDir string
	LogLevel string
	Once     bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Driver:          sim.DriverName,
		DeviceIndex:     0,
		Scale:           1,
		Sink:            SinkStdout,
		ServiceURL:      DefaultServiceURL,
		HTTPTimeout:     10 * time.Second,
		MQTTClientID:    "headtrack",
		MQTTTopicPrefix: "headtrack",
		InfluxOrg:       "headtrack",
		InfluxBucket:    "poses",
		SampleInterval:  10 * time.Millisecond, // ~100Hz
		SendInterval:    time.Second,
		HardInterval:    5 * time.Second,
		MaxBatchFrames:  100,
		LogLevel:        "info",
		AuthKey:         os.Getenv("HEADTRACK_AUTH_KEY"),
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Driver == "" {
		return fmt.Errorf("driver is required")
	}
	if c.DeviceIndex < 0 {
		return fmt.Errorf("device index must be non-negative, got %d", c.DeviceIndex)
	}
	if err := c.Calibration().Validate(); err != nil {
		return err
	}

	switch c.Sink {
	case SinkStdout:
	case SinkHTTP:
		if c.ServiceURL == "" {
			c.ServiceURL = DefaultServiceURL
		}
		c.ServiceURL = strings.TrimRight(c.ServiceURL, "/")
	case SinkMQTT:
		if c.MQTTBroker == "" {
			return fmt.Errorf("mqtt-broker is required for the mqtt sink")
		}
		if c.MQTTQoS < 0 || c.MQTTQoS > 2 {
			return fmt.Errorf("mqtt-qos must be 0, 1 or 2")
		}
	case SinkInflux:
		if c.InfluxURL == "" || c.InfluxOrg == "" || c.InfluxBucket == "" {
			return fmt.Errorf("influx-url, influx-org and influx-bucket are required for the influx sink")
		}
	default:
		return fmt.Errorf("unknown sink %q (want stdout, http, mqtt or influx)", c.Sink)
	}

	if c.SampleInterval <= 0 {
		return fmt.Errorf("sample interval must be positive")
	}
	if c.SendInterval <= 0 {
		return fmt.Errorf("send interval must be positive")
	}
	if c.HardInterval < c.SendInterval {
		c.HardInterval = c.SendInterval
	}
	if c.MaxBatchFrames <= 0 {
		return fmt.Errorf("max batch frames must be positive")
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	if c.StateDir == "" {
		if h, err := os.UserHomeDir(); err == nil {
			c.StateDir = filepath.Join(h, ".headtrack")
		} else {
			c.StateDir = ".headtrack"
		}
	}
	return nil
}

// Calibration returns the configured calibration.
func (c Config) Calibration() pose.Calibration {
	return pose.NewCalibration(c.Scale, c.OffsetX, c.OffsetY, c.OffsetZ)
}

// Level returns the parsed log level, or info if it does not parse.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// ParseDeviceIndex parses a device index. Only plain non-negative decimal
// integers are accepted.
func ParseDeviceIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("device index %q is not an integer", s)
	}
	if i < 0 {
		return 0, fmt.Errorf("device index %d must be non-negative", i)
	}
	return i, nil
}

// configSetter applies values only for flags the user did not set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntPtr sets any present int value, zero included.
func (s *configSetter) setIntPtr(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setFloatPtr sets any present float value, zero and negatives included.
func (s *configSetter) setFloatPtr(flag string, value *float64, dst *float64) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a positive int from an environment string.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setDeviceIndexFromString parses a device index strictly; a malformed or
// negative value is an error, never a silent 0.
func (s *configSetter) setDeviceIndexFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := ParseDeviceIndex(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setFloatFromString parses a finite float from an environment string.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("parse %s: %v is not finite", flag, f)
	}
	*dst = f
	return nil
}

// setBoolFromString accepts "true" or "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
