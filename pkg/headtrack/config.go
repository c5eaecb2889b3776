package headtrack

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bft-labs/headtrack/internal/domain"
	"github.com/bft-labs/headtrack/pkg/ovr/sim"
	"github.com/bft-labs/headtrack/pkg/pose"
)

// Default values applied by Config.SetDefaults.
const (
	DefaultDriver         = sim.DriverName
	DefaultServiceURL     = "http://localhost:8080"
	DefaultSampleInterval = 10 * time.Millisecond
	DefaultSendInterval   = time.Second
	DefaultHardInterval   = 5 * time.Second
	DefaultMaxBatchFrames = 100
	DefaultHTTPTimeout    = 10 * time.Second
)

// Config configures a Tracker.
type Config struct {
	// Driver names the registered SDK driver to open. Ignored when WithSDK
	// is used. Default: "sim".
	Driver string

	// DeviceIndex selects the device to sample. Default: 0.
	DeviceIndex int

	// Calibration maps raw positions. The zero value means identity.
	Calibration pose.Calibration

	// StateDir holds status.json. Default: $HOME/.headtrack.
	StateDir string

	// ServiceURL and AuthKey are used by the default HTTP sink and passed
	// to every sink in the send metadata.
	ServiceURL  string
	AuthKey     string
	HTTPTimeout time.Duration

	SampleInterval time.Duration
	SendInterval   time.Duration
	HardInterval   time.Duration
	MaxBatchFrames int

	// Once delivers one full batch, then the run ends.
	Once bool
}

// SetDefaults fills zero-valued fields.
func (c *Config) SetDefaults() {
	if c.Driver == "" {
		c.Driver = DefaultDriver
	}
	if c.Calibration == (pose.Calibration{}) {
		c.Calibration = pose.DefaultCalibration()
	}
	if c.StateDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.StateDir = filepath.Join(home, ".headtrack")
		}
	}
	if c.ServiceURL == "" {
		c.ServiceURL = DefaultServiceURL
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.SampleInterval <= 0 {
		c.SampleInterval = DefaultSampleInterval
	}
	if c.SendInterval <= 0 {
		c.SendInterval = DefaultSendInterval
	}
	if c.HardInterval <= 0 {
		c.HardInterval = DefaultHardInterval
	}
	if c.HardInterval < c.SendInterval {
		c.HardInterval = c.SendInterval
	}
	if c.MaxBatchFrames <= 0 {
		c.MaxBatchFrames = DefaultMaxBatchFrames
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if c.DeviceIndex < 0 {
		return fmt.Errorf("%w: device index must be non-negative, got %d", domain.ErrInvalidConfig, c.DeviceIndex)
	}
	if err := c.Calibration.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	if c.StateDir == "" {
		return fmt.Errorf("%w: state dir is required", domain.ErrInvalidConfig)
	}
	return nil
}
