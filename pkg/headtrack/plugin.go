package headtrack

import (
	"context"

	"github.com/bft-labs/headtrack/pkg/log"
	"github.com/bft-labs/headtrack/pkg/pose"
)

// Plugin extends a Tracker. Plugins are initialized by Start in
// registration order and shut down in reverse order.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// Calibrator changes the calibration of a running tracker.
type Calibrator interface {
	Calibrate(c pose.Calibration) error
	Calibration() pose.Calibration
}

// PluginConfig is handed to Plugin.Initialize.
type PluginConfig struct {
	Driver      string
	DeviceIndex int
	StateDir    string
	Logger      log.Logger
	Calibrator  Calibrator
}
