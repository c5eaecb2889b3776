package calibwatcher

import "github.com/bft-labs/headtrack/pkg/headtrack"

// WithCalibrationWatcher returns a headtrack Option that reloads the
// calibration whenever the file changes.
//
// Usage:
//
//	t, err := headtrack.New(cfg,
//	    calibwatcher.WithCalibrationWatcher(calibwatcher.DefaultConfig("/etc/headtrack/calibration.toml")),
//	)
func WithCalibrationWatcher(cfg Config) headtrack.Option {
	return headtrack.WithPlugin(New(cfg))
}
