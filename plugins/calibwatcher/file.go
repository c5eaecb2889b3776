package calibwatcher

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/headtrack/pkg/pose"
)

// calibrationFile is the on-disk form. Absent keys keep the identity value.
type calibrationFile struct {
	Scale   *float64 `toml:"scale"`
	OffsetX float64  `toml:"offset_x"`
	OffsetY float64  `toml:"offset_y"`
	OffsetZ float64  `toml:"offset_z"`
}

// LoadFile parses a calibration file:
//
//	scale = 100.0
//	offset_x = 0.0
//	offset_y = 170.0
//	offset_z = 0.0
//
// A missing scale means 1. Unknown keys and non-finite values are errors.
func LoadFile(path string) (pose.Calibration, error) {
	f, err := os.Open(path)
	if err != nil {
		return pose.Calibration{}, err
	}
	defer f.Close()

	var cf calibrationFile
	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&cf); err != nil {
		return pose.Calibration{}, fmt.Errorf("parse %s: %w", path, err)
	}

	scale := 1.0
	if cf.Scale != nil {
		scale = *cf.Scale
	}
	c := pose.NewCalibration(scale, cf.OffsetX, cf.OffsetY, cf.OffsetZ)
	if err := c.Validate(); err != nil {
		return pose.Calibration{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
