package pose

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// ErrInvalidCalibration is returned by Calibration.Validate.
var ErrInvalidCalibration = errors.New("pose: invalid calibration")

// Calibration maps raw device positions into the caller's space:
// out = raw*Scale + Offset, component-wise. Orientation is never calibrated.
type Calibration struct {
	Scale  float64   `json:"scale"`
	Offset r3.Vector `json:"offset"`
}

// DefaultCalibration is the identity calibration (scale 1, no offset).
func DefaultCalibration() Calibration {
	return Calibration{Scale: 1}
}

// NewCalibration builds a calibration from a scale and offset components.
func NewCalibration(scale, x, y, z float64) Calibration {
	return Calibration{Scale: scale, Offset: r3.Vector{X: x, Y: y, Z: z}}
}

// Apply scales then translates a raw position.
func (c Calibration) Apply(raw r3.Vector) r3.Vector {
	return raw.Mul(c.Scale).Add(c.Offset)
}

// IsIdentity reports whether Apply leaves positions unchanged.
func (c Calibration) IsIdentity() bool {
	return c.Scale == 1 && c.Offset == (r3.Vector{})
}

// Validate rejects non-finite components.
func (c Calibration) Validate() error {
	for name, v := range map[string]float64{
		"scale":    c.Scale,
		"offset.x": c.Offset.X,
		"offset.y": c.Offset.Y,
		"offset.z": c.Offset.Z,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidCalibration, name, v)
		}
	}
	return nil
}

func (c Calibration) String() string {
	return fmt.Sprintf("scale=%g offset=(%g, %g, %g)", c.Scale, c.Offset.X, c.Offset.Y, c.Offset.Z)
}
