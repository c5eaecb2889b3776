package pose

import (
	"fmt"
	"time"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Quaternion is an orientation with w in Real and x, y, z in Imag, Jmag, Kmag.
type Quaternion = quat.Number

// NewQuaternion builds a quaternion from w, x, y, z.
func NewQuaternion(w, x, y, z float64) Quaternion {
	return Quaternion{Real: w, Imag: x, Jmag: y, Kmag: z}
}

// IdentityQuaternion is the "no rotation" orientation.
func IdentityQuaternion() Quaternion {
	return Quaternion{Real: 1}
}

// QuaternionComponents returns q as [w, x, y, z].
func QuaternionComponents(q Quaternion) [4]float64 {
	return [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag}
}

// Snapshot is the head pose at one instant. It is a plain value: copying it
// is free and it never refers back to the session that produced it.
type Snapshot struct {
	Position    r3.Vector
	Orientation Quaternion
	SampledAt   time.Time
}

// NewSnapshot returns a snapshot of the given position and orientation.
func NewSnapshot(position r3.Vector, orientation Quaternion, at time.Time) Snapshot {
	return Snapshot{Position: position, Orientation: orientation, SampledAt: at}
}

// PositionArray returns the position as [x, y, z].
func (s Snapshot) PositionArray() [3]float64 {
	return [3]float64{s.Position.X, s.Position.Y, s.Position.Z}
}

// OrientationArray returns the orientation as [w, x, y, z].
func (s Snapshot) OrientationArray() [4]float64 {
	return QuaternionComponents(s.Orientation)
}

func (s Snapshot) String() string {
	o := s.OrientationArray()
	return fmt.Sprintf("position=(%.4f, %.4f, %.4f) orientation=(%.4f, %.4f, %.4f, %.4f)",
		s.Position.X, s.Position.Y, s.Position.Z, o[0], o[1], o[2], o[3])
}
