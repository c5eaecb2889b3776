package pose

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/golang/geo/r3"
)

func TestCalibration_Apply(t *testing.T) {
	tests := []struct {
		name string
		cal  Calibration
		raw  r3.Vector
		want r3.Vector
	}{
		{"identity", DefaultCalibration(), r3.Vector{X: 3, Y: 4, Z: 5}, r3.Vector{X: 3, Y: 4, Z: 5}},
		{"scale then offset", NewCalibration(2, 1, 0, 0), r3.Vector{X: 3, Y: 4, Z: 5}, r3.Vector{X: 7, Y: 8, Z: 10}},
		{"offset only", NewCalibration(1, -1, -2, -3), r3.Vector{X: 1, Y: 2, Z: 3}, r3.Vector{}},
		{"zero scale collapses to offset", NewCalibration(0, 5, 5, 5), r3.Vector{X: 9, Y: 9, Z: 9}, r3.Vector{X: 5, Y: 5, Z: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cal.Apply(tt.raw); got != tt.want {
				t.Errorf("Apply(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCalibration_IsIdentity(t *testing.T) {
	if !DefaultCalibration().IsIdentity() {
		t.Error("DefaultCalibration should be identity")
	}
	if NewCalibration(1, 0, 0.5, 0).IsIdentity() {
		t.Error("non-zero offset should not be identity")
	}
	if (Calibration{}).IsIdentity() {
		t.Error("zero-value calibration has scale 0 and is not identity")
	}
}

func TestCalibration_Validate(t *testing.T) {
	if err := NewCalibration(2, 1, 0, 0).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	for _, c := range []Calibration{
		NewCalibration(math.NaN(), 0, 0, 0),
		NewCalibration(1, math.Inf(1), 0, 0),
		NewCalibration(1, 0, 0, math.Inf(-1)),
	} {
		if err := c.Validate(); !errors.Is(err, ErrInvalidCalibration) {
			t.Errorf("Validate(%v) = %v, want ErrInvalidCalibration", c, err)
		}
	}
}

func TestSnapshot_Arrays(t *testing.T) {
	at := time.Unix(10, 0)
	s := NewSnapshot(r3.Vector{X: 1, Y: 2, Z: 3}, NewQuaternion(0.5, 0.1, 0.2, 0.3), at)

	if got := s.PositionArray(); got != [3]float64{1, 2, 3} {
		t.Errorf("PositionArray() = %v", got)
	}
	if got := s.OrientationArray(); got != [4]float64{0.5, 0.1, 0.2, 0.3} {
		t.Errorf("OrientationArray() = %v, want w,x,y,z order", got)
	}
	if !s.SampledAt.Equal(at) {
		t.Errorf("SampledAt = %v, want %v", s.SampledAt, at)
	}
}

func TestSnapshot_IsValue(t *testing.T) {
	a := NewSnapshot(r3.Vector{X: 1}, IdentityQuaternion(), time.Time{})
	b := a
	b.Position.X = 99

	if a.Position.X != 1 {
		t.Error("copying a snapshot must not alias the original")
	}
}
