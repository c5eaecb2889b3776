package domain

import (
	"time"

	"github.com/golang/geo/r3"

	"github.com/bft-labs/headtrack/pkg/pose"
)

// Frame is one pose sample numbered within the stream.
type Frame struct {
	// Seq increases by one per sample and continues across restarts.
	Seq uint64

	// Device is the index of the sampled device.
	Device int

	// Pose is the calibrated sample.
	Pose pose.Snapshot
}

// FrameMeta is the wire form of a frame.
type FrameMeta struct {
	Seq         uint64     `json:"seq"`
	Device      int        `json:"device"`
	T           int64      `json:"t"` // unix nanoseconds
	Position    [3]float64 `json:"position"`
	Orientation [4]float64 `json:"orientation"` // w, x, y, z
}

// ToMeta converts a Frame to its wire form.
func (f Frame) ToMeta() FrameMeta {
	return FrameMeta{
		Seq:         f.Seq,
		Device:      f.Device,
		T:           f.Pose.SampledAt.UnixNano(),
		Position:    f.Pose.PositionArray(),
		Orientation: f.Pose.OrientationArray(),
	}
}

// ToFrame converts the wire form back to a Frame.
func (m FrameMeta) ToFrame() Frame {
	return Frame{
		Seq:    m.Seq,
		Device: m.Device,
		Pose: pose.NewSnapshot(
			r3.Vector{X: m.Position[0], Y: m.Position[1], Z: m.Position[2]},
			pose.NewQuaternion(m.Orientation[0], m.Orientation[1], m.Orientation[2], m.Orientation[3]),
			time.Unix(0, m.T).UTC(),
		),
	}
}
