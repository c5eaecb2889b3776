package ports

import "github.com/bft-labs/headtrack/pkg/pose"

// PoseSource produces pose samples from one device. *hmd.Session
// satisfies it.
type PoseSource interface {
	// Frame returns the latest calibrated sample.
	Frame() (pose.Snapshot, error)

	// DeviceIndex identifies the sampled device.
	DeviceIndex() int
}
