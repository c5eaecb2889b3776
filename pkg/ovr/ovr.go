package ovr

// Handle is an opaque reference to an open device. The zero Handle means
// "no device".
type Handle uintptr

// Valid reports whether h refers to a device.
func (h Handle) Valid() bool { return h != 0 }

// TrackingCaps is a bit set of tracking capabilities.
type TrackingCaps uint32

// Tracking capability bits, matching the vendor API values.
const (
	CapOrientation      TrackingCaps = 0x0010
	CapMagYawCorrection TrackingCaps = 0x0020
	CapPosition         TrackingCaps = 0x0040
)

// DefaultTrackingCaps is the fixed capability set requested for every session.
const DefaultTrackingCaps = CapOrientation | CapMagYawCorrection | CapPosition

// Has reports whether all bits of want are set.
func (c TrackingCaps) Has(want TrackingCaps) bool { return c&want == want }

// Vector3f is a single-precision 3-vector as reported by the device.
type Vector3f struct {
	X, Y, Z float32
}

// Quatf is a single-precision quaternion as reported by the device.
type Quatf struct {
	X, Y, Z, W float32
}

// Posef is a rigid body placement.
type Posef struct {
	Orientation Quatf
	Position    Vector3f
}

// PoseState is a pose sampled at a point on the SDK clock.
type PoseState struct {
	ThePose       Posef
	TimeInSeconds float64
}

// TrackingState is the result of polling a device.
type TrackingState struct {
	HeadPose   PoseState
	CameraPose Posef
}

// SDK is the native hardware SDK.
//
// Initialize and Shutdown are process-wide and not reference counted; callers
// that share the SDK must pair them through hmd.Manager. Every other method
// may block briefly on driver I/O.
type SDK interface {
	// Initialize brings the SDK up. It returns false on failure; LastError(0)
	// then describes the cause.
	Initialize() bool

	// Shutdown tears the SDK down.
	Shutdown()

	// Detect reports whether at least one device is attached.
	Detect() bool

	// Create opens the device at index. It returns the zero Handle on failure.
	Create(index int) Handle

	// Destroy releases a handle returned by Create.
	Destroy(h Handle)

	// ConfigureTracking enables the requested capabilities on h.
	ConfigureTracking(h Handle, caps TrackingCaps) bool

	// TrackingState polls h. at is an offset in seconds from now; 0 means
	// the most recent sample.
	TrackingState(h Handle, at float64) TrackingState

	// LastError returns the diagnostic for h, or the global diagnostic when h
	// is the zero Handle. It returns "" when there is nothing to report.
	LastError(h Handle) string
}
