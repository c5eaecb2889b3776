// Package sim is an in-process simulated head-tracking SDK.
//
// It implements ovr.SDK with deterministic motion, injectable faults and call
// counters, so the session layer can be exercised without hardware. The
// driver registers itself as "sim".
package sim

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/bft-labs/headtrack/pkg/ovr"
)

// DriverName is the registry name of this driver.
const DriverName = "sim"

func init() {
	ovr.Register(DriverName, func() (ovr.SDK, error) {
		return New(DefaultConfig()), nil
	})
}

// MotionFunc returns the head pose of device index at t seconds on the SDK clock.
type MotionFunc func(index int, t float64) ovr.Posef

// Config controls the simulated hardware.
type Config struct {
	// Devices is the number of attached devices.
	Devices int

	// InitError makes Initialize fail with this diagnostic when non-empty.
	InitError string

	// CreateError makes every Create fail with this diagnostic when non-empty.
	CreateError string

	// ConfigureError makes ConfigureTracking fail with this diagnostic when non-empty.
	ConfigureError string

	// Motion generates poses. Defaults to Sway.
	Motion MotionFunc

	// Clock is the time source. Defaults to time.Now.
	Clock func() time.Time
}

// DefaultConfig returns one attached device swaying gently.
func DefaultConfig() Config {
	return Config{Devices: 1}
}

// Stats counts native calls. Double and unbalanced counters flag misuse that
// a real SDK would not report.
type Stats struct {
	Initializes         int
	DoubleInitializes   int
	Shutdowns           int
	UnbalancedShutdowns int
	Creates             int
	Destroys            int
	StaleDestroys       int
	Polls               int
}

// SDK is the simulated driver. It is safe for concurrent use.
type SDK struct {
	mu sync.Mutex

	cfg         Config
	start       time.Time
	initialized bool
	next        ovr.Handle
	handles     map[ovr.Handle]*device
	claimed     map[int]ovr.Handle
	fixed       map[int]ovr.Posef
	lastErr     map[ovr.Handle]string
	stats       Stats
}

type device struct {
	index int
	caps  ovr.TrackingCaps
}

// New creates a simulated SDK.
func New(cfg Config) *SDK {
	if cfg.Motion == nil {
		cfg.Motion = Sway
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &SDK{
		cfg:     cfg,
		start:   cfg.Clock(),
		handles: make(map[ovr.Handle]*device),
		claimed: make(map[int]ovr.Handle),
		fixed:   make(map[int]ovr.Posef),
		lastErr: make(map[ovr.Handle]string),
	}
}

// Initialize implements ovr.SDK.
func (s *SDK) Initialize() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Initializes++
	if s.cfg.InitError != "" {
		s.lastErr[0] = s.cfg.InitError
		return false
	}
	if s.initialized {
		s.stats.DoubleInitializes++
	}
	s.initialized = true
	delete(s.lastErr, 0)
	return true
}

// Shutdown implements ovr.SDK. Outstanding handles become invalid.
func (s *SDK) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Shutdowns++
	if !s.initialized {
		s.stats.UnbalancedShutdowns++
	}
	s.initialized = false
	s.handles = make(map[ovr.Handle]*device)
	s.claimed = make(map[int]ovr.Handle)
}

// Detect implements ovr.SDK.
func (s *SDK) Detect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		s.lastErr[0] = "sdk not initialized"
		return false
	}
	return s.cfg.Devices > 0
}

// Create implements ovr.SDK. Each index can be claimed by one handle at a time.
func (s *SDK) Create(index int) ovr.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case !s.initialized:
		s.lastErr[0] = "sdk not initialized"
		return 0
	case s.cfg.CreateError != "":
		s.lastErr[0] = s.cfg.CreateError
		return 0
	case index < 0 || index >= s.cfg.Devices:
		s.lastErr[0] = fmt.Sprintf("device index %d out of range (%d attached)", index, s.cfg.Devices)
		return 0
	}
	if _, busy := s.claimed[index]; busy {
		s.lastErr[0] = fmt.Sprintf("device %d already in use", index)
		return 0
	}

	s.next++
	h := s.next
	s.handles[h] = &device{index: index}
	s.claimed[index] = h
	s.stats.Creates++
	return h
}

// Destroy implements ovr.SDK.
func (s *SDK) Destroy(h ovr.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.handles[h]
	if !ok {
		s.stats.StaleDestroys++
		return
	}
	delete(s.handles, h)
	delete(s.claimed, d.index)
	delete(s.lastErr, h)
	s.stats.Destroys++
}

// ConfigureTracking implements ovr.SDK.
func (s *SDK) ConfigureTracking(h ovr.Handle, caps ovr.TrackingCaps) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.handles[h]
	if !ok {
		s.lastErr[h] = "invalid device handle"
		return false
	}
	if s.cfg.ConfigureError != "" {
		s.lastErr[h] = s.cfg.ConfigureError
		return false
	}
	d.caps = caps
	return true
}

// TrackingState implements ovr.SDK. Capabilities that were not configured
// report zero values.
func (s *SDK) TrackingState(h ovr.Handle, at float64) ovr.TrackingState {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.handles[h]
	if !ok {
		s.lastErr[h] = "invalid device handle"
		return ovr.TrackingState{}
	}
	s.stats.Polls++

	t := s.cfg.Clock().Sub(s.start).Seconds() + at
	p, fixed := s.fixed[d.index]
	if !fixed {
		p = s.cfg.Motion(d.index, t)
	}
	if !d.caps.Has(ovr.CapPosition) {
		p.Position = ovr.Vector3f{}
	}
	if !d.caps.Has(ovr.CapOrientation) {
		p.Orientation = ovr.Quatf{W: 1}
	}

	return ovr.TrackingState{
		HeadPose:   ovr.PoseState{ThePose: p, TimeInSeconds: t},
		CameraPose: ovr.Posef{Orientation: ovr.Quatf{W: 1}, Position: ovr.Vector3f{Z: 1.5}},
	}
}

// LastError implements ovr.SDK.
func (s *SDK) LastError(h ovr.Handle) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr[h]
}

// SetDevices changes the number of attached devices.
func (s *SDK) SetDevices(n int) {
	s.mu.Lock()
	s.cfg.Devices = n
	s.mu.Unlock()
}

// SetInitError changes the Initialize fault. "" clears it.
func (s *SDK) SetInitError(msg string) {
	s.mu.Lock()
	s.cfg.InitError = msg
	s.mu.Unlock()
}

// SetCreateError changes the Create fault. "" clears it.
func (s *SDK) SetCreateError(msg string) {
	s.mu.Lock()
	s.cfg.CreateError = msg
	s.mu.Unlock()
}

// SetConfigureError changes the ConfigureTracking fault. "" clears it.
func (s *SDK) SetConfigureError(msg string) {
	s.mu.Lock()
	s.cfg.ConfigureError = msg
	s.mu.Unlock()
}

// HoldPose pins the pose reported for device index.
func (s *SDK) HoldPose(index int, p ovr.Posef) {
	s.mu.Lock()
	s.fixed[index] = p
	s.mu.Unlock()
}

// Initialized reports whether the SDK is up.
func (s *SDK) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// OpenHandles returns the number of live handles.
func (s *SDK) OpenHandles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Stats returns a copy of the call counters.
func (s *SDK) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Sway is a slow seated head motion: small lateral drift around eye height
// with a yaw oscillation.
func Sway(index int, t float64) ovr.Posef {
	yaw := 0.3 * math.Sin(0.5*t)
	return ovr.Posef{
		Position: ovr.Vector3f{
			X: float32(0.05 * math.Sin(t)),
			Y: float32(1.6 + 0.01*math.Sin(2*t)),
			Z: float32(0.03 * math.Cos(t)),
		},
		Orientation: ovr.Quatf{
			W: float32(math.Cos(yaw / 2)),
			Y: float32(math.Sin(yaw / 2)),
		},
	}
}
