package hmd

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang/geo/r3"

	"github.com/bft-labs/headtrack/pkg/log"
	"github.com/bft-labs/headtrack/pkg/ovr"
	"github.com/bft-labs/headtrack/pkg/pose"
)

// Session is an open handle on one tracking device. The zero value is a
// closed session: Frame fails with NoActiveDevice and Close is a no-op.
type Session struct {
	mu          sync.Mutex
	mgr         *Manager
	handle      ovr.Handle
	index       int
	calibration pose.Calibration
	logger      log.Logger
	clock       func() time.Time

	// acquired is true while the session holds a manager reference.
	acquired bool
}

type sessionOptions struct {
	index       int
	calibration pose.Calibration
	logger      log.Logger
	clock       func() time.Time
}

// SessionOption configures Open.
type SessionOption func(*sessionOptions)

// WithDeviceIndex selects the device to open. Defaults to 0.
func WithDeviceIndex(index int) SessionOption {
	return func(o *sessionOptions) {
		o.index = index
	}
}

// WithCalibration sets the calibration applied to every position. Defaults
// to pose.DefaultCalibration.
func WithCalibration(c pose.Calibration) SessionOption {
	return func(o *sessionOptions) {
		o.calibration = c
	}
}

// WithSessionLogger sets the session's logger. Defaults to the manager's.
func WithSessionLogger(logger log.Logger) SessionOption {
	return func(o *sessionOptions) {
		o.logger = log.OrNoop(logger)
	}
}

// WithClock overrides the wall clock stamped on snapshots.
func WithClock(clock func() time.Time) SessionOption {
	return func(o *sessionOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// Open acquires the SDK through mgr and opens a device. Any failure after
// the acquire is unwound through Close, so a failed Open holds no reference
// and no handle.
func Open(mgr *Manager, opts ...SessionOption) (_ *Session, err error) {
	o := sessionOptions{
		calibration: pose.DefaultCalibration(),
		logger:      mgr.logger,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.calibration.Validate(); err != nil {
		return nil, err
	}

	if err := mgr.Acquire(); err != nil {
		return nil, err
	}

	s := &Session{
		mgr:         mgr,
		index:       o.index,
		calibration: o.calibration,
		logger:      o.logger,
		clock:       o.clock,
		acquired:    true,
	}
	defer func() {
		if err != nil {
			_ = s.Close()
		}
	}()

	sdk := mgr.sdk
	if !sdk.Detect() {
		return nil, &InitError{Kind: NoDeviceDetected, DeviceIndex: o.index}
	}

	if o.index < 0 {
		return nil, &InitError{
			Kind:        DeviceCreateFailed,
			DeviceIndex: o.index,
			Reason:      "device index must be non-negative",
		}
	}

	h := sdk.Create(o.index)
	if !h.Valid() {
		return nil, &InitError{Kind: DeviceCreateFailed, DeviceIndex: o.index, Reason: sdk.LastError(0)}
	}
	s.handle = h

	if !sdk.ConfigureTracking(h, ovr.DefaultTrackingCaps) {
		return nil, &InitError{
			Kind:        DeviceCreateFailed,
			DeviceIndex: o.index,
			Reason:      fmt.Sprintf("configure tracking: %s", sdk.LastError(h)),
		}
	}

	s.logger.Info("session opened",
		log.Device(o.index),
		log.String("calibration", o.calibration.String()),
	)
	return s, nil
}

// Close destroys the device handle and releases the SDK reference. Only the
// first call does anything; later calls return nil.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acquired {
		return nil
	}
	s.acquired = false

	if s.handle.Valid() {
		s.mgr.sdk.Destroy(s.handle)
		s.handle = 0
		s.logger.Info("session closed", log.Device(s.index))
	}
	return s.mgr.Release()
}

// Frame samples the device and returns the calibrated pose. Position is
// raw*scale + offset; orientation is reported as read.
func (s *Session) Frame() (pose.Snapshot, error) {
	if s == nil {
		return pose.Snapshot{}, &TrackingError{Kind: NoActiveDevice}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acquired || !s.handle.Valid() {
		return pose.Snapshot{}, &TrackingError{Kind: NoActiveDevice}
	}

	state := s.mgr.sdk.TrackingState(s.handle, 0)
	head := state.HeadPose.ThePose

	raw := r3.Vector{
		X: float64(head.Position.X),
		Y: float64(head.Position.Y),
		Z: float64(head.Position.Z),
	}
	orientation := pose.NewQuaternion(
		float64(head.Orientation.W),
		float64(head.Orientation.X),
		float64(head.Orientation.Y),
		float64(head.Orientation.Z),
	)

	return pose.NewSnapshot(s.calibration.Apply(raw), orientation, s.clock()), nil
}

// SetCalibration replaces the calibration used by subsequent frames.
func (s *Session) SetCalibration(c pose.Calibration) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.calibration = c
	s.mu.Unlock()

	s.logger.Info("calibration updated", log.Device(s.index), log.String("calibration", c.String()))
	return nil
}

// Calibration returns the calibration in effect.
func (s *Session) Calibration() pose.Calibration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calibration
}

// DeviceIndex returns the index the session was opened on.
func (s *Session) DeviceIndex() int {
	return s.index
}

// Active reports whether the session still holds its device.
func (s *Session) Active() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquired && s.handle.Valid()
}
