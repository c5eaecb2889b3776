package hmd

import (
	"errors"
	"fmt"
)

// Sentinels wrapped by InitError and TrackingError. Match with errors.Is.
var (
	ErrSDKUnavailable     = errors.New("hmd: sdk unavailable")
	ErrNoDeviceDetected   = errors.New("hmd: no device detected")
	ErrDeviceCreateFailed = errors.New("hmd: device create failed")
	ErrNoActiveDevice     = errors.New("hmd: no active device")
)

// ErrUnbalancedRelease is returned by Manager.Release when no acquire is
// outstanding. It always indicates a caller bug.
var ErrUnbalancedRelease = errors.New("hmd: release without matching acquire")

// driverHint is appended to SDK bring-up failures.
const driverHint = "hint: is the device driver service running?"

// InitErrorKind classifies session open failures.
type InitErrorKind int

const (
	SDKUnavailable InitErrorKind = iota + 1
	NoDeviceDetected
	DeviceCreateFailed
)

func (k InitErrorKind) String() string {
	switch k {
	case SDKUnavailable:
		return "SDKUnavailable"
	case NoDeviceDetected:
		return "NoDeviceDetected"
	case DeviceCreateFailed:
		return "DeviceCreateFailed"
	default:
		return "Unknown"
	}
}

// InitError is returned by Open. Reason carries the native diagnostic
// verbatim and may be empty.
type InitError struct {
	Kind        InitErrorKind
	DeviceIndex int
	Reason      string
}

func (e *InitError) Error() string {
	switch e.Kind {
	case SDKUnavailable:
		return fmt.Sprintf("cannot initialize sdk%s (%s)", quoteReason(e.Reason), driverHint)
	case NoDeviceDetected:
		return "cannot initialize device: no device found" + quoteReason(e.Reason)
	case DeviceCreateFailed:
		return fmt.Sprintf("cannot initialize device %d%s", e.DeviceIndex, quoteReason(e.Reason))
	default:
		return "cannot initialize device" + quoteReason(e.Reason)
	}
}

// Unwrap returns the sentinel for e.Kind.
func (e *InitError) Unwrap() error {
	switch e.Kind {
	case SDKUnavailable:
		return ErrSDKUnavailable
	case NoDeviceDetected:
		return ErrNoDeviceDetected
	case DeviceCreateFailed:
		return ErrDeviceCreateFailed
	default:
		return nil
	}
}

// TrackingErrorKind classifies frame failures.
type TrackingErrorKind int

const (
	NoActiveDevice TrackingErrorKind = iota + 1
)

func (k TrackingErrorKind) String() string {
	if k == NoActiveDevice {
		return "NoActiveDevice"
	}
	return "Unknown"
}

// TrackingError is returned by Session.Frame.
type TrackingError struct {
	Kind   TrackingErrorKind
	Reason string
}

func (e *TrackingError) Error() string {
	if e.Kind == NoActiveDevice {
		return "cannot read frame: no active device" + quoteReason(e.Reason)
	}
	return "cannot read frame" + quoteReason(e.Reason)
}

// Unwrap returns the sentinel for e.Kind.
func (e *TrackingError) Unwrap() error {
	if e.Kind == NoActiveDevice {
		return ErrNoActiveDevice
	}
	return nil
}

func quoteReason(reason string) string {
	if reason == "" {
		return ""
	}
	return ": '" + reason + "'"
}
