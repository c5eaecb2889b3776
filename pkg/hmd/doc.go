// Package hmd manages sessions on a head-mounted tracking device.
//
// A [Manager] owns the process-wide bring-up of the native SDK. Sessions
// acquire it on [Open] and release it on [Session.Close]; the SDK is
// initialized by the first acquire and shut down by the last release, so any
// number of independent sessions can come and go without re-initializing or
// prematurely tearing down shared hardware state.
//
// # Usage
//
//	sdk, _ := ovr.Open("sim")
//	mgr := hmd.NewManager(sdk)
//
//	sess, err := hmd.Open(mgr,
//	    hmd.WithDeviceIndex(0),
//	    hmd.WithCalibration(pose.NewCalibration(2, 1, 0, 0)),
//	)
//	if err != nil {
//	    return err // *hmd.InitError
//	}
//	defer sess.Close()
//
//	snap, err := sess.Frame()
//
// # Errors
//
// Open fails with an [*InitError] whose kind is one of SDKUnavailable,
// NoDeviceDetected or DeviceCreateFailed; Frame fails with a
// [*TrackingError] of kind NoActiveDevice. Both wrap sentinels usable with
// errors.Is. Nothing is retried; open a new session to try again.
//
// # Concurrency
//
// Manager serializes Acquire and Release, including the native
// initialize/shutdown calls. A Session serializes its own Frame, Close and
// SetCalibration, so closing a session while another goroutine samples it
// never touches a destroyed handle.
package hmd
