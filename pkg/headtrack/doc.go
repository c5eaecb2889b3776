// Package headtrack provides an embeddable head pose streamer.
//
// A Tracker owns one device session on a shared SDK, samples it at a fixed
// rate and delivers batches of calibrated poses to a sink. It can be used
// from the headtrack CLI or embedded in other Go programs.
//
// # Basic Usage
//
//	cfg := headtrack.Config{
//	    Driver:      "sim",
//	    DeviceIndex: 0,
//	    ServiceURL:  "http://collector:8080",
//	}
//
//	t, err := headtrack.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := t.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer t.Stop()
//
// Start fails with an *hmd.InitError when the SDK or the device cannot be
// brought up. Stop flushes pending frames, shuts plugins down and closes
// the session; the SDK itself is shut down when its last session closes.
//
// # Calibration
//
// [Tracker.Calibrate] swaps the calibration of the live session. The
// calibwatcher plugin does this whenever its calibration file changes.
//
// # Lifecycle States
//
// A Tracker is in one of [StateStopped], [StateStarting], [StateRunning],
// [StateStopping] or [StateCrashed]. A crashed tracker can be started again.
package headtrack
