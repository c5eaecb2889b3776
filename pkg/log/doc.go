// Package log provides the logging port used by headtrack components.
//
// Components depend on the Logger interface only. Two implementations are
// provided: a zerolog adapter for console output and a no-op logger that is
// the default for every library entry point.
//
// # Usage
//
//	logger := log.NewZerologAdapter()
//	mgr := hmd.NewManager(sdk, hmd.WithLogger(logger.With(log.String("component", "hmd"))))
//
// Field constructors mirror the value types zerolog encodes natively;
// anything else falls back to reflection through Any.
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.0.0
package log
