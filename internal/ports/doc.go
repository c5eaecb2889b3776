// Package ports defines the interfaces that connect the streaming agent to
// devices, sinks and storage.
//
//   - [PoseSource]: produces calibrated pose samples
//   - [PoseSender]: delivers frame batches to a sink
//   - [StateRepository]: persists stream progress
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// The application layer (internal/app) depends only on these interfaces;
// internal/adapters provides the implementations.
package ports
