// Package domain holds the entities streamed by the headtrack agent.
//
// It has no dependencies on transports, files or logging.
//
//   - [Frame]: one numbered pose sample from a device
//   - [Batch]: frames waiting to be sent together
//   - [State]: persisted stream progress, so sequence numbers survive restarts
package domain
