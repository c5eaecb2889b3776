package headtrack

import (
	"time"

	"github.com/bft-labs/headtrack/internal/app"
)

// EventHandler receives tracker notifications. Methods are called
// synchronously from the streaming goroutine and must return quickly.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
	OnSendSuccess(SendSuccessEvent)
	OnSendError(SendErrorEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only the events you care about.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnSendSuccess(SendSuccessEvent) {}
func (BaseEventHandler) OnSendError(SendErrorEvent)     {}

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// SendSuccessEvent describes a delivered batch.
type SendSuccessEvent struct {
	FrameCount int
	LastSeq    uint64
	Duration   time.Duration
}

// SendErrorEvent describes a failed delivery. Retryable is false for the
// final flush on shutdown.
type SendErrorEvent struct {
	Error      error
	FrameCount int
	Retryable  bool
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnSendSuccess(frameCount int, lastSeq uint64, duration time.Duration) {
	if e.handler == nil {
		return
	}
	e.handler.OnSendSuccess(SendSuccessEvent{
		FrameCount: frameCount,
		LastSeq:    lastSeq,
		Duration:   duration,
	})
}

func (e *eventEmitterWrapper) OnSendError(err error, frameCount int, retryable bool) {
	if e.handler == nil {
		return
	}
	e.handler.OnSendError(SendErrorEvent{
		Error:      err,
		FrameCount: frameCount,
		Retryable:  retryable,
	})
}
