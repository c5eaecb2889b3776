package app

import (
	"time"

	"github.com/bft-labs/headtrack/internal/domain"
)

// Batcher collects frames until a size or time trigger fires.
type Batcher struct {
	batch        *domain.Batch
	maxFrames    int
	maxPending   int
	sendInterval time.Duration
	hardInterval time.Duration
	lastSend     time.Time
	now          func() time.Time
}

// pendingFactor bounds how many batches' worth of frames are kept while the
// sink is failing.
const pendingFactor = 10

// NewBatcher creates a batcher. maxFrames <= 0 disables the size trigger.
func NewBatcher(maxFrames int, sendInterval, hardInterval time.Duration) *Batcher {
	b := &Batcher{
		batch:        domain.NewBatch(),
		maxFrames:    maxFrames,
		maxPending:   maxFrames * pendingFactor,
		sendInterval: sendInterval,
		hardInterval: hardInterval,
		now:          time.Now,
	}
	b.lastSend = b.now()
	return b
}

// Add appends a frame, dropping the oldest ones beyond the pending limit.
// It returns true when the batch is full.
func (b *Batcher) Add(frame domain.Frame) bool {
	b.batch.Add(frame)
	if b.maxPending > 0 && b.batch.Size() > b.maxPending {
		b.batch.DropOldest(b.batch.Size() - b.maxPending)
	}
	return b.Full()
}

// Full reports whether the size trigger has fired.
func (b *Batcher) Full() bool {
	return b.maxFrames > 0 && b.batch.Size() >= b.maxFrames
}

// ShouldSend returns true if the batch should be sent based on time triggers.
func (b *Batcher) ShouldSend() bool {
	if b.batch.Empty() {
		return false
	}
	elapsed := b.now().Sub(b.lastSend)
	return elapsed >= b.sendInterval || elapsed >= b.hardInterval
}

// Batch returns the current batch.
func (b *Batcher) Batch() *domain.Batch {
	return b.batch
}

// Reset clears the batch and updates the last send time.
func (b *Batcher) Reset() {
	b.batch.Reset()
	b.lastSend = b.now()
}

// HasPending returns true if there are frames waiting to be sent.
func (b *Batcher) HasPending() bool {
	return !b.batch.Empty()
}
