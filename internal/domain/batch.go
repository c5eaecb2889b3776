package domain

// Batch is an ordered run of frames sent together.
type Batch struct {
	Frames []Frame

	// Dropped counts frames discarded because the batch hit its pending limit.
	Dropped int
}

// NewBatch creates a new empty batch.
func NewBatch() *Batch {
	return &Batch{Frames: make([]Frame, 0)}
}

// Add appends a frame.
func (b *Batch) Add(frame Frame) {
	b.Frames = append(b.Frames, frame)
}

// DropOldest discards the oldest n frames.
func (b *Batch) DropOldest(n int) {
	if n <= 0 {
		return
	}
	if n > len(b.Frames) {
		n = len(b.Frames)
	}
	b.Frames = append(b.Frames[:0], b.Frames[n:]...)
	b.Dropped += n
}

// Size returns the number of frames in the batch.
func (b *Batch) Size() int {
	return len(b.Frames)
}

// Empty returns true if the batch has no frames.
func (b *Batch) Empty() bool {
	return len(b.Frames) == 0
}

// Reset clears the batch for reuse.
func (b *Batch) Reset() {
	b.Frames = b.Frames[:0]
	b.Dropped = 0
}

// LastFrame returns the last frame in the batch, or nil if empty.
func (b *Batch) LastFrame() *Frame {
	if len(b.Frames) == 0 {
		return nil
	}
	return &b.Frames[len(b.Frames)-1]
}

// Metas returns the wire form of every frame.
func (b *Batch) Metas() []FrameMeta {
	metas := make([]FrameMeta, len(b.Frames))
	for i, f := range b.Frames {
		metas[i] = f.ToMeta()
	}
	return metas
}

// Payload is the JSON body published by the network sinks.
type Payload struct {
	Device  int         `json:"device"`
	Dropped int         `json:"dropped,omitempty"`
	Frames  []FrameMeta `json:"frames"`
}

// Payload returns the wire form of the batch for device.
func (b *Batch) Payload(device int) Payload {
	return Payload{Device: device, Dropped: b.Dropped, Frames: b.Metas()}
}
