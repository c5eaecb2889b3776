package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang/geo/r3"

	"github.com/bft-labs/headtrack/pkg/pose"
)

func testFrame(seq uint64) Frame {
	return Frame{
		Seq:    seq,
		Device: 0,
		Pose: pose.NewSnapshot(
			r3.Vector{X: 0.5, Y: 1.5, Z: -2},
			pose.NewQuaternion(1, 0, 0, 0),
			time.Unix(1700000000, 42).UTC(),
		),
	}
}

func TestFrameMeta_JSON(t *testing.T) {
	b, err := json.Marshal(testFrame(7).ToMeta())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"seq":7,"device":0,"t":1700000000000000042,"position":[0.5,1.5,-2],"orientation":[1,0,0,0]}`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}

	var m FrameMeta
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	got := m.ToFrame()
	if got.Seq != 7 || got.Pose.Position != (r3.Vector{X: 0.5, Y: 1.5, Z: -2}) {
		t.Errorf("ToFrame() = %+v", got)
	}
	if !got.Pose.SampledAt.Equal(time.Unix(1700000000, 42)) {
		t.Errorf("SampledAt = %v", got.Pose.SampledAt)
	}
}

func TestBatch(t *testing.T) {
	b := NewBatch()
	if !b.Empty() || b.LastFrame() != nil {
		t.Fatal("new batch not empty")
	}

	for i := uint64(1); i <= 5; i++ {
		b.Add(testFrame(i))
	}
	if b.Size() != 5 || b.LastFrame().Seq != 5 {
		t.Fatalf("Size() = %d, LastFrame().Seq = %d", b.Size(), b.LastFrame().Seq)
	}

	b.DropOldest(2)
	if b.Size() != 3 || b.Frames[0].Seq != 3 || b.Dropped != 2 {
		t.Errorf("after DropOldest(2): size=%d first=%d dropped=%d", b.Size(), b.Frames[0].Seq, b.Dropped)
	}

	p := b.Payload(1)
	if p.Device != 1 || len(p.Frames) != 3 || p.Dropped != 2 {
		t.Errorf("Payload() = %+v", p)
	}

	b.DropOldest(10)
	if !b.Empty() || b.Dropped != 5 {
		t.Errorf("DropOldest past end: size=%d dropped=%d", b.Size(), b.Dropped)
	}

	b.Reset()
	if !b.Empty() || b.Dropped != 0 {
		t.Error("Reset() did not clear the batch")
	}
}

func TestState_UpdateAfterSend(t *testing.T) {
	var s State
	if !s.IsEmpty() {
		t.Fatal("zero state not empty")
	}

	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	s.UpdateAfterSend(10, 10, at)
	s.UpdateAfterSend(4, 2, at.Add(time.Second))

	if s.LastSeq != 10 {
		t.Errorf("LastSeq = %d, want 10", s.LastSeq)
	}
	if s.FramesSent != 12 {
		t.Errorf("FramesSent = %d, want 12", s.FramesSent)
	}
	if !s.LastSentAt.Equal(at.Add(time.Second)) {
		t.Errorf("LastSentAt = %v", s.LastSentAt)
	}
}
