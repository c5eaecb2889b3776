// Package stream prints pose frames as text lines.
package stream

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/bft-labs/headtrack/internal/domain"
	"github.com/bft-labs/headtrack/internal/ports"
)

// PoseWriter implements ports.PoseSender by writing one line per frame.
type PoseWriter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPoseWriter creates a writer printing to out.
func NewPoseWriter(out io.Writer) *PoseWriter {
	return &PoseWriter{out: out}
}

// Send writes every frame in the batch.
func (w *PoseWriter) Send(ctx context.Context, batch *domain.Batch, metadata ports.SendMetadata) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if batch.Dropped > 0 {
		if _, err := fmt.Fprintf(w.out, "# dropped %d frames\n", batch.Dropped); err != nil {
			return err
		}
	}
	for _, f := range batch.Frames {
		if _, err := fmt.Fprintln(w.out, FormatFrame(f)); err != nil {
			return fmt.Errorf("write frame %d: %w", f.Seq, err)
		}
	}
	return nil
}

// FormatFrame renders a frame as
// "seq=N device=D rotation=(w, x, y, z) position=(x, y, z)".
func FormatFrame(f domain.Frame) string {
	q := f.Pose.OrientationArray()
	p := f.Pose.PositionArray()
	return fmt.Sprintf("seq=%d device=%d rotation=(%.4f, %.4f, %.4f, %.4f) position=(%.4f, %.4f, %.4f)",
		f.Seq, f.Device, q[0], q[1], q[2], q[3], p[0], p[1], p[2])
}
