package headtrack_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/headtrack/internal/domain"
	"github.com/bft-labs/headtrack/internal/ports"
	"github.com/bft-labs/headtrack/pkg/headtrack"
	"github.com/bft-labs/headtrack/pkg/hmd"
	"github.com/bft-labs/headtrack/pkg/ovr"
	"github.com/bft-labs/headtrack/pkg/ovr/sim"
	"github.com/bft-labs/headtrack/pkg/pose"
)

// memSink records every delivered frame.
type memSink struct {
	mu     sync.Mutex
	frames []domain.Frame
	sends  int
}

func (s *memSink) Send(ctx context.Context, batch *domain.Batch, md ports.SendMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, batch.Frames...)
	s.sends++
	return nil
}

func (s *memSink) Frames() []domain.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Frame(nil), s.frames...)
}

// trackingPlugin records initialization and shutdown order.
type trackingPlugin struct {
	name      string
	order     *[]string
	orderMu   *sync.Mutex
	initError error
	cfg       headtrack.PluginConfig
}

func (p *trackingPlugin) Name() string { return p.name }

func (p *trackingPlugin) Initialize(ctx context.Context, cfg headtrack.PluginConfig) error {
	if p.initError != nil {
		return p.initError
	}
	p.cfg = cfg
	p.orderMu.Lock()
	*p.order = append(*p.order, "init:"+p.name)
	p.orderMu.Unlock()
	return nil
}

func (p *trackingPlugin) Shutdown(ctx context.Context) error {
	p.orderMu.Lock()
	*p.order = append(*p.order, "shutdown:"+p.name)
	p.orderMu.Unlock()
	return nil
}

// eventTracker records lifecycle and send events.
type eventTracker struct {
	headtrack.BaseEventHandler
	mu           sync.Mutex
	stateChanges []headtrack.StateChangeEvent
	sendSuccess  []headtrack.SendSuccessEvent
}

func (e *eventTracker) OnStateChange(event headtrack.StateChangeEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stateChanges = append(e.stateChanges, event)
}

func (e *eventTracker) OnSendSuccess(event headtrack.SendSuccessEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sendSuccess = append(e.sendSuccess, event)
}

func testConfig(t *testing.T) headtrack.Config {
	t.Helper()
	return headtrack.Config{
		StateDir:       t.TempDir(),
		SampleInterval: time.Millisecond,
		SendInterval:   20 * time.Millisecond,
		HardInterval:   50 * time.Millisecond,
		MaxBatchFrames: 5,
	}
}

func waitDone(t *testing.T, tr *headtrack.Tracker) {
	t.Helper()
	select {
	case <-tr.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTracker_OnceDeliversOneBatch(t *testing.T) {
	cfg := testConfig(t)
	cfg.Once = true
	sdk := sim.New(sim.DefaultConfig())
	sink := &memSink{}

	tr, err := headtrack.New(cfg, headtrack.WithSDK(sdk), headtrack.WithSink(sink))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tr.Status() != headtrack.StateStopped {
		t.Fatalf("initial Status() = %v, want Stopped", tr.Status())
	}

	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitDone(t, tr)

	if err := tr.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
	frames := sink.Frames()
	if len(frames) != 5 {
		t.Fatalf("got %d frames, want 5", len(frames))
	}
	for i, f := range frames {
		if f.Seq != uint64(i+1) {
			t.Errorf("frame %d seq = %d, want %d", i, f.Seq, i+1)
		}
	}

	if err := tr.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if tr.Status() != headtrack.StateStopped {
		t.Errorf("Status() = %v, want Stopped", tr.Status())
	}
	if sdk.OpenHandles() != 0 || sdk.Initialized() {
		t.Errorf("sdk not released: handles=%d initialized=%v", sdk.OpenHandles(), sdk.Initialized())
	}
	if n := tr.Manager().Sessions(); n != 0 {
		t.Errorf("Sessions() = %d, want 0", n)
	}
}

func TestTracker_SequenceContinuesAcrossRuns(t *testing.T) {
	cfg := testConfig(t)
	cfg.Once = true
	sink := &memSink{}

	for run := 0; run < 2; run++ {
		tr, err := headtrack.New(cfg, headtrack.WithSDK(sim.New(sim.DefaultConfig())), headtrack.WithSink(sink))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if err := tr.Start(context.Background()); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		waitDone(t, tr)
		_ = tr.Stop()
	}

	frames := sink.Frames()
	if len(frames) != 10 {
		t.Fatalf("got %d frames, want 10", len(frames))
	}
	if frames[5].Seq != 6 {
		t.Errorf("second run starts at seq %d, want 6", frames[5].Seq)
	}
}

func TestTracker_StartStopErrors(t *testing.T) {
	tr, err := headtrack.New(testConfig(t),
		headtrack.WithSDK(sim.New(sim.DefaultConfig())),
		headtrack.WithSink(&memSink{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := tr.Stop(); !errors.Is(err, domain.ErrNotRunning) {
		t.Errorf("Stop() before Start error = %v, want ErrNotRunning", err)
	}

	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := tr.Start(context.Background()); !errors.Is(err, domain.ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}
	waitFor(t, func() bool { return tr.Status() == headtrack.StateRunning })
	if err := tr.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if !errors.Is(tr.Err(), context.Canceled) {
		t.Errorf("Err() after Stop = %v, want context.Canceled", tr.Err())
	}
}

func TestTracker_DeviceMissing(t *testing.T) {
	sdk := sim.New(sim.Config{Devices: 0})
	tr, err := headtrack.New(testConfig(t), headtrack.WithSDK(sdk), headtrack.WithSink(&memSink{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = tr.Start(context.Background())
	if !errors.Is(err, hmd.ErrNoDeviceDetected) {
		t.Fatalf("Start() error = %v, want ErrNoDeviceDetected", err)
	}
	if tr.Status() != headtrack.StateCrashed {
		t.Errorf("Status() = %v, want Crashed", tr.Status())
	}
	if tr.Manager().Sessions() != 0 || sdk.Initialized() {
		t.Error("failed Start leaked an SDK reference")
	}

	sdk.SetDevices(1)
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start() after device attached error = %v", err)
	}
	if err := tr.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestTracker_CalibrateLive(t *testing.T) {
	sdk := sim.New(sim.DefaultConfig())
	sdk.HoldPose(0, ovr.Posef{
		Orientation: ovr.Quatf{W: 1},
		Position:    ovr.Vector3f{X: 3, Y: 4, Z: 5},
	})
	sink := &memSink{}

	tr, err := headtrack.New(testConfig(t), headtrack.WithSDK(sdk), headtrack.WithSink(sink))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer tr.Stop()

	if err := tr.Calibrate(pose.NewCalibration(2, 1, 0, 0)); err != nil {
		t.Fatalf("Calibrate() error = %v", err)
	}

	want := [3]float64{7, 8, 10}
	waitFor(t, func() bool {
		for _, f := range sink.Frames() {
			if f.Pose.PositionArray() == want {
				return true
			}
		}
		return false
	})
}

func TestTracker_CalibrateInvalid(t *testing.T) {
	tr, err := headtrack.New(testConfig(t), headtrack.WithSDK(sim.New(sim.DefaultConfig())))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	err = tr.Calibrate(pose.NewCalibration(math.NaN(), 0, 0, 0))
	if !errors.Is(err, pose.ErrInvalidCalibration) {
		t.Errorf("Calibrate(NaN) error = %v, want ErrInvalidCalibration", err)
	}
	if !tr.Calibration().IsIdentity() {
		t.Errorf("Calibration() = %v, want identity after rejected update", tr.Calibration())
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  headtrack.Config
	}{
		{"negative device", headtrack.Config{StateDir: t.TempDir(), DeviceIndex: -1}},
		{"unknown driver", headtrack.Config{StateDir: t.TempDir(), Driver: "nope"}},
		{"nan offset", headtrack.Config{StateDir: t.TempDir(), Calibration: pose.NewCalibration(1, math.Inf(1), 0, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := headtrack.New(tt.cfg); !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("New() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestPlugin_InitializationOrder(t *testing.T) {
	var order []string
	var mu sync.Mutex
	p1 := &trackingPlugin{name: "p1", order: &order, orderMu: &mu}
	p2 := &trackingPlugin{name: "p2", order: &order, orderMu: &mu}

	tr, err := headtrack.New(testConfig(t),
		headtrack.WithSDK(sim.New(sim.DefaultConfig())),
		headtrack.WithSink(&memSink{}),
		headtrack.WithPlugin(p1),
		headtrack.WithPlugin(p2),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if p1.cfg.Calibrator == nil || p1.cfg.Logger == nil {
		t.Error("PluginConfig missing Calibrator or Logger")
	}
	if err := tr.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	want := []string{"init:p1", "init:p2", "shutdown:p2", "shutdown:p1"}
	mu.Lock()
	defer mu.Unlock()
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
}

func TestPlugin_InitializationFailure(t *testing.T) {
	var order []string
	var mu sync.Mutex
	p1 := &trackingPlugin{name: "p1", order: &order, orderMu: &mu}
	p2 := &trackingPlugin{name: "p2", order: &order, orderMu: &mu, initError: errors.New("boom")}
	p3 := &trackingPlugin{name: "p3", order: &order, orderMu: &mu}
	sdk := sim.New(sim.DefaultConfig())

	tr, err := headtrack.New(testConfig(t),
		headtrack.WithSDK(sdk),
		headtrack.WithSink(&memSink{}),
		headtrack.WithPlugin(p1),
		headtrack.WithPlugin(p2),
		headtrack.WithPlugin(p3),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := tr.Start(context.Background()); err == nil {
		t.Fatal("Start() succeeded despite plugin failure")
	}
	if tr.Status() != headtrack.StateCrashed {
		t.Errorf("Status() = %v, want Crashed", tr.Status())
	}
	if sdk.OpenHandles() != 0 || tr.Manager().Sessions() != 0 {
		t.Error("session left open after plugin failure")
	}

	want := []string{"init:p1", "shutdown:p1"}
	mu.Lock()
	defer mu.Unlock()
	if len(order) != len(want) || order[0] != want[0] || order[1] != want[1] {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestTracker_Events(t *testing.T) {
	cfg := testConfig(t)
	cfg.Once = true
	events := &eventTracker{}

	tr, err := headtrack.New(cfg,
		headtrack.WithSDK(sim.New(sim.DefaultConfig())),
		headtrack.WithSink(&memSink{}),
		headtrack.WithEventHandler(events),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitDone(t, tr)
	if err := tr.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	events.mu.Lock()
	defer events.mu.Unlock()

	want := []headtrack.State{
		headtrack.StateStarting,
		headtrack.StateRunning,
		headtrack.StateStopping,
		headtrack.StateStopped,
	}
	if len(events.stateChanges) != len(want) {
		t.Fatalf("got %d state changes, want %d: %v", len(events.stateChanges), len(want), events.stateChanges)
	}
	for i, s := range want {
		if events.stateChanges[i].Current != s {
			t.Errorf("state change %d = %v, want %v", i, events.stateChanges[i].Current, s)
		}
	}
	if len(events.sendSuccess) != 1 {
		t.Fatalf("got %d send events, want 1", len(events.sendSuccess))
	}
	if ev := events.sendSuccess[0]; ev.FrameCount != 5 || ev.LastSeq != 5 {
		t.Errorf("send event = %+v, want 5 frames ending at seq 5", ev)
	}
}
