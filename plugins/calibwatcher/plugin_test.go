package calibwatcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/headtrack/pkg/headtrack"
	"github.com/bft-labs/headtrack/pkg/log"
	"github.com/bft-labs/headtrack/pkg/pose"
)

// fakeCalibrator records every calibration it is handed.
type fakeCalibrator struct {
	mu      sync.Mutex
	applied []pose.Calibration
	err     error
}

func (f *fakeCalibrator) Calibrate(c pose.Calibration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.applied = append(f.applied, c)
	return nil
}

func (f *fakeCalibrator) Calibration() pose.Calibration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.applied) == 0 {
		return pose.DefaultCalibration()
	}
	return f.applied[len(f.applied)-1]
}

func (f *fakeCalibrator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.applied)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func startPlugin(t *testing.T, path string, cal headtrack.Calibrator) *Plugin {
	t.Helper()
	p := New(Config{Path: path, DebounceDelay: 10 * time.Millisecond})
	err := p.Initialize(context.Background(), headtrack.PluginConfig{
		Logger:     log.NewNoopLogger(),
		Calibrator: cal,
	})
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	return p
}

func waitCalibration(t *testing.T, cal *fakeCalibrator, want pose.Calibration) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for cal.Calibration() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Calibration() = %v, want %v", cal.Calibration(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPlugin_AppliesInitialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.toml")
	writeFile(t, path, "scale = 2.0\noffset_x = 1.0\n")
	cal := &fakeCalibrator{}

	startPlugin(t, path, cal)

	if got, want := cal.Calibration(), pose.NewCalibration(2, 1, 0, 0); got != want {
		t.Errorf("Calibration() = %v, want %v", got, want)
	}
}

func TestPlugin_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.toml")
	writeFile(t, path, "scale = 1.0\n")
	cal := &fakeCalibrator{}
	startPlugin(t, path, cal)

	writeFile(t, path, "scale = 100.0\noffset_y = 170.0\n")

	waitCalibration(t, cal, pose.NewCalibration(100, 0, 170, 0))
}

func TestPlugin_MissingFileThenCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.toml")
	cal := &fakeCalibrator{}
	startPlugin(t, path, cal)

	if cal.count() != 0 {
		t.Fatalf("applied %d calibrations for a missing file", cal.count())
	}

	writeFile(t, path, "offset_z = -0.5\n")
	waitCalibration(t, cal, pose.NewCalibration(1, 0, 0, -0.5))
}

func TestPlugin_InvalidRevisionKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.toml")
	writeFile(t, path, "scale = 3.0\n")
	cal := &fakeCalibrator{}
	startPlugin(t, path, cal)

	writeFile(t, path, "scale = nan\n")
	time.Sleep(100 * time.Millisecond)
	if got := cal.Calibration(); got != pose.NewCalibration(3, 0, 0, 0) {
		t.Errorf("Calibration() = %v after invalid revision, want scale 3", got)
	}

	writeFile(t, path, "scale = 4.0\n")
	waitCalibration(t, cal, pose.NewCalibration(4, 0, 0, 0))
}

func TestPlugin_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calibration.toml")
	writeFile(t, path, "scale = 1.0\n")
	cal := &fakeCalibrator{}
	startPlugin(t, path, cal)

	writeFile(t, filepath.Join(dir, "other.toml"), "scale = 9.0\n")
	time.Sleep(100 * time.Millisecond)

	if n := cal.count(); n != 1 {
		t.Errorf("applied %d calibrations, want only the initial one", n)
	}
}

func TestPlugin_Disabled(t *testing.T) {
	p := New(Config{})
	if err := p.Initialize(context.Background(), headtrack.PluginConfig{Calibrator: &fakeCalibrator{}}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestPlugin_CalibratorError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.toml")
	writeFile(t, path, "scale = 2.0\n")
	cal := &fakeCalibrator{err: errors.New("refused")}

	startPlugin(t, path, cal)

	if cal.count() != 0 {
		t.Errorf("applied %d calibrations, want 0", cal.count())
	}
}

func TestPlugin_Name(t *testing.T) {
	if got := New(DefaultConfig("x")).Name(); got != "calibwatcher" {
		t.Errorf("Name() = %q", got)
	}
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    pose.Calibration
		wantErr string
	}{
		{name: "empty is identity", content: "", want: pose.DefaultCalibration()},
		{name: "all fields", content: "scale = 0.5\noffset_x = 1\noffset_y = 2\noffset_z = 3\n", want: pose.NewCalibration(0.5, 1, 2, 3)},
		{name: "explicit zero scale", content: "scale = 0.0\n", want: pose.NewCalibration(0, 0, 0, 0)},
		{name: "unknown key", content: "scal = 2.0\n", wantErr: "parse"},
		{name: "not toml", content: "scale = = 2\n", wantErr: "parse"},
		{name: "infinite offset", content: "offset_x = inf\n", wantErr: "invalid calibration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "calibration.toml")
			writeFile(t, path, tt.content)

			got, err := LoadFile(path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("LoadFile() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("LoadFile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile() error = %v, want os.ErrNotExist", err)
	}
}
