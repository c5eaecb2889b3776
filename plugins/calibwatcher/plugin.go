// Package calibwatcher reloads the tracker calibration when a TOML
// calibration file changes.
package calibwatcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/headtrack/pkg/headtrack"
	"github.com/bft-labs/headtrack/pkg/log"
)

// Plugin watches one calibration file and applies every valid revision
// through the tracker's Calibrator. An invalid revision is logged and the
// previous calibration stays in effect.
type Plugin struct {
	mu sync.Mutex

	path          string
	debounceDelay time.Duration

	logger     log.Logger
	calibrator headtrack.Calibrator
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	debounce   *time.Timer
}

// Config holds configuration options for the calibration watcher.
type Config struct {
	// Path is the calibration file. The plugin is disabled when empty.
	Path string

	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig watches path with the default debounce.
func DefaultConfig(path string) Config {
	return Config{
		Path:          path,
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a calibration watcher with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "calibwatcher"
}

// Initialize applies the current file, if any, and starts watching it.
func (p *Plugin) Initialize(ctx context.Context, cfg headtrack.PluginConfig) error {
	p.mu.Lock()
	p.logger = log.OrNoop(cfg.Logger)
	p.calibrator = cfg.Calibrator
	p.mu.Unlock()

	if p.path == "" || p.calibrator == nil {
		p.logger.Warn("calibration watcher disabled: no file or calibrator configured")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Editors replace files by rename, so watch the directory.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.apply(watchCtx)
	p.logger.Info("calibration watcher initialized", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops watching. A pending reload is dropped.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.debounceApply(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("calibration watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceApply(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		p.apply(ctx)
	})
}

// apply loads the file and hands it to the calibrator.
func (p *Plugin) apply(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	c, err := LoadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			p.logger.Info("calibration file not found, keeping current calibration", log.String("path", p.path))
			return
		}
		p.logger.Error("calibration file rejected", log.String("path", p.path), log.Err(err))
		return
	}

	if err := p.calibrator.Calibrate(c); err != nil {
		p.logger.Error("calibration update failed", log.Err(err))
		return
	}
	p.logger.Info("calibration reloaded", log.String("calibration", c.String()))
}

var _ headtrack.Plugin = (*Plugin)(nil)
