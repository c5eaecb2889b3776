package headtrack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/bft-labs/headtrack/internal/adapters/fs"
	httpAdapter "github.com/bft-labs/headtrack/internal/adapters/http"
	"github.com/bft-labs/headtrack/internal/app"
	"github.com/bft-labs/headtrack/internal/cliconfig"
	"github.com/bft-labs/headtrack/internal/domain"
	"github.com/bft-labs/headtrack/internal/ports"
	"github.com/bft-labs/headtrack/pkg/hmd"
	"github.com/bft-labs/headtrack/pkg/log"
	"github.com/bft-labs/headtrack/pkg/ovr"
	"github.com/bft-labs/headtrack/pkg/pose"
)

// Tracker streams calibrated head poses from one device to a sink.
// Use New to create one, then Start to begin streaming.
type Tracker struct {
	config    Config
	manager   *hmd.Manager
	sink      Sink
	stateRepo ports.StateRepository
	logger    log.Logger
	emitter   *eventEmitterWrapper
	lifecycle *app.Lifecycle
	plugins   []Plugin

	mu        sync.Mutex
	run       int
	pluginsUp bool
	done      chan struct{}
	runErr    error

	// calMu guards the calibration and the live session. Plugins call
	// Calibrate while t.mu may be held by Start or Stop.
	calMu       sync.Mutex
	session     *hmd.Session
	calibration pose.Calibration
}

// New creates a tracker in StateStopped. No device is touched until Start.
func New(cfg Config, opts ...Option) (*Tracker, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	logger := log.OrNoop(o.logger)

	sdk := o.sdk
	if sdk == nil {
		var err error
		if sdk, err = ovr.Open(cfg.Driver); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
		}
	}

	sink := o.sink
	if sink == nil {
		client := o.httpClient
		if client == nil {
			client = &http.Client{Timeout: cfg.HTTPTimeout}
		}
		sink = httpAdapter.NewPoseSender(client, logger)
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}

	return &Tracker{
		config:      cfg,
		manager:     hmd.NewManager(sdk, hmd.WithLogger(logger)),
		sink:        sink,
		stateRepo:   fs.NewStateFileRepository(cfg.StateDir),
		logger:      logger,
		emitter:     emitter,
		lifecycle:   app.NewLifecycle(logger, emitter),
		plugins:     o.plugins,
		calibration: cfg.Calibration,
	}, nil
}

// Start opens the device session, initializes plugins and begins streaming
// in the background. The session error (an *hmd.InitError) is returned
// as is when the device cannot be opened.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := t.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	// Leftovers from a crashed run.
	t.shutdownPluginsLocked()

	t.calMu.Lock()
	session, err := hmd.Open(t.manager,
		hmd.WithDeviceIndex(t.config.DeviceIndex),
		hmd.WithCalibration(t.calibration),
		hmd.WithSessionLogger(t.logger),
	)
	if err == nil {
		t.session = session
	}
	t.calMu.Unlock()
	if err != nil {
		t.logger.Error("device open failed", log.Err(err))
		_ = t.lifecycle.TransitionTo(app.StateCrashed, "device open failed")
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.lifecycle.SetCancel(cancel)

	pluginCfg := PluginConfig{
		Driver:      t.config.Driver,
		DeviceIndex: t.config.DeviceIndex,
		StateDir:    t.config.StateDir,
		Logger:      t.logger,
		Calibrator:  t,
	}
	for i, p := range t.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			t.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			cancel()
			t.shutdownPlugins(t.plugins[:i])
			_ = session.Close()
			_ = t.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		t.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}
	t.pluginsUp = true

	info := cliconfig.LoadAgentInfo()
	agent := app.NewAgent(app.AgentConfig{
		SampleInterval: t.config.SampleInterval,
		SendInterval:   t.config.SendInterval,
		HardInterval:   t.config.HardInterval,
		MaxBatchFrames: t.config.MaxBatchFrames,
		Once:           t.config.Once,
		Driver:         t.config.Driver,
		Hostname:       info.Hostname,
		OSArch:         info.OSArch,
		AuthKey:        t.config.AuthKey,
		ServiceURL:     t.config.ServiceURL,
	}, session, t.sink, t.stateRepo, t.logger, t.emitter)

	t.run++
	run := t.run
	done := make(chan struct{})
	t.done = done
	t.runErr = nil

	t.lifecycle.Go(func() {
		defer close(done)
		defer session.Close()

		if err := t.lifecycle.TransitionTo(app.StateRunning, "agent starting"); err != nil {
			t.logger.Error("failed to transition to running", log.Err(err))
			return
		}

		err := agent.Run(runCtx)

		t.mu.Lock()
		t.runErr = err
		t.mu.Unlock()

		if err != nil && !errors.Is(err, context.Canceled) {
			t.logger.Error("agent error", log.Err(err))
			if t.lifecycle.TransitionTo(app.StateCrashed, err.Error()) == nil {
				t.mu.Lock()
				if t.run == run {
					t.shutdownPluginsLocked()
				}
				t.mu.Unlock()
			}
		}
	})

	return nil
}

// Stop cancels streaming, flushes pending frames, shuts plugins down and
// closes the device session. Returns ErrShutdownTimeout if the agent does
// not finish within app.ShutdownTimeout.
func (t *Tracker) Stop() error {
	t.mu.Lock()
	if !t.lifecycle.CanStop() {
		t.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := t.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		t.mu.Unlock()
		return err
	}
	t.lifecycle.Cancel()
	t.mu.Unlock()

	err := t.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	t.mu.Lock()
	t.shutdownPluginsLocked()
	t.mu.Unlock()

	if err != nil {
		_ = t.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = t.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (t *Tracker) Status() State {
	return convertState(t.lifecycle.State())
}

// Done is closed when the current run ends: after Stop, after a crash, or
// after the single batch in Once mode. It is nil before the first Start.
func (t *Tracker) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Err returns the error the last run ended with. It is nil while running,
// after a completed Once run, and context.Canceled after Stop.
func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runErr
}

// Calibrate replaces the calibration. It applies to the live session and
// to every later Start.
func (t *Tracker) Calibrate(c pose.Calibration) error {
	if err := c.Validate(); err != nil {
		return err
	}
	t.calMu.Lock()
	defer t.calMu.Unlock()

	t.calibration = c
	if t.session != nil {
		return t.session.SetCalibration(c)
	}
	return nil
}

// Calibration returns the calibration in effect.
func (t *Tracker) Calibration() pose.Calibration {
	t.calMu.Lock()
	defer t.calMu.Unlock()
	return t.calibration
}

// Manager exposes the SDK lifecycle manager, e.g. to open extra sessions
// that share the SDK with the tracker.
func (t *Tracker) Manager() *hmd.Manager {
	return t.manager
}

func (t *Tracker) shutdownPluginsLocked() {
	if !t.pluginsUp {
		return
	}
	t.pluginsUp = false
	t.shutdownPlugins(t.plugins)
}

// shutdownPlugins shuts plugins down in reverse order.
func (t *Tracker) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			t.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err))
		} else {
			t.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}
}

var _ Calibrator = (*Tracker)(nil)
