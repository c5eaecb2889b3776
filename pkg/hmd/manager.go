package hmd

import (
	"sync"

	"github.com/bft-labs/headtrack/pkg/log"
	"github.com/bft-labs/headtrack/pkg/ovr"
)

// Manager reference-counts the native SDK. The SDK is initialized when the
// count leaves zero and shut down when it returns to zero; Initialized()
// equals Sessions() > 0 at every point observable from outside.
type Manager struct {
	mu          sync.Mutex
	sdk         ovr.SDK
	logger      log.Logger
	initialized bool
	sessions    uint
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for SDK bring-up, tear-down and contract
// violations. The default discards everything.
func WithLogger(logger log.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = log.OrNoop(logger)
	}
}

// NewManager creates a manager for sdk. Create one per SDK per process and
// share it between sessions.
func NewManager(sdk ovr.SDK, opts ...ManagerOption) *Manager {
	m := &Manager{
		sdk:    sdk,
		logger: log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SDK returns the managed driver.
func (m *Manager) SDK() ovr.SDK {
	return m.sdk
}

// Acquire takes a reference on the SDK, initializing it first if nobody holds
// one. On failure the count is unchanged and the error is an *InitError of
// kind SDKUnavailable.
func (m *Manager) Acquire() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sessions == 0 {
		if !m.sdk.Initialize() {
			err := &InitError{Kind: SDKUnavailable, Reason: m.sdk.LastError(0)}
			m.logger.Warn("sdk initialization failed", log.Err(err))
			return err
		}
		m.initialized = true
		m.logger.Info("sdk initialized")
	}

	m.sessions++
	m.logger.Debug("sdk acquired", log.Uint("sessions", m.sessions))
	return nil
}

// Release drops a reference taken by Acquire and shuts the SDK down when it
// was the last one. Releasing with nothing acquired returns
// ErrUnbalancedRelease and changes nothing.
func (m *Manager) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sessions == 0 {
		m.logger.Error("sdk released without matching acquire", log.Err(ErrUnbalancedRelease))
		return ErrUnbalancedRelease
	}

	m.sessions--
	m.logger.Debug("sdk released", log.Uint("sessions", m.sessions))

	if m.sessions == 0 {
		m.sdk.Shutdown()
		m.initialized = false
		m.logger.Info("sdk shut down")
	}
	return nil
}

// Initialized reports whether the SDK is currently up.
func (m *Manager) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

// Sessions returns the number of outstanding acquires.
func (m *Manager) Sessions() uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions
}
