package ovr

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownDriver is returned by Open for an unregistered driver name.
var ErrUnknownDriver = errors.New("ovr: unknown driver")

// Factory creates a driver instance.
type Factory func() (SDK, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Factory)
)

// Register makes a driver available under name. It panics if name is empty,
// factory is nil, or the name is already taken.
func Register(name string, factory Factory) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if name == "" || factory == nil {
		panic("ovr: Register called with empty name or nil factory")
	}
	if _, dup := drivers[name]; dup {
		panic("ovr: Register called twice for driver " + name)
	}
	drivers[name] = factory
}

// Open creates an instance of the named driver.
func Open(name string) (SDK, error) {
	driversMu.RLock()
	factory, ok := drivers[name]
	driversMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %v)", ErrUnknownDriver, name, Drivers())
	}
	sdk, err := factory()
	if err != nil {
		return nil, fmt.Errorf("ovr: open driver %q: %w", name, err)
	}
	return sdk, nil
}

// Drivers returns the sorted names of the registered drivers.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
