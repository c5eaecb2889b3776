package ovr

import (
	"errors"
	"testing"
)

type stubSDK struct{ SDK }

func TestTrackingCaps_Has(t *testing.T) {
	if !DefaultTrackingCaps.Has(CapOrientation | CapPosition) {
		t.Error("default caps should include orientation and position")
	}
	if CapOrientation.Has(CapPosition) {
		t.Error("orientation alone should not report position")
	}
}

func TestHandle_Valid(t *testing.T) {
	if Handle(0).Valid() {
		t.Error("zero handle must be invalid")
	}
	if !Handle(7).Valid() {
		t.Error("non-zero handle must be valid")
	}
}

func TestRegistry(t *testing.T) {
	Register("test-stub", func() (SDK, error) { return stubSDK{}, nil })
	Register("test-broken", func() (SDK, error) { return nil, errors.New("no driver service") })

	if _, err := Open("test-stub"); err != nil {
		t.Fatalf("Open(test-stub) = %v", err)
	}

	if _, err := Open("test-broken"); err == nil {
		t.Error("Open(test-broken) should surface the factory error")
	}

	if _, err := Open("does-not-exist"); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("Open(unknown) = %v, want ErrUnknownDriver", err)
	}

	found := false
	for _, name := range Drivers() {
		if name == "test-stub" {
			found = true
		}
	}
	if !found {
		t.Errorf("Drivers() = %v, missing test-stub", Drivers())
	}
}

func TestRegister_PanicsOnDuplicate(t *testing.T) {
	Register("test-dup", func() (SDK, error) { return stubSDK{}, nil })

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register should panic")
		}
	}()
	Register("test-dup", func() (SDK, error) { return stubSDK{}, nil })
}
