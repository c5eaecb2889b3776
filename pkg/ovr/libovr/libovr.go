//go:build libovr

package libovr

/*
#cgo CFLAGS: -g -Wall
#cgo LDFLAGS: -lOVR -ldl -lm
#include <stdlib.h>
#include <OVR_CAPI.h>

static const char *headtrack_last_error(ovrHmd hmd) {
	const char *msg = ovrHmd_GetLastError(hmd);
	return msg ? msg : "";
}
*/
import "C"

import (
	"sync"

	"github.com/bft-labs/headtrack/pkg/ovr"
)

// DriverName is the registry name of this driver.
const DriverName = "libovr"

func init() {
	ovr.Register(DriverName, func() (ovr.SDK, error) {
		return New(), nil
	})
}

// SDK wraps the process-wide LibOVR runtime. C handles never leave this
// package; callers see table indices.
type SDK struct {
	mu      sync.Mutex
	next    ovr.Handle
	handles map[ovr.Handle]C.ovrHmd
}

// New returns a driver instance.
func New() *SDK {
	return &SDK{handles: make(map[ovr.Handle]C.ovrHmd)}
}

func (s *SDK) Initialize() bool {
	return C.ovr_Initialize(nil) != 0
}

func (s *SDK) Shutdown() {
	s.mu.Lock()
	s.handles = make(map[ovr.Handle]C.ovrHmd)
	s.mu.Unlock()
	C.ovr_Shutdown()
}

func (s *SDK) Detect() bool {
	return C.ovrHmd_Detect() > 0
}

func (s *SDK) Create(index int) ovr.Handle {
	hmd := C.ovrHmd_Create(C.int(index))
	if hmd == nil {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.handles[s.next] = hmd
	return s.next
}

func (s *SDK) Destroy(h ovr.Handle) {
	s.mu.Lock()
	hmd, ok := s.handles[h]
	delete(s.handles, h)
	s.mu.Unlock()

	if ok {
		C.ovrHmd_Destroy(hmd)
	}
}

func (s *SDK) ConfigureTracking(h ovr.Handle, caps ovr.TrackingCaps) bool {
	hmd, ok := s.lookup(h)
	if !ok {
		return false
	}
	return C.ovrHmd_ConfigureTracking(hmd, C.uint(caps), 0) != 0
}

func (s *SDK) TrackingState(h ovr.Handle, at float64) ovr.TrackingState {
	hmd, ok := s.lookup(h)
	if !ok {
		return ovr.TrackingState{}
	}

	st := C.ovrHmd_GetTrackingState(hmd, C.double(at))
	return ovr.TrackingState{
		HeadPose: ovr.PoseState{
			ThePose:       posef(st.HeadPose.ThePose),
			TimeInSeconds: float64(st.HeadPose.TimeInSeconds),
		},
		CameraPose: posef(st.CameraPose),
	}
}

func (s *SDK) LastError(h ovr.Handle) string {
	var hmd C.ovrHmd
	if h.Valid() {
		var ok bool
		if hmd, ok = s.lookup(h); !ok {
			return "invalid device handle"
		}
	}
	return C.GoString(C.headtrack_last_error(hmd))
}

func (s *SDK) lookup(h ovr.Handle) (C.ovrHmd, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hmd, ok := s.handles[h]
	return hmd, ok
}

func posef(p C.ovrPosef) ovr.Posef {
	return ovr.Posef{
		Orientation: ovr.Quatf{
			X: float32(p.Orientation.x),
			Y: float32(p.Orientation.y),
			Z: float32(p.Orientation.z),
			W: float32(p.Orientation.w),
		},
		Position: ovr.Vector3f{
			X: float32(p.Position.x),
			Y: float32(p.Position.y),
			Z: float32(p.Position.z),
		},
	}
}
