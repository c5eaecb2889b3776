// Package libovr binds the Oculus C API (LibOVR 0.5) to ovr.SDK through cgo.
//
// Build with -tags libovr and OVR_CAPI.h plus libOVR on the include and
// library paths; without the tag the package is empty. The driver registers
// itself as "libovr", so importing it for side effects is enough:
//
//	import _ "github.com/bft-labs/headtrack/pkg/ovr/libovr"
package libovr
