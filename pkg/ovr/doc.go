// Package ovr defines the port to the native head-tracking SDK.
//
// The SDK interface mirrors the shape of the vendor C API: a process-wide
// Initialize/Shutdown pair, device detection, handle creation by index,
// tracking configuration and state polling, plus a last-error query that
// returns the vendor's diagnostic string. Handles are opaque; the zero
// Handle plays the role of a null pointer.
//
// Drivers register themselves by name, in the style of database/sql:
//
//	import _ "github.com/bft-labs/headtrack/pkg/ovr/sim"
//
//	sdk, err := ovr.Open("sim")
//
// The sim driver is always available. The libovr driver binds the Oculus C
// API through cgo and is only compiled with the libovr build tag.
package ovr
