// Package process defines the boundary between the flag-decoding engine
// and the operating system: raw and typed memory reads, the memory map,
// pattern scanning, and process discovery. Backends live in
// process_linux and process_windows; process_blob provides an in-memory
// implementation for snapshots and tests.
package process

import "errors"

var (
	// ErrAddressNotMapped is returned when a memory address is not found within any mapped region of a process.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrProcessNotOpen is returned when an operation requiring an open process is attempted
	// before the process has been successfully opened or after it has been closed.
	ErrProcessNotOpen = errors.New("process not open")

	// ErrInvalidPointer is returned when a pointer-width read yields a value
	// that cannot be a mapped address.
	ErrInvalidPointer = errors.New("invalid pointer read")

	// ErrPatternNotFound is returned when a byte pattern does not occur in
	// the scanned region.
	ErrPatternNotFound = errors.New("pattern not found")

	// ErrModuleNotFound is returned when a named module is not present in
	// the process memory map.
	ErrModuleNotFound = errors.New("module not found")
)
