// Package process defines the foreign-process abstraction the rest of gosight reads through.
package process

import "errors"

var (
	// ErrAddressNotMapped is returned when a memory address is not found within any mapped region of a process.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrProcessNotOpen is returned when an operation requiring an open process is attempted
	// before the process has been successfully opened or after it has been closed.
	ErrProcessNotOpen = errors.New("process not open")

	ErrInvalidPointer = errors.New("invalid pointer read")

	// ErrPartialRead is returned when the kernel copied fewer bytes than requested.
	ErrPartialRead = errors.New("partial read")
)

// ReadBlobsResult is one entry of a vectored read. Data is nil when Err is set.
type ReadBlobsResult struct {
	Address ProcessMemoryAddress
	Data    []byte
	Err     error
}
