package process

import "fmt"

// ProcessID represents a unique identifier for a process
type ProcessID int

// Handle identifies an attached process. It is supplied by whoever discovered the
// process and never changes after attach.
type Handle struct {
	PID         ProcessID
	BaseAddress ProcessMemoryAddress
}

func (h Handle) String() string {
	return fmt.Sprintf("pid=%d base=%s", h.PID, h.BaseAddress.ToString())
}

// DefaultBaseAddress is the preferred image base of a 64-bit PE executable.
var DefaultBaseAddress = ProcessMemoryAddress(0x140000000)
