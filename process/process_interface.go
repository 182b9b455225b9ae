package process

import (
	"gosight/process/memory_map"
)

// Reader is the read half of a Process. Code that only inspects the target
// should ask for this.
type Reader interface {
	// ReadMemory reads memory from the process at the specified address.
	// One call is one remote transfer.
	ReadMemory(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)

	// ReadBlobs reads size bytes at every address in list using as few remote
	// transfers as the platform allows. A failed entry does not fail the others.
	ReadBlobs(list []ProcessMemoryAddress, size ProcessMemorySize) []ReadBlobsResult
}

type Writer interface {
	WriteMemory(addr ProcessMemoryAddress, data []byte) error
}

// Process is the interface that defines operations for interacting with a system process
type Process interface {
	// Open opens a process with the given PID for memory operations
	Open(pid ProcessID) error

	// Close closes the process and releases resources
	Close() error

	// GetPID returns the process ID
	GetPID() ProcessID

	// UpdateMemoryMap refreshes the memory map for the process
	UpdateMemoryMap() error

	// IsValidAddress checks if the given memory address is valid and readable
	IsValidAddress(addr ProcessMemoryAddress) bool

	// GetMemoryMap returns a copy of the current memory map
	GetMemoryMap() ([]memory_map.MemoryMapItem, error)

	Reader
	Writer
}
