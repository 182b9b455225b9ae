package process

import (
	"fmt"
)

// ProcessMemoryAddress is an address inside the attached process
type ProcessMemoryAddress uint64

func (pma ProcessMemoryAddress) ToString() string {
	return fmt.Sprintf("0x%X", uint64(pma))
}

// IsNull reports whether the address is the zero pointer
func (pma ProcessMemoryAddress) IsNull() bool {
	return pma == 0
}

// Add returns the address advanced by offset bytes
func (pma ProcessMemoryAddress) Add(offset ProcessMemorySize) ProcessMemoryAddress {
	return pma + ProcessMemoryAddress(offset)
}

// ProcessMemorySize represents a size of memory region
type ProcessMemorySize uint

func (pms ProcessMemorySize) ToString() string {
	return fmt.Sprintf("%d bytes", uint(pms))
}

// PointerSize is the width of a foreign pointer. Only 64-bit targets are supported.
const PointerSize ProcessMemorySize = 8
