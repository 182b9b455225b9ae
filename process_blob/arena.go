package process_blob

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"gosight/process"
)

// Arena lays out synthetic objects inside one writable region of an Image.
// Values are encoded little-endian with encoding/binary, so structs must be
// fixed-size.
type Arena struct {
	img  *Image
	base process.ProcessMemoryAddress
	end  process.ProcessMemoryAddress
	next process.ProcessMemoryAddress
}

func NewArena(img *Image, base process.ProcessMemoryAddress, size process.ProcessMemorySize) (*Arena, error) {
	if err := img.Map(base, size, "rw-p"); err != nil {
		return nil, err
	}
	return &Arena{img: img, base: base, end: base.Add(size), next: base}, nil
}

func (a *Arena) Image() *Image { return a.img }

// Alloc reserves size zeroed bytes, 16-byte aligned. It panics when the arena
// is exhausted; arenas are sized by the code that builds the fixture.
func (a *Arena) Alloc(size process.ProcessMemorySize) process.ProcessMemoryAddress {
	addr := (a.next + 15) &^ 15
	if addr.Add(size) > a.end {
		panic(fmt.Sprintf("arena at %s exhausted", a.base.ToString()))
	}
	a.next = addr.Add(size)
	return addr
}

// Put encodes v at addr.
func (a *Arena) Put(addr process.ProcessMemoryAddress, v any) error {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
		return fmt.Errorf("encode %T: %w", v, err)
	}
	return a.img.Poke(addr, buf.Bytes())
}

// New allocates room for v, stores it and returns its address.
func (a *Arena) New(v any) (process.ProcessMemoryAddress, error) {
	size := binary.Size(v)
	if size <= 0 {
		return 0, fmt.Errorf("%T has no fixed size", v)
	}
	addr := a.Alloc(process.ProcessMemorySize(size))
	return addr, a.Put(addr, v)
}

func (a *Arena) PutPointer(addr, target process.ProcessMemoryAddress) error {
	return a.Put(addr, uint64(target))
}

// CString stores s with a trailing NUL and returns its address.
func (a *Arena) CString(s string) process.ProcessMemoryAddress {
	addr := a.Alloc(process.ProcessMemorySize(len(s) + 1))
	if err := a.img.Poke(addr, []byte(s)); err != nil {
		panic(err)
	}
	return addr
}
