package inspect

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"gosight/pod"
	"gosight/process"
	"gosight/remote"
)

// Matcher reports whether a value of interest starts at data[0].
type Matcher func(data []byte) bool

// Value matches the exact in-memory bytes of v.
func Value[T any](v T) Matcher {
	want, err := pod.Encode(v)
	if err != nil {
		panic(fmt.Sprintf("inspect: %T is not plain data", v))
	}
	return func(data []byte) bool {
		return len(data) >= len(want) && bytes.Equal(data[:len(want)], want)
	}
}

// VectorNear matches an FVector within tol of v on every axis.
func VectorNear(v remote.FVector, tol float32) Matcher {
	return func(data []byte) bool {
		got, err := pod.Decode[remote.FVector](data)
		if err != nil {
			return false
		}
		return near(got.X, v.X, tol) && near(got.Y, v.Y, tol) && near(got.Z, v.Z, tol)
	}
}

func near(a, b, tol float32) bool {
	return math.Abs(float64(a-b)) <= float64(tol)
}

// Path is a chain of offsets: every offset but the last is followed as a
// pointer, the last is where the value sits.
type Path []uint64

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, off := range p {
		parts[i] = fmt.Sprintf("0x%X", off)
	}
	return strings.Join(parts, " -> ")
}

type finder struct {
	structSize uint64
	depth      int
	align      uint64
}

type Option func(*finder)

// WithStructSize bounds how many bytes of each object are searched.
func WithStructSize(n uint64) Option { return func(f *finder) { f.structSize = n } }

// WithDepth bounds how many pointers a path may follow.
func WithDepth(n int) Option { return func(f *finder) { f.depth = n } }

func WithAlignment(n uint64) Option { return func(f *finder) { f.align = n } }

// FindPaths walks the object graph below root and returns every path to a
// place where match succeeds. valid decides which qwords are followed as
// pointers. Each object is visited once.
func FindPaths(r process.Reader, valid func(process.ProcessMemoryAddress) bool, root process.ProcessMemoryAddress, match Matcher, opts ...Option) ([]Path, error) {
	f := finder{structSize: 0x400, depth: 2, align: 4}
	for _, o := range opts {
		o(&f)
	}
	if match == nil {
		return nil, errors.New("no matcher")
	}
	if f.align == 0 || f.structSize == 0 {
		return nil, fmt.Errorf("bad search bounds: size %d align %d", f.structSize, f.align)
	}

	var out []Path
	visited := make(map[process.ProcessMemoryAddress]struct{})

	var walk func(addr process.ProcessMemoryAddress, depth int, prefix Path)
	walk = func(addr process.ProcessMemoryAddress, depth int, prefix Path) {
		if _, seen := visited[addr]; seen {
			return
		}
		visited[addr] = struct{}{}

		data, err := r.ReadMemory(addr, process.ProcessMemorySize(f.structSize))
		if err != nil {
			return
		}

		for off := uint64(0); off < uint64(len(data)); off += f.align {
			if match(data[off:]) {
				out = append(out, append(append(Path{}, prefix...), off))
			}
			if depth >= f.depth || off%8 != 0 || off+8 > uint64(len(data)) {
				continue
			}
			p := process.ProcessMemoryAddress(binary.LittleEndian.Uint64(data[off:]))
			if p != 0 && valid(p) {
				walk(p, depth+1, append(append(Path{}, prefix...), off))
			}
		}
	}
	walk(root, 0, nil)
	return out, nil
}
