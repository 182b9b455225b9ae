// Package remote reads typed values out of the attached process. Every read
// is a copy taken at call time; nothing returned aliases foreign memory.
package remote

import (
	"errors"
	"fmt"

	"gosight/layout"
	"gosight/pod"
	"gosight/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var (
	ErrNameUnresolved = errors.New("name unresolved")
	ErrArrayTooLarge  = errors.New("array count exceeds limit")
	ErrBadArray       = errors.New("malformed array header")
)

// Accessor binds a process to the handle it was attached with and the layout
// of the build it runs.
type Accessor struct {
	proc   process.Process
	handle process.Handle
	lay    *layout.Layout
	log    *logger.Logger
}

var _ process.Reader = (*Accessor)(nil)

func New(proc process.Process, handle process.Handle, lay *layout.Layout) *Accessor {
	if lay == nil {
		lay = layout.Default()
	}
	return &Accessor{
		proc:   proc,
		handle: handle,
		lay:    lay,
		log:    logger.NewLogger(coloransi.Color(coloransi.Green, coloransi.Black, fmt.Sprintf("remote-%d", handle.PID))),
	}
}

func (a *Accessor) Handle() process.Handle { return a.handle }

func (a *Accessor) Layout() *layout.Layout { return a.lay }

func (a *Accessor) Process() process.Process { return a.proc }

func (a *Accessor) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	return a.proc.ReadMemory(addr, size)
}

func (a *Accessor) ReadBlobs(list []process.ProcessMemoryAddress, size process.ProcessMemorySize) []process.ReadBlobsResult {
	return a.proc.ReadBlobs(list, size)
}

func (a *Accessor) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	return a.proc.WriteMemory(addr, data)
}

// Global returns the address of a module-relative global.
func (a *Accessor) Global(offset uint64) process.ProcessMemoryAddress {
	return a.handle.BaseAddress.Add(process.ProcessMemorySize(offset))
}

// World dereferences the world global. The result changes when the target
// loads a new map, so callers re-read it every tick.
func (a *Accessor) World() (process.ProcessMemoryAddress, error) {
	return ReadPointer(a, a.Global(a.lay.Globals.UWorld))
}

// NameTable dereferences the interned-name table global.
func (a *Accessor) NameTable() (process.ProcessMemoryAddress, error) {
	return ReadPointer(a, a.Global(a.lay.Globals.GNames))
}

// ReadName resolves an interned name id against the table at table.
func (a *Accessor) ReadName(table process.ProcessMemoryAddress, id int32) (string, error) {
	name, err := ReadName(a, a.lay.Names, table, id)
	if err != nil {
		a.log.Debugln("name", id, err)
	}
	return name, err
}

// Read copies one T from addr.
func Read[T any](r process.Reader, addr process.ProcessMemoryAddress) (T, error) {
	v, err := pod.ReadT[T](r, addr)
	if err != nil {
		return v, fmt.Errorf("read %T at %s: %w", v, addr.ToString(), err)
	}
	return v, nil
}

// Write copies v to addr. Nothing in the scan path writes; it exists for
// tooling.
func Write[T any](w process.Writer, addr process.ProcessMemoryAddress, v T) error {
	if err := pod.WriteT(w, addr, v); err != nil {
		return fmt.Errorf("write %T at %s: %w", v, addr.ToString(), err)
	}
	return nil
}

// ReadPointer reads a foreign pointer and rejects null.
func ReadPointer(r process.Reader, addr process.ProcessMemoryAddress) (process.ProcessMemoryAddress, error) {
	v, err := Read[uint64](r, addr)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, fmt.Errorf("null pointer at %s: %w", addr.ToString(), process.ErrInvalidPointer)
	}
	return process.ProcessMemoryAddress(v), nil
}

// ReadChain follows a pointer at base+offsets[0], then at ptr+offsets[1], and
// so on, returning the last pointer read.
func ReadChain(r process.Reader, base process.ProcessMemoryAddress, offsets ...uint64) (process.ProcessMemoryAddress, error) {
	cur := base
	for _, off := range offsets {
		next, err := ReadPointer(r, cur.Add(process.ProcessMemorySize(off)))
		if err != nil {
			return 0, err
		}
		cur = next
	}
	return cur, nil
}

func ReadArray(r process.Reader, addr process.ProcessMemoryAddress) (TArray, error) {
	return Read[TArray](r, addr)
}

// ReadPointerArray reads every element pointer of arr with a single
// ReadMemory call. Null elements are kept in place.
func ReadPointerArray(r process.Reader, arr TArray, limit int32) ([]process.ProcessMemoryAddress, error) {
	if arr.Count == 0 {
		return nil, nil
	}
	if arr.Data == 0 || arr.Count < 0 {
		return nil, fmt.Errorf("array %+v: %w", arr, ErrBadArray)
	}
	if limit > 0 && arr.Count > limit {
		return nil, fmt.Errorf("array of %d: %w (%d)", arr.Count, ErrArrayTooLarge, limit)
	}
	return pod.ReadPointerList(r, arr.DataAddress(), int(arr.Count))
}

// ReadVec reads size bytes at each address in as few transfers as the
// process allows. A failed address is reported in its own result only.
func ReadVec(r process.Reader, addrs []process.ProcessMemoryAddress, size process.ProcessMemorySize) []process.ReadBlobsResult {
	if len(addrs) == 0 {
		return nil
	}
	return r.ReadBlobs(addrs, size)
}

// ReadName walks the paged name table: table -> page pointer -> entry
// pointer -> bounded NUL-terminated string.
func ReadName(r process.Reader, names layout.NameTable, table process.ProcessMemoryAddress, id int32) (string, error) {
	if id <= 0 || names.PageSize == 0 {
		return "", fmt.Errorf("id %d: %w", id, ErrNameUnresolved)
	}

	page := uint64(id) / names.PageSize
	slot := uint64(id) % names.PageSize

	pagePtr, err := ReadPointer(r, table.Add(process.ProcessMemorySize(page*names.EntryStride)))
	if err != nil {
		return "", fmt.Errorf("id %d page %d: %w: %w", id, page, ErrNameUnresolved, err)
	}
	entry, err := ReadPointer(r, pagePtr.Add(process.ProcessMemorySize(slot*names.EntryStride)))
	if err != nil {
		return "", fmt.Errorf("id %d slot %d: %w: %w", id, slot, ErrNameUnresolved, err)
	}

	raw, err := r.ReadMemory(entry.Add(process.ProcessMemorySize(names.StringOffset)), process.ProcessMemorySize(names.MaxLength))
	if err != nil {
		return "", fmt.Errorf("id %d string: %w: %w", id, ErrNameUnresolved, err)
	}

	name := pod.CString(raw)
	if name == "" {
		return "", fmt.Errorf("id %d empty: %w", id, ErrNameUnresolved)
	}
	return name, nil
}

// ReadWideString decodes a NUL-terminated UTF-16 buffer of up to 64 units.
func ReadWideString(r process.Reader, addr process.ProcessMemoryAddress) (string, error) {
	w, err := Read[WideName](r, addr)
	if err != nil {
		return "", err
	}
	return w.String(), nil
}
