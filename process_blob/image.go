package process_blob

import (
	"fmt"
	"sync"
	"sync/atomic"

	"gosight/process"
	"gosight/process/memory_map"
)

// Image implements process.Process over a set of in-memory regions. It backs
// replays of saved dumps and stands in for a live process in tests.
type Image struct {
	PID  process.ProcessID
	Name string

	mu      sync.RWMutex
	mm      []memory_map.MemoryMapItem
	regions map[uint64][]byte // region address -> data

	readCalls  atomic.Int64
	blobsCalls atomic.Int64
	writeCalls atomic.Int64
}

var _ process.Process = (*Image)(nil)

func NewImage() *Image {
	return &Image{
		regions: make(map[uint64][]byte),
	}
}

// Map adds a zero-filled region. Overlapping an existing region is an error.
func (p *Image) Map(addr process.ProcessMemoryAddress, size process.ProcessMemorySize, perms string) error {
	return p.AddRegion(addr, make([]byte, size), perms)
}

// AddRegion adds a region backed by data. The image takes ownership of data.
func (p *Image) AddRegion(addr process.ProcessMemoryAddress, data []byte, perms string) error {
	if len(data) == 0 {
		return fmt.Errorf("empty region at %s", addr.ToString())
	}

	item := memory_map.MemoryMapItem{Address: uint64(addr), Size: uint(len(data)), Perms: perms}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, existing := range p.mm {
		if item.Address < existing.End() && existing.Address < item.End() {
			return fmt.Errorf("region %s overlaps 0x%x", addr.ToString(), existing.Address)
		}
	}

	p.mm = append(p.mm, item)
	memory_map.Sort(p.mm)
	p.regions[item.Address] = data
	return nil
}

// Poke copies data into mapped memory regardless of permissions.
func (p *Image) Poke(addr process.ProcessMemoryAddress, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	dst, err := p.slice(addr, process.ProcessMemorySize(len(data)))
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

// slice returns the backing bytes for [addr, addr+size); assumes p.mu is held
func (p *Image) slice(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	region := memory_map.Find(uint64(addr), p.mm)
	if region == nil || !region.Contains(uint64(addr), uint(size)) {
		return nil, fmt.Errorf("%s (+%d): %w", addr.ToString(), size, process.ErrAddressNotMapped)
	}

	data, ok := p.regions[region.Address]
	if !ok {
		return nil, fmt.Errorf("no data for region 0x%x: %w", region.Address, process.ErrAddressNotMapped)
	}

	offset := uint64(addr) - region.Address
	return data[offset : offset+uint64(size)], nil
}

func (p *Image) Open(pid process.ProcessID) error {
	p.PID = pid
	return nil
}

func (p *Image) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mm = nil
	p.regions = make(map[uint64][]byte)
	return nil
}

func (p *Image) GetPID() process.ProcessID {
	return p.PID
}

// UpdateMemoryMap is a no-op; the map only changes through AddRegion.
func (p *Image) UpdateMemoryMap() error {
	return nil
}

func (p *Image) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return memory_map.IsValidAddress(uint64(addr), p.mm)
}

func (p *Image) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]memory_map.MemoryMapItem, len(p.mm))
	copy(result, p.mm)
	return result, nil
}

func (p *Image) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	p.readCalls.Add(1)
	return p.read(addr, size)
}

func (p *Image) read(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	src, err := p.slice(addr, size)
	if err != nil {
		return nil, err
	}

	result := make([]byte, size)
	copy(result, src)
	return result, nil
}

// ReadBlobs counts as one transfer, like a single vectored syscall.
func (p *Image) ReadBlobs(list []process.ProcessMemoryAddress, size process.ProcessMemorySize) []process.ReadBlobsResult {
	p.blobsCalls.Add(1)

	results := make([]process.ReadBlobsResult, len(list))
	for i, addr := range list {
		data, err := p.read(addr, size)
		results[i] = process.ReadBlobsResult{Address: addr, Data: data, Err: err}
	}
	return results
}

func (p *Image) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	p.writeCalls.Add(1)

	p.mu.Lock()
	defer p.mu.Unlock()

	region := memory_map.Find(uint64(addr), p.mm)
	if region != nil && !region.IsWritable() {
		return fmt.Errorf("memory region at %x is not writable", addr)
	}

	dst, err := p.slice(addr, process.ProcessMemorySize(len(data)))
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

// ReadCalls is the number of ReadMemory calls served so far.
func (p *Image) ReadCalls() int64 { return p.readCalls.Load() }

// BlobsCalls is the number of ReadBlobs calls served so far.
func (p *Image) BlobsCalls() int64 { return p.blobsCalls.Load() }

func (p *Image) WriteCalls() int64 { return p.writeCalls.Load() }

// ResetCounters zeroes all call counters.
func (p *Image) ResetCounters() {
	p.readCalls.Store(0)
	p.blobsCalls.Store(0)
	p.writeCalls.Store(0)
}
