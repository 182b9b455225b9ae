//go:build linux

package process_linux

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"gosight/process"
	"gosight/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Addresses outside this window are never user-space data in the target.
const (
	minUserAddress = process.ProcessMemoryAddress(0x10000)
	maxUserAddress = process.ProcessMemoryAddress(0x7FFFFFFFFFFF)
)

// LinuxProcess reads and writes a foreign process through process_vm_readv
// and process_vm_writev. The region list backs IsValidAddress and is only
// replaced by UpdateMemoryMap, so the scan loops validate under a read lock.
type LinuxProcess struct {
	mu  sync.RWMutex
	pid process.ProcessID
	mm  []memory_map.MemoryMapItem
	log *logger.Logger
}

var _ process.Process = (*LinuxProcess)(nil)

func detachedLogger() *logger.Logger {
	return logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "target-detached"))
}

func New() *LinuxProcess {
	return &LinuxProcess{log: detachedLogger()}
}

// NewWithPID attaches to pid and loads its region list.
func NewWithPID(pid process.ProcessID) (*LinuxProcess, error) {
	p := New()
	if err := p.Open(pid); err != nil {
		return nil, err
	}
	return p, nil
}

// Open attaches to pid. The first maps read doubles as the existence check.
func (p *LinuxProcess) Open(pid process.ProcessID) error {
	if pid <= 0 {
		return fmt.Errorf("attach: invalid pid %d", pid)
	}
	mm, err := memory_map.ReadMemoryMap(int(pid))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("attach: no process with pid %d", pid)
	}
	if err != nil {
		return fmt.Errorf("attach %d: %w", pid, err)
	}

	p.mu.Lock()
	p.pid = pid
	p.mm = mm
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("target-%d", pid)))
	p.mu.Unlock()

	p.log.Infoln("attached,", len(mm), "regions")
	return nil
}

func (p *LinuxProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pid != 0 {
		p.log.Infoln("detached")
	}
	p.pid = 0
	p.mm = nil
	p.log = detachedLogger()
	return nil
}

func (p *LinuxProcess) GetPID() process.ProcessID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pid
}

// UpdateMemoryMap rereads /proc/<pid>/maps. The target keeps allocating, so
// callers refresh when pointers start failing validation.
func (p *LinuxProcess) UpdateMemoryMap() error {
	pid := p.GetPID()
	if pid == 0 {
		return process.ErrProcessNotOpen
	}

	mm, err := memory_map.ReadMemoryMap(int(pid))
	if err != nil {
		return fmt.Errorf("reading regions of %d: %w", pid, err)
	}

	p.mu.Lock()
	p.mm = mm
	p.mu.Unlock()

	p.log.Debugln("regions refreshed,", len(mm))
	return nil
}

// IsValidAddress reports whether addr is user space and inside a readable region.
func (p *LinuxProcess) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	if addr <= minUserAddress || addr > maxUserAddress {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return memory_map.IsValidAddress(uint64(addr), p.mm)
}

func (p *LinuxProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.pid == 0 {
		return nil, process.ErrProcessNotOpen
	}
	return append([]memory_map.MemoryMapItem(nil), p.mm...), nil
}
