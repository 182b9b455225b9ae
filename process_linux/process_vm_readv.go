//go:build linux

package process_linux

import (
	"fmt"
	"unsafe"

	"gosight/process"

	"golang.org/x/sys/unix"
)

// iovMax is the kernel's per-call iovec limit (UIO_MAXIOV).
const iovMax = 1024

// process_vm_readv transfers every remote range into the matching local buffer
// in one syscall. It returns the number of bytes copied. The kernel stops at
// the first remote iovec it cannot read, so a short count identifies the
// first failing entry.
func process_vm_readv(pid process.ProcessID, local []unix.Iovec, remote []unix.RemoteIovec) (int, error) {
	n, _, errno := unix.Syscall6(
		unix.SYS_PROCESS_VM_READV,
		uintptr(pid),
		uintptr(unsafe.Pointer(&local[0])),
		uintptr(len(local)),
		uintptr(unsafe.Pointer(&remote[0])),
		uintptr(len(remote)),
		uintptr(0),
	)

	if errno != 0 {
		return 0, fmt.Errorf("process_vm_readv failed: %s (errno: %d)", errno.Error(), errno)
	}

	return int(n), nil
}

func (p *LinuxProcess) pidIfOpen() (process.ProcessID, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.pid == 0 {
		return 0, process.ErrProcessNotOpen
	}
	return p.pid, nil
}

// ReadMemory reads memory from the process at the specified address
func (p *LinuxProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	pid, err := p.pidIfOpen()
	if err != nil {
		return nil, err
	}

	if size == 0 {
		return []byte{}, nil
	}

	if addr <= minUserAddress || addr > maxUserAddress {
		return nil, process.ErrAddressNotMapped
	}

	buf := make([]byte, size)
	local := []unix.Iovec{{Base: &buf[0], Len: uint64(size)}}
	remote := []unix.RemoteIovec{{Base: uintptr(addr), Len: int(size)}}

	n, err := process_vm_readv(pid, local, remote)
	if err != nil {
		return nil, fmt.Errorf("read 0x%x (%d bytes): %w", addr, size, err)
	}

	if n != int(size) {
		return nil, fmt.Errorf("read 0x%x: %d of %d bytes: %w", addr, n, size, process.ErrPartialRead)
	}

	return buf, nil
}

// ReadBlobs reads size bytes at every address using as few syscalls as the
// kernel allows. An entry the kernel refuses is marked failed and the
// transfer resumes with the entry after it.
func (p *LinuxProcess) ReadBlobs(list []process.ProcessMemoryAddress, size process.ProcessMemorySize) []process.ReadBlobsResult {
	results := make([]process.ReadBlobsResult, len(list))
	for i, addr := range list {
		results[i].Address = addr
	}

	pid, err := p.pidIfOpen()
	if err != nil {
		for i := range results {
			results[i].Err = err
		}
		return results
	}

	if size == 0 {
		for i := range results {
			results[i].Data = []byte{}
		}
		return results
	}

	// index of every entry still worth asking the kernel for
	pending := make([]int, 0, len(list))
	for i, addr := range list {
		if addr <= minUserAddress || addr > maxUserAddress {
			results[i].Err = process.ErrAddressNotMapped
			continue
		}
		pending = append(pending, i)
	}

	for len(pending) > 0 {
		chunk := pending
		if len(chunk) > iovMax {
			chunk = chunk[:iovMax]
		}

		bufs := make([][]byte, len(chunk))
		local := make([]unix.Iovec, len(chunk))
		remote := make([]unix.RemoteIovec, len(chunk))
		for j, idx := range chunk {
			bufs[j] = make([]byte, size)
			local[j] = unix.Iovec{Base: &bufs[j][0], Len: uint64(size)}
			remote[j] = unix.RemoteIovec{Base: uintptr(list[idx]), Len: int(size)}
		}

		n, err := process_vm_readv(pid, local, remote)
		if err != nil {
			n = 0
		}

		done := n / int(size)
		for j := 0; j < done; j++ {
			results[chunk[j]].Data = bufs[j]
		}

		if done == len(chunk) {
			pending = pending[len(chunk):]
			continue
		}

		failed := chunk[done]
		if err != nil {
			results[failed].Err = fmt.Errorf("read 0x%x: %w", list[failed], err)
		} else {
			results[failed].Err = fmt.Errorf("read 0x%x: %w", list[failed], process.ErrPartialRead)
		}
		pending = pending[done+1:]
	}

	return results
}
