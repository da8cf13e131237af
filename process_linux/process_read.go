//go:build linux

package process_linux

import (
	"fmt"
	"os"
	"unsafe"

	"soulmem/process"

	"golang.org/x/sys/unix"
)

// process_vm_readv uses the process_vm_readv syscall to read memory from another process
func process_vm_readv(
	pid process.ProcessID,
	remoteAddr process.ProcessMemoryAddress,
	bytesToRead process.ProcessMemorySize,
) ([]byte, error) {
	localBuf := make([]byte, bytesToRead)

	localIov := unix.Iovec{
		Base: &localBuf[0],
		Len:  uint64(bytesToRead),
	}

	remoteIov := unix.RemoteIovec{
		Base: uintptr(remoteAddr),
		Len:  int(bytesToRead),
	}

	n, _, errno := unix.Syscall6(
		unix.SYS_PROCESS_VM_READV,
		uintptr(pid),                        // Remote process PID
		uintptr(unsafe.Pointer(&localIov)),  // Local iovec
		uintptr(1),                          // Number of local iovecs
		uintptr(unsafe.Pointer(&remoteIov)), // Remote iovec
		uintptr(1),                          // Number of remote iovecs
		uintptr(0),                          // Flags (reserved for future use)
	)

	if errno != 0 {
		if errno == unix.EPERM {
			return nil, errno
		}
		return nil, fmt.Errorf("process_vm_readv failed: %s (errno: %d)", errno.Error(), errno)
	}

	if int(n) != int(bytesToRead) {
		return localBuf[:n], fmt.Errorf("partial read: %d of %d bytes", n, bytesToRead)
	}

	return localBuf, nil
}

// readMemFile reads through /proc/[pid]/mem with pread. Slower than
// the vectored syscall but works under some Yama ptrace_scope
// configurations where process_vm_readv is denied.
func (p *LinuxProcess) readMemFile(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	p.mu.Lock()
	f := p.memFile
	pid := p.pid
	p.mu.Unlock()

	if f == nil {
		var err error
		f, err = os.Open(fmt.Sprintf("/proc/%d/mem", pid))
		if err != nil {
			return nil, fmt.Errorf("open mem file: %w", err)
		}
		p.mu.Lock()
		if p.memFile == nil {
			p.memFile = f
		} else {
			f.Close()
			f = p.memFile
		}
		p.mu.Unlock()
	}

	buf := make([]byte, size)
	n, err := f.ReadAt(buf, int64(addr))
	if err != nil {
		return nil, fmt.Errorf("mem file read at 0x%x: %w", addr, err)
	}
	if n != int(size) {
		return buf[:n], fmt.Errorf("partial read: %d of %d bytes", n, size)
	}
	return buf, nil
}

// ReadMemory reads memory from the process at the specified address
func (p *LinuxProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	p.mu.Lock()
	pid := p.pid
	valid := p.isValidAddressInternal(addr)
	useMemFile := p.useMemFile
	p.mu.Unlock()

	if pid == 0 {
		return nil, process.ErrProcessNotOpen
	}
	if !valid {
		return nil, process.ErrAddressNotMapped
	}

	if useMemFile {
		return p.readMemFile(addr, size)
	}

	// System call without holding the lock
	data, err := process_vm_readv(pid, addr, size)
	if err == unix.EPERM {
		p.mu.Lock()
		p.useMemFile = true
		p.mu.Unlock()
		p.log.Warnln("process_vm_readv denied, falling back to /proc/[pid]/mem")
		return p.readMemFile(addr, size)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read process memory: %w", err)
	}

	return data, nil
}
