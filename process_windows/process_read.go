//go:build windows

package process_windows

import (
	"fmt"
	"unsafe"

	"soulmem/process"
)

// ReadMemory reads memory from the process at the specified address
func (p *WindowsProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	p.mu.Lock()
	handle := p.handle
	valid := p.isValidAddressInternal(addr)
	p.mu.Unlock()

	if handle == 0 {
		return nil, process.ErrProcessNotOpen
	}
	if !valid {
		return nil, process.ErrAddressNotMapped
	}

	buf := make([]byte, size)
	var bytesRead uintptr
	ret, _, err := procReadProcessMemory.Call(
		uintptr(handle),
		uintptr(addr),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(size),
		uintptr(unsafe.Pointer(&bytesRead)),
	)

	if ret == 0 {
		return nil, fmt.Errorf("ReadProcessMemory failed: %v", err)
	}

	if bytesRead != uintptr(size) {
		return nil, fmt.Errorf("partial read: %d of %d bytes", bytesRead, size)
	}

	return buf, nil
}

// WriteMemory writes data to the process memory at the specified address
func (p *WindowsProcess) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	p.mu.Lock()
	handle := p.handle
	writable := p.isWritableAddressInternal(addr)
	p.mu.Unlock()

	if handle == 0 {
		return process.ErrProcessNotOpen
	}
	if !writable {
		return fmt.Errorf("memory region at %x is not writable", addr)
	}

	var bytesWritten uintptr
	ret, _, err := procWriteProcessMemory.Call(
		uintptr(handle),
		uintptr(addr),
		uintptr(unsafe.Pointer(&data[0])),
		uintptr(len(data)),
		uintptr(unsafe.Pointer(&bytesWritten)),
	)

	if ret == 0 {
		return fmt.Errorf("WriteProcessMemory failed: %v", err)
	}

	if bytesWritten != uintptr(len(data)) {
		return fmt.Errorf("only wrote %d of %d bytes", bytesWritten, len(data))
	}

	return nil
}
