//go:build windows

// Package process_windows attaches to live processes through the
// kernel32 debug APIs. It implements process.Process for Windows.
package process_windows

import (
	"fmt"
	"sort"
	"sync"
	"syscall"

	"soulmem/process"
	"soulmem/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var (
	modkernel32            = syscall.NewLazyDLL("kernel32.dll")
	procOpenProcess        = modkernel32.NewProc("OpenProcess")
	procReadProcessMemory  = modkernel32.NewProc("ReadProcessMemory")
	procWriteProcessMemory = modkernel32.NewProc("WriteProcessMemory")
	procCloseHandle        = modkernel32.NewProc("CloseHandle")
)

const (
	PROCESS_ALL_ACCESS        = 0x1F0FFF
	PROCESS_VM_READ           = 0x0010
	PROCESS_QUERY_INFORMATION = 0x0400
)

// WindowsProcess implements the process.Process interface for Windows systems
type WindowsProcess struct {
	process.TypedReader

	pid    process.ProcessID
	handle syscall.Handle
	log    *logger.Logger
	mm     []memory_map.MemoryMapItem
	mu     sync.Mutex
}

// New creates a new WindowsProcess instance
func New() process.Process {
	p := &WindowsProcess{
		log: logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open")),
	}
	p.TypedReader = process.TypedReader{Mem: p}
	return p
}

// NewWithPID creates a new WindowsProcess instance and opens it with the given PID
func NewWithPID(pid process.ProcessID) (process.Process, error) {
	p := New()
	if err := p.Open(pid); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *WindowsProcess) Open(pid process.ProcessID) error {
	handle, _, err := procOpenProcess.Call(uintptr(PROCESS_ALL_ACCESS), 0, uintptr(pid))
	if handle == 0 {
		return fmt.Errorf("OpenProcess failed: %v", err)
	}

	p.mu.Lock()
	p.pid = pid
	p.handle = syscall.Handle(handle)
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))
	p.mu.Unlock()

	if err := p.UpdateMemoryMap(); err != nil {
		return fmt.Errorf("failed to initialize memory map: %w", err)
	}

	p.log.Infoln("Process opened")
	return nil
}

func (p *WindowsProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Infoln("Closing process")

	if p.handle != 0 {
		ret, _, err := procCloseHandle.Call(uintptr(p.handle))
		if ret == 0 {
			return fmt.Errorf("CloseHandle failed: %v", err)
		}
		p.handle = 0
	}

	p.pid = 0
	p.mm = nil
	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))

	return nil
}

func (p *WindowsProcess) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

func (p *WindowsProcess) UpdateMemoryMap() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == 0 {
		return process.ErrProcessNotOpen
	}

	winMemMap := memory_map.NewWindowsMemoryMap()
	mm, err := winMemMap.ReadMemoryMap(int(p.pid))
	if err != nil {
		return fmt.Errorf("failed to read memory map: %w", err)
	}

	// IsValidAddress2 requires the memory map to be sorted by address
	sort.Slice(mm, func(i, j int) bool {
		return mm[i].Address < mm[j].Address
	})

	p.mm = mm
	return nil
}

func (p *WindowsProcess) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isValidAddressInternal(addr)
}

// Internal helper function that assumes the mutex is already locked
func (p *WindowsProcess) isValidAddressInternal(addr process.ProcessMemoryAddress) bool {
	if addr <= 0x10000 {
		return false
	}
	if addr > 0x7fffffffffff {
		return false
	}

	if item := memory_map.IsValidAddress2(uint64(addr), p.mm); item != nil {
		return item.IsReadable()
	}
	return false
}

// Internal helper function that assumes the mutex is already locked
func (p *WindowsProcess) isWritableAddressInternal(addr process.ProcessMemoryAddress) bool {
	if item := memory_map.IsValidAddress2(uint64(addr), p.mm); item != nil {
		return item.IsWritable()
	}
	return false
}

func (p *WindowsProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle == 0 {
		return nil, process.ErrProcessNotOpen
	}

	result := make([]memory_map.MemoryMapItem, len(p.mm))
	copy(result, p.mm)
	return result, nil
}

func (p *WindowsProcess) FindModule(name string) (memory_map.ModuleRegion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle == 0 {
		return memory_map.ModuleRegion{}, process.ErrProcessNotOpen
	}

	region := memory_map.FindModule(name, p.mm)
	if region == nil {
		return memory_map.ModuleRegion{}, fmt.Errorf("module %q: %w", name, process.ErrModuleNotFound)
	}
	return *region, nil
}
