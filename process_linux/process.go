//go:build linux

// Package process_linux attaches to live processes through /proc and
// the process_vm_readv/writev syscalls. It implements process.Process
// for Linux, which covers Windows games running under Wine or Proton
// as well: their modules show up in /proc/[pid]/maps like any other
// mapped file.
package process_linux

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"soulmem/process"
	"soulmem/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// LinuxProcess implements the process.Process interface for Linux systems
type LinuxProcess struct {
	process.TypedReader

	pid process.ProcessID
	log *logger.Logger
	mm  []memory_map.MemoryMapItem
	mu  sync.Mutex

	// useMemFile is set after process_vm_readv fails with EPERM, which
	// happens under restrictive ptrace_scope settings. Reads then go
	// through /proc/[pid]/mem instead.
	useMemFile bool
	memFile    *os.File
}

// New creates a new LinuxProcess instance
func New() process.Process {
	p := &LinuxProcess{
		log: logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open")),
	}
	p.TypedReader = process.TypedReader{Mem: p}
	return p
}

// NewWithPID creates a new LinuxProcess instance and opens it with the given PID
func NewWithPID(pid process.ProcessID) (process.Process, error) {
	p := New()
	if err := p.Open(pid); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *LinuxProcess) Open(pid process.ProcessID) error {
	procPath := fmt.Sprintf("/proc/%d", pid)
	if _, err := os.Stat(procPath); os.IsNotExist(err) {
		return fmt.Errorf("process with PID %d does not exist", pid)
	}

	p.mu.Lock()
	p.pid = pid
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))
	p.mu.Unlock()

	// Initialize memory map - call without holding the lock to avoid deadlock
	if err := p.UpdateMemoryMap(); err != nil {
		return fmt.Errorf("failed to initialize memory map: %w", err)
	}

	p.log.Infoln("Process opened")

	return nil
}

func (p *LinuxProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Infoln("Closing process")

	if p.memFile != nil {
		p.memFile.Close()
		p.memFile = nil
	}

	p.pid = 0
	p.mm = nil
	p.useMemFile = false

	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))

	return nil
}

// GetPID returns the process ID
func (p *LinuxProcess) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

func (p *LinuxProcess) UpdateMemoryMap() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pid == 0 {
		return process.ErrProcessNotOpen
	}

	linuxMemMap := memory_map.NewLinuxMemoryMap()
	mm, err := linuxMemMap.ReadMemoryMap(int(p.pid))
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

func (p *LinuxProcess) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.isValidAddressInternal(addr)
}

// Internal helper function that assumes the mutex is already locked.
// The range guards reject small-integer and kernel-half values before
// the map lookup; pointer chain walks feed plenty of both through here.
func (p *LinuxProcess) isValidAddressInternal(addr process.ProcessMemoryAddress) bool {
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
func (p *LinuxProcess) isWritableAddressInternal(addr process.ProcessMemoryAddress) bool {
	if item := memory_map.IsValidAddress2(uint64(addr), p.mm); item != nil {
		return item.IsWritable()
	}
	return false
}

func (p *LinuxProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pid == 0 {
		return nil, process.ErrProcessNotOpen
	}

	// Make a copy of the memory map to prevent external modification
	result := make([]memory_map.MemoryMapItem, len(p.mm))
	copy(result, p.mm)

	return result, nil
}

func (p *LinuxProcess) FindModule(name string) (memory_map.ModuleRegion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pid == 0 {
		return memory_map.ModuleRegion{}, process.ErrProcessNotOpen
	}

	region := memory_map.FindModule(name, p.mm)
	if region == nil {
		return memory_map.ModuleRegion{}, fmt.Errorf("module %q: %w", name, process.ErrModuleNotFound)
	}
	return *region, nil
}
