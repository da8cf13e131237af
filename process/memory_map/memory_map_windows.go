//go:build windows

package memory_map

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const memPrivate = 0x20000

// WindowsMemoryMap implements MemoryMap for Windows
type WindowsMemoryMap struct{}

// NewWindowsMemoryMap creates a new WindowsMemoryMap instance
func NewWindowsMemoryMap() *WindowsMemoryMap {
	return &WindowsMemoryMap{}
}

// ReadMemoryMap walks the process address space with VirtualQueryEx and
// returns every committed region. Region paths come from a Toolhelp32
// module snapshot so FindModule works the same as on Linux.
func (w *WindowsMemoryMap) ReadMemoryMap(pid int) ([]MemoryMapItem, error) {
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_INFORMATION, false, uint32(pid))
	if err != nil {
		return nil, fmt.Errorf("failed to open process %d: %w", pid, err)
	}
	defer windows.CloseHandle(handle)

	modules, err := readModuleList(uint32(pid))
	if err != nil {
		// A module list is nice to have; the address walk still works.
		modules = nil
	}

	var memoryMap []MemoryMapItem
	var addr uintptr
	for {
		var mbi windows.MemoryBasicInformation
		err := windows.VirtualQueryEx(handle, addr, &mbi, unsafe.Sizeof(mbi))
		if err != nil {
			break
		}
		if mbi.RegionSize == 0 {
			break
		}

		if mbi.State == windows.MEM_COMMIT {
			memoryMap = append(memoryMap, MemoryMapItem{
				Address: uint64(mbi.BaseAddress),
				Size:    uint(mbi.RegionSize),
				Perms:   protectToPerms(mbi.Protect, mbi.Type),
				Path:    moduleForAddress(uint64(mbi.BaseAddress), modules),
			})
		}

		next := mbi.BaseAddress + mbi.RegionSize
		if next <= addr {
			break
		}
		addr = next
	}

	return memoryMap, nil
}

type moduleEntry struct {
	path string
	base uint64
	size uint64
}

func readModuleList(pid uint32) ([]moduleEntry, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, pid)
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(snapshot)

	var me windows.ModuleEntry32
	me.Size = uint32(unsafe.Sizeof(me))

	var modules []moduleEntry
	err = windows.Module32First(snapshot, &me)
	for err == nil {
		modules = append(modules, moduleEntry{
			path: windows.UTF16ToString(me.ExePath[:]),
			base: uint64(me.ModBaseAddr),
			size: uint64(me.ModBaseSize),
		})
		err = windows.Module32Next(snapshot, &me)
	}

	return modules, nil
}

func moduleForAddress(addr uint64, modules []moduleEntry) string {
	for _, m := range modules {
		if addr >= m.base && addr < m.base+m.size {
			return m.path
		}
	}
	return ""
}

// protectToPerms renders PAGE_* protection flags in the /proc/pid/maps
// "rwxp" notation so permission checks are platform independent. Guard
// pages report as unreadable since touching one raises an exception in
// the target.
func protectToPerms(protect, memType uint32) string {
	perms := []byte("---s")
	if memType == memPrivate {
		perms[3] = 'p'
	}

	if protect&windows.PAGE_GUARD != 0 {
		return string(perms)
	}

	switch protect &^ (windows.PAGE_GUARD | windows.PAGE_NOCACHE | windows.PAGE_WRITECOMBINE) {
	case windows.PAGE_READONLY:
		perms[0] = 'r'
	case windows.PAGE_READWRITE, windows.PAGE_WRITECOPY:
		perms[0] = 'r'
		perms[1] = 'w'
	case windows.PAGE_EXECUTE:
		perms[2] = 'x'
	case windows.PAGE_EXECUTE_READ:
		perms[0] = 'r'
		perms[2] = 'x'
	case windows.PAGE_EXECUTE_READWRITE, windows.PAGE_EXECUTE_WRITECOPY:
		perms[0] = 'r'
		perms[1] = 'w'
		perms[2] = 'x'
	}

	return string(perms)
}

func (w *WindowsMemoryMap) IsReadablePerms(perms string) bool {
	return len(perms) > 0 && perms[0] == 'r'
}

func (w *WindowsMemoryMap) IsWritablePerms(perms string) bool {
	return len(perms) > 1 && perms[1] == 'w'
}

func (w *WindowsMemoryMap) IsExecutablePerms(perms string) bool {
	return len(perms) > 2 && perms[2] == 'x'
}
