package memory_map

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// MemoryMapItem represents a memory region in a process's address space
type MemoryMapItem struct {
	Address uint64 // The starting address of the memory region
	Size    uint   // The size of the memory region in bytes
	Perms   string // Permissions (e.g., "r-xp" for read, execute, private)
	Path    string // Backing file path, empty for anonymous mappings
}

// String returns a string representation of the memory map item
func (mmItem MemoryMapItem) String() string {
	return fmt.Sprintf("Address: %x, Size: %d, Perms: %s, Path: %s", mmItem.Address, mmItem.Size, mmItem.Perms, mmItem.Path)
}

func (mmItem MemoryMapItem) IsReadable() bool {
	return mmItem.Perms[0] == 'r'
}

func (mmItem MemoryMapItem) IsWritable() bool {
	return mmItem.Perms[1] == 'w'
}

// ModuleRegion describes the contiguous span of regions backed by one
// loaded module (executable or shared object). Size covers from the
// first to the last mapping of that file, holes included, which is the
// span pattern scans over a module care about.
type ModuleRegion struct {
	Path    string
	Address uint64
	Size    uint
}

// MemoryMap defines the interface for operations related to a process's memory map
type MemoryMap interface {
	// ReadMemoryMap reads and parses the memory map for a process
	ReadMemoryMap(pid int) ([]MemoryMapItem, error)

	// IsReadablePerms checks if a memory region has read permissions
	IsReadablePerms(perms string) bool

	// IsWritablePerms checks if a memory region has write permissions
	IsWritablePerms(perms string) bool

	// IsExecutablePerms checks if a memory region has execute permissions
	IsExecutablePerms(perms string) bool
}

// Helper functions for working with memory maps

// IsValidAddress checks if an address is within a valid, readable memory region
func IsValidAddress(addr uint64, memoryMap []MemoryMapItem) bool {
	for _, item := range memoryMap {
		end := item.Address + uint64(item.Size)
		if addr >= item.Address && addr < end {
			return true
		}
	}
	return false
}

// IsValidAddress2 is the binary-search variant of IsValidAddress for
// maps already sorted by address. Hot paths (pointer chain walks) call
// this once per dereference.
func IsValidAddress2(addr uint64, memoryMap []MemoryMapItem) *MemoryMapItem {
	i := sort.Search(len(memoryMap), func(i int) bool {
		return memoryMap[i].Address+uint64(memoryMap[i].Size) > addr
	})
	if i < len(memoryMap) && memoryMap[i].Address <= addr {
		return &memoryMap[i]
	}

	return nil
}

// GetMemoryRegionForAddress returns the memory region containing an address
func GetMemoryRegionForAddress(addr uint64, memoryMap []MemoryMapItem) *MemoryMapItem {
	for _, item := range memoryMap {
		end := item.Address + uint64(item.Size)
		if addr >= item.Address && addr < end {
			return &item
		}
	}
	return nil
}

// FindModule locates the module whose file basename matches name
// (case-insensitive) and coalesces all of its mappings into a single
// ModuleRegion. The map must be sorted by address. Returns nil when no
// mapping is backed by a file of that name.
//
// Case folding matters in practice: a Windows game under Wine may map
// "DarkSoulsIII.exe" while callers configure "darksoulsiii.exe".
func FindModule(name string, memoryMap []MemoryMapItem) *ModuleRegion {
	want := strings.ToLower(name)

	var region *ModuleRegion
	for _, item := range memoryMap {
		if item.Path == "" {
			continue
		}
		if strings.ToLower(filepath.Base(item.Path)) != want {
			continue
		}
		if region == nil {
			region = &ModuleRegion{
				Path:    item.Path,
				Address: item.Address,
				Size:    item.Size,
			}
			continue
		}
		if item.Path != region.Path {
			// Same basename from a different directory; keep the first hit.
			continue
		}
		end := item.Address + uint64(item.Size)
		region.Size = uint(end - region.Address)
	}

	return region
}
