// Package process_blob holds captured process memory: a Blob is one
// contiguous region, a Snapshot is a set of regions that behaves like
// a full process. Snapshots back two things: offline analysis of dump
// directories written by Capture, and deterministic in-memory fixtures
// for code that is normally pointed at a live game.
package process_blob

import (
	"soulmem/process"
)

// Blob is a single contiguous captured memory region.
type Blob struct {
	Address process.ProcessMemoryAddress
	Data    []byte
}

func NewBlob(addr process.ProcessMemoryAddress, data []byte) Blob {
	return Blob{Address: addr, Data: data}
}

// End returns the first address past the region.
func (b Blob) End() process.ProcessMemoryAddress {
	return b.Address + process.ProcessMemoryAddress(len(b.Data))
}

// Contains reports whether [addr, addr+size) lies fully inside the region.
func (b Blob) Contains(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) bool {
	return addr >= b.Address && addr.AddOffset(int64(size)) <= b.End()
}

// ReadMemory implements process.MemoryReader over the region. The
// returned slice is a copy; callers may retain or modify it.
func (b Blob) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if !b.Contains(addr, size) {
		return nil, process.ErrAddressNotMapped
	}
	offset := uint64(addr - b.Address)
	out := make([]byte, size)
	copy(out, b.Data[offset:])
	return out, nil
}

var _ process.MemoryReader = Blob{}
