package process

import (
	"encoding/binary"
	"math"
)

// TypedReader derives every ProcessRead method from a single raw
// MemoryReader. Backends embed it so the typed surface stays identical
// across live processes and snapshots.
//
// All multi-byte reads are little-endian, matching the x86-64 targets
// this library is built for.
type TypedReader struct {
	Mem MemoryReader
}

func (t TypedReader) ReadUINT8(addr ProcessMemoryAddress) (uint8, error) {
	data, err := t.Mem.ReadMemory(addr, 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

func (t TypedReader) ReadUINT16(addr ProcessMemoryAddress) (uint16, error) {
	data, err := t.Mem.ReadMemory(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(data), nil
}

func (t TypedReader) ReadUINT32(addr ProcessMemoryAddress) (uint32, error) {
	data, err := t.Mem.ReadMemory(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(data), nil
}

func (t TypedReader) ReadUINT64(addr ProcessMemoryAddress) (uint64, error) {
	data, err := t.Mem.ReadMemory(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(data), nil
}

func (t TypedReader) ReadINT8(addr ProcessMemoryAddress) (int8, error) {
	v, err := t.ReadUINT8(addr)
	return int8(v), err
}

func (t TypedReader) ReadINT16(addr ProcessMemoryAddress) (int16, error) {
	v, err := t.ReadUINT16(addr)
	return int16(v), err
}

func (t TypedReader) ReadINT32(addr ProcessMemoryAddress) (int32, error) {
	v, err := t.ReadUINT32(addr)
	return int32(v), err
}

func (t TypedReader) ReadINT64(addr ProcessMemoryAddress) (int64, error) {
	v, err := t.ReadUINT64(addr)
	return int64(v), err
}

func (t TypedReader) ReadFLOAT32(addr ProcessMemoryAddress) (float32, error) {
	v, err := t.ReadUINT32(addr)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (t TypedReader) ReadFLOAT64(addr ProcessMemoryAddress) (float64, error) {
	v, err := t.ReadUINT64(addr)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (t TypedReader) ReadPOINTER(addr ProcessMemoryAddress) (ProcessMemoryAddress, error) {
	v, err := t.ReadUINT64(addr)
	return ProcessMemoryAddress(v), err
}

// ReadPOINTER2 is the error-swallowing variant used by pointer chain
// walks, where an unreadable slot means the chain is simply dead. A
// null result and a failed read are deliberately indistinguishable.
func (t TypedReader) ReadPOINTER2(addr ProcessMemoryAddress) ProcessMemoryAddress {
	v, err := t.ReadPOINTER(addr)
	if err != nil {
		return 0
	}
	return v
}
