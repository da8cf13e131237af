// Package pointer implements multi-level pointer chain resolution, the
// addressing scheme reverse-engineered game structures are reached
// through: a static base plus a list of offsets, where every offset but
// the last is dereferenced and the last is a plain byte offset into the
// final struct.
package pointer

import (
	"fmt"
	"strings"

	"soulmem/process"
)

// Chain is an immutable pointer chain over a memory reader. Methods
// that change the shape (Append, RebaseFromAddress) return a new Chain
// and leave the receiver untouched, so a preset chain can be shared and
// specialized per lookup.
//
// Example:
//
//	// eventFlagMan -> *(base+0x218) -> *(+0x30) -> final +0x0
//	chain := pointer.New(proc, true, eventFlagMan, 0x218, 0x30, 0x0)
//	addr := chain.Resolve()
type Chain struct {
	rd      process.TypedReader
	is64    bool
	base    process.ProcessMemoryAddress
	offsets []int64
}

// New builds a chain over mem. is64 selects the pointer width the
// dereference steps read: 8 bytes when set, 4 otherwise.
func New(mem process.MemoryReader, is64 bool, base process.ProcessMemoryAddress, offsets ...int64) Chain {
	return Chain{
		rd:      process.TypedReader{Mem: mem},
		is64:    is64,
		base:    base,
		offsets: append([]int64(nil), offsets...),
	}
}

// Base returns the chain's base address.
func (c Chain) Base() process.ProcessMemoryAddress {
	return c.base
}

// Offsets returns a copy of the chain's offsets.
func (c Chain) Offsets() []int64 {
	return append([]int64(nil), c.offsets...)
}

// Resolve walks the chain: each offset except the last names a pointer
// slot to dereference, the last is added to the final struct address.
// With no offsets the base is returned as is. A null or unreadable
// pointer anywhere in the walk resolves the whole chain to 0.
func (c Chain) Resolve() process.ProcessMemoryAddress {
	return c.resolve(c.offsets)
}

// IsNull reports whether the chain currently resolves to 0.
func (c Chain) IsNull() bool {
	return c.Resolve() == 0
}

// Append returns a new chain with the offsets added at the end. Note
// that appending changes the role of the receiver's last offset: it
// was a plain byte offset and becomes a dereference step.
func (c Chain) Append(offsets ...int64) Chain {
	combined := make([]int64, 0, len(c.offsets)+len(offsets))
	combined = append(combined, c.offsets...)
	combined = append(combined, offsets...)
	return Chain{rd: c.rd, is64: c.is64, base: c.base, offsets: combined}
}

// RebaseFromAddress dereferences every level of the chain, optional
// extra steps included, and returns a new flat chain rooted at the
// resulting address. Traversal code uses this to walk container
// structures without the chains growing without bound.
func (c Chain) RebaseFromAddress(extra ...int64) Chain {
	combined := make([]int64, 0, len(c.offsets)+len(extra)+1)
	combined = append(combined, c.offsets...)
	combined = append(combined, extra...)
	combined = append(combined, 0)
	return Chain{rd: c.rd, is64: c.is64, base: c.resolve(combined)}
}

// Hop records one dereference taken during a chain walk.
type Hop struct {
	Address process.ProcessMemoryAddress // where the pointer slot sits
	Value   process.ProcessMemoryAddress // what it contained, 0 on failure
}

// ResolveTrace resolves like Resolve while recording every dereference,
// for interactive chain debugging.
func (c Chain) ResolveTrace() ([]Hop, process.ProcessMemoryAddress) {
	if len(c.offsets) == 0 {
		return nil, c.base
	}

	addr := c.base
	hops := make([]Hop, 0, len(c.offsets)-1)
	for _, off := range c.offsets[:len(c.offsets)-1] {
		slot := addr.AddOffset(off)
		value := c.readPointer(slot)
		hops = append(hops, Hop{Address: slot, Value: value})
		if value == 0 {
			return hops, 0
		}
		addr = value
	}
	return hops, addr.AddOffset(c.offsets[len(c.offsets)-1])
}

func (c Chain) String() string {
	parts := make([]string, 0, len(c.offsets)+1)
	parts = append(parts, c.base.ToString())
	for _, off := range c.offsets {
		if off < 0 {
			parts = append(parts, fmt.Sprintf("-0x%X", uint64(-off)))
		} else {
			parts = append(parts, fmt.Sprintf("0x%X", uint64(off)))
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (c Chain) resolve(offsets []int64) process.ProcessMemoryAddress {
	addr := c.base
	if len(offsets) == 0 {
		return addr
	}

	for _, off := range offsets[:len(offsets)-1] {
		next := c.readPointer(addr.AddOffset(off))
		if next == 0 {
			return 0
		}
		addr = next
	}
	return addr.AddOffset(offsets[len(offsets)-1])
}

func (c Chain) readPointer(addr process.ProcessMemoryAddress) process.ProcessMemoryAddress {
	if c.is64 {
		value, err := c.rd.ReadUINT64(addr)
		if err != nil {
			return 0
		}
		return process.ProcessMemoryAddress(value)
	}

	value, err := c.rd.ReadUINT32(addr)
	if err != nil {
		return 0
	}
	return process.ProcessMemoryAddress(value)
}

// resolveExtra resolves the chain with extra offsets appended, the
// shared entry point of the typed reads below.
func (c Chain) resolveExtra(extra []int64) process.ProcessMemoryAddress {
	if len(extra) == 0 {
		return c.resolve(c.offsets)
	}
	combined := make([]int64, 0, len(c.offsets)+len(extra))
	combined = append(combined, c.offsets...)
	combined = append(combined, extra...)
	return c.resolve(combined)
}

// ReadUINT8 resolves the chain, with any extra offsets appended first,
// and reads a byte at the result. Returns 0 when the chain is dead or
// the read fails; chain reads are probes, not assertions.
func (c Chain) ReadUINT8(extra ...int64) uint8 {
	addr := c.resolveExtra(extra)
	if addr == 0 {
		return 0
	}
	value, err := c.rd.ReadUINT8(addr)
	if err != nil {
		return 0
	}
	return value
}

// ReadINT32 is ReadUINT8 for a signed 32-bit value.
func (c Chain) ReadINT32(extra ...int64) int32 {
	addr := c.resolveExtra(extra)
	if addr == 0 {
		return 0
	}
	value, err := c.rd.ReadINT32(addr)
	if err != nil {
		return 0
	}
	return value
}

// ReadUINT32 is ReadUINT8 for an unsigned 32-bit value.
func (c Chain) ReadUINT32(extra ...int64) uint32 {
	addr := c.resolveExtra(extra)
	if addr == 0 {
		return 0
	}
	value, err := c.rd.ReadUINT32(addr)
	if err != nil {
		return 0
	}
	return value
}

// ReadINT64 is ReadUINT8 for a signed 64-bit value.
func (c Chain) ReadINT64(extra ...int64) int64 {
	addr := c.resolveExtra(extra)
	if addr == 0 {
		return 0
	}
	value, err := c.rd.ReadINT64(addr)
	if err != nil {
		return 0
	}
	return value
}

// ReadUINT64 is ReadUINT8 for an unsigned 64-bit value.
func (c Chain) ReadUINT64(extra ...int64) uint64 {
	addr := c.resolveExtra(extra)
	if addr == 0 {
		return 0
	}
	value, err := c.rd.ReadUINT64(addr)
	if err != nil {
		return 0
	}
	return value
}

// ReadFLOAT32 is ReadUINT8 for a 32-bit float.
func (c Chain) ReadFLOAT32(extra ...int64) float32 {
	addr := c.resolveExtra(extra)
	if addr == 0 {
		return 0
	}
	value, err := c.rd.ReadFLOAT32(addr)
	if err != nil {
		return 0
	}
	return value
}
