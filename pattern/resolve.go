package pattern

import (
	"encoding/binary"

	"soulmem/process"
)

// ResolveRIPRelative decodes the 32-bit displacement a matched x86-64
// instruction carries at match+dispOffset and returns the absolute
// address it refers to:
//
//	target = match + instructionLen + displacement
//
// The displacement is signed; targets before the instruction are
// common. dispOffset is where the 4 displacement bytes sit inside the
// instruction and instructionLen is the full encoded length, since the
// CPU computes RIP-relative operands from the address of the next
// instruction.
func ResolveRIPRelative(r process.MemoryReader, match process.ProcessMemoryAddress, dispOffset, instructionLen uint) (process.ProcessMemoryAddress, error) {
	data, err := r.ReadMemory(match.AddOffset(int64(dispOffset)), 4)
	if err != nil {
		return 0, err
	}
	displacement := int32(binary.LittleEndian.Uint32(data))
	return match.AddOffset(int64(instructionLen) + int64(displacement)), nil
}

// ResolveDeref reads the pointer-width value at match+offset. Used for
// anchors where the signature lands on (or near) an absolute pointer
// slot rather than a RIP-relative instruction.
func ResolveDeref(r process.MemoryReader, match process.ProcessMemoryAddress, offset int64) (process.ProcessMemoryAddress, error) {
	data, err := r.ReadMemory(match.AddOffset(offset), 8)
	if err != nil {
		return 0, err
	}
	return process.ProcessMemoryAddress(binary.LittleEndian.Uint64(data)), nil
}
