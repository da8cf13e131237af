package process

import (
	"fmt"
)

// ProcessMemoryAddress represents a memory address within a process
type ProcessMemoryAddress uint64

func (pma ProcessMemoryAddress) ToString() string {
	return fmt.Sprintf("0x%X", uint64(pma))
}

// AddOffset returns the address shifted by a signed byte offset.
// Offsets in reverse-engineered layouts are occasionally negative
// (fields located before a resolved anchor), so the arithmetic is
// done in the signed domain.
func (pma ProcessMemoryAddress) AddOffset(offset int64) ProcessMemoryAddress {
	return ProcessMemoryAddress(int64(pma) + offset)
}

// ProcessMemorySize represents a size of memory region
type ProcessMemorySize uint

func (pms ProcessMemorySize) ToString() string {
	return fmt.Sprintf("%d bytes", uint(pms))
}

// AOB (Array of Bytes) represents a pattern to search for in memory.
// Mask bytes select which pattern positions must match: 0xFF means the
// data byte must equal the pattern byte, 0x00 means any value matches
// (a wildcard position).
type AOB struct {
	Pattern []byte // The byte pattern to search for
	Mask    []byte // 0xFF exact match, 0x00 wildcard
}

// IsValid checks if the AOB pattern is valid
func (aob AOB) IsValid() bool {
	return len(aob.Pattern) > 0 && len(aob.Pattern) == len(aob.Mask)
}

func NewAOB(pattern, mask []byte) (AOB, error) {
	if len(pattern) != len(mask) {
		return AOB{}, fmt.Errorf("pattern and mask must be of the same length")
	}
	return AOB{Pattern: pattern, Mask: mask}, nil
}
