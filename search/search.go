// Package search walks pointer graphs looking for offset paths that
// lead from a base address to a target value. It is the discovery half
// of pointer chain work: once a stable path is found it becomes a
// pointer.Chain in a game preset.
package search

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"soulmem/pointer"
	"soulmem/process"
)

// Searcher holds configuration for the search
type Searcher struct {
	// MaxStructSize is how many bytes of each visited struct are examined
	MaxStructSize uint

	// MaxDepth is how many pointer hops may separate base and target
	MaxDepth int

	// MinAlignment is the step between candidate offsets
	MinAlignment uint

	// SearchFor reports whether the bytes at a candidate offset match
	SearchFor func([]byte) bool
}

// Option is a function that configures a Searcher
type Option func(*Searcher)

func WithMaxStructSize(size uint) Option {
	return func(s *Searcher) {
		s.MaxStructSize = size
	}
}

func WithMaxDepth(depth int) Option {
	return func(s *Searcher) {
		s.MaxDepth = depth
	}
}

func WithMinAlignment(align uint) Option {
	return func(s *Searcher) {
		s.MinAlignment = align
	}
}

// WithSearchForType matches the little-endian in-memory encoding of
// val. T must be POD.
func WithSearchForType[T any](val T) Option {
	return func(s *Searcher) {
		valBytes := make([]byte, unsafe.Sizeof(val))
		copy(valBytes, unsafe.Slice((*byte)(unsafe.Pointer(&val)), len(valBytes)))
		s.SearchFor = func(data []byte) bool {
			if len(data) < len(valBytes) {
				return false
			}
			for i := range valBytes {
				if data[i] != valBytes[i] {
					return false
				}
			}
			return true
		}
	}
}

// Result is a found offset path. Every offset except the last is a
// dereference step, the last is an addend: exactly the shape
// pointer.Chain expects.
type Result struct {
	Path []int64
}

// Chain converts the path into a resolvable pointer chain rooted at base.
func (r Result) Chain(mem process.MemoryReader, base process.ProcessMemoryAddress) pointer.Chain {
	return pointer.New(mem, true, base, r.Path...)
}

// Search recursively explores structs reachable from base and returns
// every offset path at which the configured target value was found.
func Search(proc process.Process, base process.ProcessMemoryAddress, options ...Option) ([]Result, error) {
	s := &Searcher{
		MaxStructSize: 256,
		MaxDepth:      3,
		MinAlignment:  4,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.SearchFor == nil {
		return nil, fmt.Errorf("no search target specified")
	}

	var results []Result
	visited := make(map[process.ProcessMemoryAddress]bool)

	var searchRecursive func(addr process.ProcessMemoryAddress, depth int, path []int64)
	searchRecursive = func(addr process.ProcessMemoryAddress, depth int, path []int64) {
		if depth > s.MaxDepth {
			return
		}
		if visited[addr] {
			return
		}
		visited[addr] = true

		data, err := proc.ReadMemory(addr, process.ProcessMemorySize(s.MaxStructSize))
		if err != nil {
			// Struct may be smaller than MaxStructSize or straddle an
			// unmapped page; skip rather than fail the whole search
			return
		}

		for offset := uint(0); offset < s.MaxStructSize; offset += s.MinAlignment {
			if offset+s.MinAlignment > uint(len(data)) {
				break
			}

			if s.SearchFor(data[offset:]) {
				newPath := make([]int64, len(path), len(path)+1)
				copy(newPath, path)
				newPath = append(newPath, int64(offset))

				results = append(results, Result{Path: newPath})
			}

			// Pointer slots are assumed 8-byte aligned
			if offset%8 == 0 && depth < s.MaxDepth && offset+8 <= uint(len(data)) {
				ptrVal := binary.LittleEndian.Uint64(data[offset:])

				if ptrVal != 0 && proc.IsValidAddress(process.ProcessMemoryAddress(ptrVal)) {
					newPath := make([]int64, len(path), len(path)+1)
					copy(newPath, path)
					newPath = append(newPath, int64(offset))

					searchRecursive(process.ProcessMemoryAddress(ptrVal), depth+1, newPath)
				}
			}
		}
	}

	searchRecursive(base, 0, []int64{})

	return results, nil
}
