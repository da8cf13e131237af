package pattern

import (
	"fmt"

	"soulmem/process"
)

// scanChunkSize is how much target memory a single read request covers
// during a region scan. Large enough to keep syscall counts low over a
// multi-hundred-megabyte module, small enough that a partially mapped
// region does not blow up the allocation.
const scanChunkSize = 1 << 20

// ScanRegion searches [start, start+size) of the target for the
// pattern and returns every match address in ascending order.
//
// The region is read in scanChunkSize chunks with a pattern-length
// overlap so matches straddling a chunk boundary are still found.
// Chunks that cannot be read (unmapped holes inside the region) are
// skipped rather than failing the scan.
func ScanRegion(r process.MemoryReader, start process.ProcessMemoryAddress, size process.ProcessMemorySize, aob process.AOB) ([]process.ProcessMemoryAddress, error) {
	return scanRegion(r, start, size, aob, false)
}

// ScanRegionFirst is ScanRegion stopping at the lowest match. It
// returns process.ErrPatternNotFound when the region holds no match.
func ScanRegionFirst(r process.MemoryReader, start process.ProcessMemoryAddress, size process.ProcessMemorySize, aob process.AOB) (process.ProcessMemoryAddress, error) {
	matches, err := scanRegion(r, start, size, aob, true)
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		return 0, process.ErrPatternNotFound
	}
	return matches[0], nil
}

func scanRegion(r process.MemoryReader, start process.ProcessMemoryAddress, size process.ProcessMemorySize, aob process.AOB, firstOnly bool) ([]process.ProcessMemoryAddress, error) {
	if !aob.IsValid() {
		return nil, fmt.Errorf("invalid pattern: %d pattern bytes, %d mask bytes", len(aob.Pattern), len(aob.Mask))
	}

	patternLen := uint64(len(aob.Pattern))
	end := uint64(start) + uint64(size)

	var matches []process.ProcessMemoryAddress
	for base := uint64(start); base < end; base += scanChunkSize {
		// Overlap the next chunk by patternLen-1 bytes so a match that
		// starts near the end of this chunk is fully visible here.
		readLen := uint64(scanChunkSize) + patternLen - 1
		if base+readLen > end {
			readLen = end - base
		}
		if readLen < patternLen {
			break
		}

		data, err := r.ReadMemory(process.ProcessMemoryAddress(base), process.ProcessMemorySize(readLen))
		if err != nil {
			continue
		}

		for _, idx := range FindAll(data, aob) {
			if uint64(idx) >= scanChunkSize {
				// Starts inside the overlap; the next chunk owns it.
				break
			}
			matches = append(matches, process.ProcessMemoryAddress(base+uint64(idx)))
			if firstOnly {
				return matches, nil
			}
		}
	}

	return matches, nil
}
