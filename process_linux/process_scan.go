//go:build linux

package process_linux

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"soulmem/pattern"
	"soulmem/process"
	"soulmem/process/memory_map"
)

// Anonymous mappings above this are vsyscall/vdso style regions; the
// anchors this library scans for never live there.
const scanUpperLimit = 0x7d0000000000

func (p *LinuxProcess) scanRegions() ([]memory_map.MemoryMapItem, error) {
	memMap, err := p.GetMemoryMap()
	if err != nil {
		return nil, fmt.Errorf("failed to get memory map: %w", err)
	}

	var regions []memory_map.MemoryMapItem
	for _, region := range memMap {
		if region.Address > scanUpperLimit {
			continue
		}
		if region.IsReadable() {
			regions = append(regions, region)
		}
	}
	return regions, nil
}

// Scan searches for the given pattern in the process memory
// and returns all matching addresses
func (p *LinuxProcess) Scan(aob process.AOB) ([]process.ProcessMemoryAddress, error) {
	if len(aob.Pattern) == 0 {
		return nil, fmt.Errorf("empty pattern")
	}

	regions, err := p.scanRegions()
	if err != nil {
		return nil, err
	}

	p.log.Debugln("Starting memory scan for pattern of length", len(aob.Pattern))

	var results []process.ProcessMemoryAddress
	for _, region := range regions {
		matches, err := pattern.ScanRegion(p, process.ProcessMemoryAddress(region.Address), process.ProcessMemorySize(region.Size), aob)
		if err != nil {
			// Regions can vanish between the map read and the scan
			p.log.Debugln("Failed to scan memory region at", fmt.Sprintf("%x", region.Address), err)
			continue
		}
		results = append(results, matches...)
	}

	p.log.Debugln("Scan complete, found", len(results), "matches")
	return results, nil
}

// ScanParallel searches for the given pattern in parallel
// maxdop controls the maximum degree of parallelism
func (p *LinuxProcess) ScanParallel(aob process.AOB, maxdop uint) ([]process.ProcessMemoryAddress, error) {
	// If maxdop is 0 or 1, use the regular scan
	if maxdop <= 1 {
		return p.Scan(aob)
	}

	if len(aob.Pattern) == 0 {
		return nil, fmt.Errorf("empty pattern")
	}

	regions, err := p.scanRegions()
	if err != nil {
		return nil, err
	}

	numCPU := uint(runtime.NumCPU())
	if maxdop > numCPU {
		maxdop = numCPU
	}

	p.log.Debugln("Starting parallel memory scan with maxdop=", maxdop)

	sem := make(chan struct{}, maxdop)
	var wg sync.WaitGroup

	var resultsMutex sync.Mutex
	var results []process.ProcessMemoryAddress

	for _, region := range regions {
		wg.Add(1)
		sem <- struct{}{}

		go func(addr uint64, size uint) {
			defer func() {
				<-sem
				wg.Done()
			}()

			matches, err := pattern.ScanRegion(p, process.ProcessMemoryAddress(addr), process.ProcessMemorySize(size), aob)
			if err != nil {
				p.log.Debugln("Failed to scan memory region at", fmt.Sprintf("%x", addr), err)
				return
			}

			if len(matches) > 0 {
				resultsMutex.Lock()
				results = append(results, matches...)
				resultsMutex.Unlock()
			}
		}(region.Address, region.Size)
	}

	wg.Wait()

	// Goroutine completion order is not address order
	sort.Slice(results, func(i, j int) bool { return results[i] < results[j] })

	p.log.Debugln("Parallel scan complete, found", len(results), "matches")
	return results, nil
}

// ScanFirst searches for the first occurrence of the pattern
func (p *LinuxProcess) ScanFirst(aob process.AOB) (process.ProcessMemoryAddress, error) {
	if len(aob.Pattern) == 0 {
		return 0, fmt.Errorf("empty pattern")
	}

	regions, err := p.scanRegions()
	if err != nil {
		return 0, err
	}

	for _, region := range regions {
		addr, err := pattern.ScanRegionFirst(p, process.ProcessMemoryAddress(region.Address), process.ProcessMemorySize(region.Size), aob)
		if err == nil {
			return addr, nil
		}
	}

	return 0, process.ErrPatternNotFound
}

// ScanInteger searches for an integer value in memory
func (p *LinuxProcess) ScanInteger(value int64, size uint) ([]process.ProcessMemoryAddress, error) {
	aob, err := pattern.FromInteger(value, size)
	if err != nil {
		return nil, err
	}
	return p.Scan(aob)
}

// ScanFloat searches for a float value in memory
func (p *LinuxProcess) ScanFloat(value float64, isFloat32 bool) ([]process.ProcessMemoryAddress, error) {
	return p.Scan(pattern.FromFloat(value, isFloat32))
}

// ScanString searches for a string in memory
func (p *LinuxProcess) ScanString(value string, isUTF16 bool) ([]process.ProcessMemoryAddress, error) {
	aob, err := pattern.FromString(value, isUTF16)
	if err != nil {
		return nil, err
	}
	return p.Scan(aob)
}
