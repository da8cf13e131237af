// aobscan scans a live process for a byte signature and hexdumps the
// memory around each match.
//
//	aobscan -pid 1234 -aob "48 8b 05 ?? ?? ?? ?? 32 d2"
//	aobscan -pid 1234 -module eldenring.exe -aob "44 89 7c 24 28" -first
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"soulmem/hexdump"
	"soulmem/pattern"
	"soulmem/process"
)

func main() {
	pidFlag := flag.Int("pid", 0, "process ID to attach to")
	aobFlag := flag.String("aob", "", `byte signature, ?? for wildcards (e.g. "48 8b 05 ?? ?? ?? ??")`)
	moduleFlag := flag.String("module", "", "restrict the scan to one module")
	firstFlag := flag.Bool("first", false, "stop at the first match")
	contextFlag := flag.Int("context", 16, "bytes of context to dump before each match")
	flag.Parse()

	if *pidFlag == 0 || *aobFlag == "" {
		flag.Usage()
		os.Exit(1)
	}

	aob, err := pattern.Parse(*aobFlag)
	if err != nil {
		fmt.Printf("Error parsing pattern: %v\n", err)
		os.Exit(1)
	}

	proc, err := getProcess(process.ProcessID(*pidFlag))
	if err != nil {
		fmt.Printf("Error attaching to process %d: %v\n", *pidFlag, err)
		os.Exit(1)
	}
	defer proc.Close()

	if err := proc.UpdateMemoryMap(); err != nil {
		fmt.Printf("Error reading memory map: %v\n", err)
		os.Exit(1)
	}

	matches, err := scan(proc, aob, *moduleFlag, *firstFlag)
	if err != nil {
		fmt.Printf("Scan error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Found %d matches for %s\n", len(matches), pattern.Format(aob))

	mm, _ := proc.GetMemoryMap()
	for _, match := range matches {
		fmt.Printf("\nMatch at %s:\n", match.ToString())

		start := match - process.ProcessMemoryAddress(*contextFlag)
		size := process.ProcessMemorySize(*contextFlag + len(aob.Pattern) + 16)
		data, err := proc.ReadMemory(start, size)
		if err != nil {
			fmt.Printf("  context unreadable: %v\n", err)
			continue
		}
		fmt.Println(hexdump.HexdumpBasic(data, uint64(start), mm))
	}
}

func scan(proc process.Process, aob process.AOB, module string, first bool) ([]process.ProcessMemoryAddress, error) {
	if module != "" {
		region, err := proc.FindModule(module)
		if err != nil {
			return nil, err
		}
		base := process.ProcessMemoryAddress(region.Address)
		size := process.ProcessMemorySize(region.Size)
		if first {
			match, err := pattern.ScanRegionFirst(proc, base, size, aob)
			if err != nil {
				return nil, err
			}
			return []process.ProcessMemoryAddress{match}, nil
		}
		return pattern.ScanRegion(proc, base, size, aob)
	}

	if first {
		match, err := proc.ScanFirst(aob)
		if err != nil {
			return nil, err
		}
		return []process.ProcessMemoryAddress{match}, nil
	}
	return proc.ScanParallel(aob, uint(runtime.NumCPU()))
}
