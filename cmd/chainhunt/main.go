// chainhunt searches the pointer graph under a base address for offset
// paths leading to a known value, the usual way a new game structure is
// located: save a dump, note an on-screen value, hunt the chain.
//
//	chainhunt -snapshot ./dumps/boss -base 0x140000000 -u32 1234
//	chainhunt -pid 4321 -base 0x7ff6a0000000 -f32 301.25 -depth 4
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"soulmem/process"
	"soulmem/process_blob"
	"soulmem/search"
)

func main() {
	snapshotFlag := flag.String("snapshot", "", "search a saved dump directory")
	pidFlag := flag.Int("pid", 0, "search a live process")
	baseFlag := flag.String("base", "", "base address to start from (hex)")
	u32Flag := flag.String("u32", "", "target uint32 value")
	u64Flag := flag.String("u64", "", "target uint64 value")
	f32Flag := flag.String("f32", "", "target float32 value")
	depthFlag := flag.Int("depth", 3, "maximum pointer hops")
	sizeFlag := flag.Uint("size", 256, "bytes examined per struct")
	alignFlag := flag.Uint("align", 4, "offset alignment")
	flag.Parse()

	proc, err := getTarget(*snapshotFlag, *pidFlag)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer proc.Close()

	base, err := parseAddress(*baseFlag)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	target, err := targetOption(*u32Flag, *u64Flag, *f32Flag)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	results, err := search.Search(proc, base, target,
		search.WithMaxDepth(*depthFlag),
		search.WithMaxStructSize(*sizeFlag),
		search.WithMinAlignment(*alignFlag))
	if err != nil {
		fmt.Printf("Search error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d paths from %s:\n", len(results), base.ToString())
	for _, r := range results {
		chain := r.Chain(proc, base)
		fmt.Printf("  %s -> %s\n", chain, chain.Resolve().ToString())
	}
}

func getTarget(snapshot string, pid int) (process.Process, error) {
	switch {
	case snapshot != "":
		return process_blob.LoadSnapshot(snapshot)
	case pid != 0:
		proc, err := getProcess(process.ProcessID(pid))
		if err != nil {
			return nil, err
		}
		return proc, proc.UpdateMemoryMap()
	default:
		return nil, fmt.Errorf("one of -snapshot or -pid is required")
	}
}

func parseAddress(s string) (process.ProcessMemoryAddress, error) {
	if s == "" {
		return 0, fmt.Errorf("-base is required")
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("bad base address %q", s)
	}
	return process.ProcessMemoryAddress(v), nil
}

func targetOption(u32, u64, f32 string) (search.Option, error) {
	switch {
	case u32 != "":
		v, err := strconv.ParseUint(u32, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("bad u32 %q", u32)
		}
		return search.WithSearchForType(uint32(v)), nil
	case u64 != "":
		v, err := strconv.ParseUint(u64, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("bad u64 %q", u64)
		}
		return search.WithSearchForType(v), nil
	case f32 != "":
		v, err := strconv.ParseFloat(f32, 32)
		if err != nil {
			return nil, fmt.Errorf("bad f32 %q", f32)
		}
		return search.WithSearchForType(float32(v)), nil
	default:
		return nil, fmt.Errorf("one of -u32, -u64 or -f32 is required")
	}
}
