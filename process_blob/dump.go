package process_blob

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"soulmem/process"
	"soulmem/process/memory_map"
)

// maxCaptureRegionSize caps how large a single region may be before
// Capture skips it. Game processes map multi-gigabyte graphics arenas
// that are useless for flag analysis and would dominate the dump.
const maxCaptureRegionSize = 100 * 1024 * 1024

type dumpMetadata struct {
	PID  process.ProcessID `json:"pid"`
	Name string            `json:"name"`
}

func blobFilename(addr uint64, size uint) string {
	return fmt.Sprintf("blob_0x%x_%d.bin", addr, size)
}

// Capture writes every readable region of p into dirname as a dump
// directory: metadata.json, process_memory_map.json and one
// blob_<addr>_<size>.bin per region. Regions that cannot be read are
// skipped; the memory map entry is still recorded so the gap is
// visible when the dump is loaded.
func Capture(p process.Process, name string, dirname string) error {
	if err := os.MkdirAll(dirname, 0755); err != nil {
		return fmt.Errorf("failed to create dump directory: %w", err)
	}

	meta := dumpMetadata{PID: p.GetPID(), Name: name}
	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dirname, "metadata.json"), metaJSON, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	if err := p.UpdateMemoryMap(); err != nil {
		return fmt.Errorf("failed to update memory map: %w", err)
	}
	mm, err := p.GetMemoryMap()
	if err != nil {
		return fmt.Errorf("failed to get memory map: %w", err)
	}

	mmJSON, err := json.MarshalIndent(mm, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal memory map: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dirname, "process_memory_map.json"), mmJSON, 0644); err != nil {
		return fmt.Errorf("failed to write memory map: %w", err)
	}

	for _, region := range mm {
		if !region.IsReadable() {
			continue
		}
		if region.Size > maxCaptureRegionSize {
			continue
		}

		data, err := p.ReadMemory(process.ProcessMemoryAddress(region.Address), process.ProcessMemorySize(region.Size))
		if err != nil {
			continue
		}

		filename := filepath.Join(dirname, blobFilename(region.Address, region.Size))
		if err := os.WriteFile(filename, data, 0644); err != nil {
			return fmt.Errorf("failed to write region 0x%x: %w", region.Address, err)
		}
	}

	return nil
}

// LoadSnapshot reads a dump directory written by Capture back into a
// Snapshot. Regions whose blob file is missing (unreadable or oversized
// at capture time) stay in the memory map but hold no data, so reads
// into them fail the same way they did against the live process.
func LoadSnapshot(dirname string) (*Snapshot, error) {
	metaBytes, err := os.ReadFile(filepath.Join(dirname, "metadata.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	var meta dumpMetadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	mmBytes, err := os.ReadFile(filepath.Join(dirname, "process_memory_map.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read memory map: %w", err)
	}
	var mm []memory_map.MemoryMapItem
	if err := json.Unmarshal(mmBytes, &mm); err != nil {
		return nil, fmt.Errorf("failed to unmarshal memory map: %w", err)
	}

	snapshot := NewSnapshot(meta.PID, meta.Name)
	for _, region := range mm {
		data, err := os.ReadFile(filepath.Join(dirname, blobFilename(region.Address, region.Size)))
		if err != nil {
			continue
		}
		snapshot.addItem(region, data)
	}

	return snapshot, nil
}
