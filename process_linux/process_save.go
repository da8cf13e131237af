//go:build linux

package process_linux

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"soulmem/process"
	"soulmem/process_blob"
)

// Save captures the readable memory of the process into a snapshot
// directory that process_blob.LoadSnapshot can replay later.
func (p *LinuxProcess) Save(dirname string) error {
	p.mu.Lock()
	pid := p.pid
	p.mu.Unlock()

	if pid == 0 {
		return process.ErrProcessNotOpen
	}

	// Capture against a fresh map so regions mapped since Open are included
	if err := p.UpdateMemoryMap(); err != nil {
		return fmt.Errorf("failed to update memory map: %w", err)
	}

	name := "unknown"
	if comm, err := os.ReadFile(filepath.Join("/proc", fmt.Sprint(pid), "comm")); err == nil {
		name = strings.TrimSpace(string(comm))
	}

	p.log.Infoln("Saving process snapshot to directory:", dirname)

	if err := process_blob.Capture(p, name, dirname); err != nil {
		return err
	}

	p.log.Infoln("Process snapshot saved")
	return nil
}
