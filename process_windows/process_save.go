//go:build windows

package process_windows

import (
	"soulmem/process"
	"soulmem/process_blob"
)

// Save captures the readable memory of the process into a snapshot
// directory that process_blob.LoadSnapshot can replay later.
func (p *WindowsProcess) Save(dirname string) error {
	p.mu.Lock()
	pid := p.pid
	p.mu.Unlock()

	if pid == 0 {
		return process.ErrProcessNotOpen
	}

	if err := p.UpdateMemoryMap(); err != nil {
		return err
	}

	name := "unknown"
	if info, err := NewProcessFinder().FindProcessByPID(pid); err == nil {
		name = info.Name
	}

	p.log.Infoln("Saving process snapshot to directory:", dirname)

	if err := process_blob.Capture(p, name, dirname); err != nil {
		return err
	}

	p.log.Infoln("Process snapshot saved")
	return nil
}
