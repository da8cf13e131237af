//go:build windows

package process_windows

import (
	"fmt"

	"soulmem/process"
)

// WindowsProcessHelper implements the process.ProcessHelper interface
type WindowsProcessHelper struct {
	Finder process.ProcessFinder
}

// NewHelper creates a new WindowsProcessHelper
func NewHelper() process.ProcessHelper {
	return &WindowsProcessHelper{
		Finder: NewProcessFinder(),
	}
}

// New creates a new Process instance
func (h *WindowsProcessHelper) New() process.Process {
	return New()
}

// NewWithPID creates a new Process instance and opens it with the given PID
func (h *WindowsProcessHelper) NewWithPID(pid process.ProcessID) (process.Process, error) {
	return NewWithPID(pid)
}

// OpenProcessByName opens a process by its name (returns the first match)
func (h *WindowsProcessHelper) OpenProcessByName(name string) (process.Process, error) {
	processes, err := h.Finder.FindProcessByName(name)
	if err != nil {
		return nil, err
	}

	if len(processes) == 0 {
		return nil, fmt.Errorf("no process found with name '%s'", name)
	}

	return NewWithPID(processes[0].PID)
}

// OpenProcessByPattern opens a process by its name pattern (returns the first match)
func (h *WindowsProcessHelper) OpenProcessByPattern(pattern string) (process.Process, error) {
	processes, err := h.Finder.FindProcessByNamePattern(pattern)
	if err != nil {
		return nil, err
	}

	if len(processes) == 0 {
		return nil, fmt.Errorf("no process found matching pattern '%s'", pattern)
	}

	return NewWithPID(processes[0].PID)
}

// OpenProcessByCommandLine opens a process by searching for a command line argument
func (h *WindowsProcessHelper) OpenProcessByCommandLine(arg string) (process.Process, error) {
	processes, err := h.Finder.FindProcessByCommandLine(arg)
	if err != nil {
		return nil, err
	}

	if len(processes) == 0 {
		return nil, fmt.Errorf("no process found with command line argument '%s'", arg)
	}

	return NewWithPID(processes[0].PID)
}

// OpenProcessByCommandLinePattern opens a process by matching command line arguments with a pattern
func (h *WindowsProcessHelper) OpenProcessByCommandLinePattern(pattern string) (process.Process, error) {
	processes, err := h.Finder.FindProcessByCommandLinePattern(pattern)
	if err != nil {
		return nil, err
	}

	if len(processes) == 0 {
		return nil, fmt.Errorf("no process found with command line matching pattern '%s'", pattern)
	}

	return NewWithPID(processes[0].PID)
}
