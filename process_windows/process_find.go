//go:build windows

package process_windows

import (
	"fmt"
	"regexp"
	"unsafe"

	"soulmem/process"

	"golang.org/x/sys/windows"
)

// WindowsProcessFinder implements the process.ProcessFinder interface
// on top of a Toolhelp32 process snapshot.
type WindowsProcessFinder struct{}

// NewProcessFinder creates a new WindowsProcessFinder
func NewProcessFinder() process.ProcessFinder {
	return &WindowsProcessFinder{}
}

// FindProcess finds a process by name and returns its PID
func FindProcess(name string) (process.ProcessID, error) {
	finder := NewProcessFinder()
	processes, err := finder.FindProcessByName(name)
	if err != nil {
		return 0, err
	}

	if len(processes) == 0 {
		return 0, fmt.Errorf("no process found with name '%s'", name)
	}

	return processes[0].PID, nil
}

// snapshotProcesses walks a Toolhelp32 snapshot of every process.
// Command lines are not exposed by Toolhelp32; Cmdline stays empty on
// Windows.
func snapshotProcesses() ([]process.ProcessInfo, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("CreateToolhelp32Snapshot failed: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var pe windows.ProcessEntry32
	pe.Size = uint32(unsafe.Sizeof(pe))

	var results []process.ProcessInfo
	err = windows.Process32First(snapshot, &pe)
	for err == nil {
		results = append(results, process.ProcessInfo{
			PID:     process.ProcessID(pe.ProcessID),
			PPID:    process.ProcessID(pe.ParentProcessID),
			Name:    windows.UTF16ToString(pe.ExeFile[:]),
			Exe:     exePathForPID(pe.ProcessID),
			Threads: int(pe.Threads),
		})
		err = windows.Process32Next(snapshot, &pe)
	}

	return results, nil
}

// exePathForPID resolves the full image path; empty when access is denied.
func exePathForPID(pid uint32) string {
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(handle)

	var buf [windows.MAX_PATH]uint16
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(handle, 0, &buf[0], &size); err != nil {
		return ""
	}
	return windows.UTF16ToString(buf[:size])
}

// FindProcessByPID finds a process by its PID
func (f *WindowsProcessFinder) FindProcessByPID(pid process.ProcessID) (*process.ProcessInfo, error) {
	all, err := snapshotProcesses()
	if err != nil {
		return nil, err
	}

	for _, info := range all {
		if info.PID == pid {
			return &info, nil
		}
	}
	return nil, fmt.Errorf("process with PID %d does not exist", pid)
}

// FindProcessByName finds processes by their name (exact match)
func (f *WindowsProcessFinder) FindProcessByName(name string) ([]process.ProcessInfo, error) {
	return f.FindProcessByNamePattern("^" + regexp.QuoteMeta(name) + "$")
}

// FindProcessByNamePattern finds processes by their name (pattern match)
func (f *WindowsProcessFinder) FindProcessByNamePattern(pattern string) ([]process.ProcessInfo, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	all, err := snapshotProcesses()
	if err != nil {
		return nil, err
	}

	var results []process.ProcessInfo
	for _, info := range all {
		if re.MatchString(info.Name) {
			results = append(results, info)
		}
	}
	return results, nil
}

// FindAllProcesses returns information about all running processes
func (f *WindowsProcessFinder) FindAllProcesses() ([]process.ProcessInfo, error) {
	return snapshotProcesses()
}

// FindProcessByCommandLine finds processes that have a specific argument in their command line
func (f *WindowsProcessFinder) FindProcessByCommandLine(arg string) ([]process.ProcessInfo, error) {
	return f.FindProcessByCommandLinePattern(regexp.QuoteMeta(arg))
}

// FindProcessByCommandLinePattern finds processes with command line arguments matching a pattern
func (f *WindowsProcessFinder) FindProcessByCommandLinePattern(pattern string) ([]process.ProcessInfo, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	all, err := snapshotProcesses()
	if err != nil {
		return nil, err
	}

	var results []process.ProcessInfo
	for _, info := range all {
		for _, arg := range info.Cmdline {
			if re.MatchString(arg) {
				results = append(results, info)
				break
			}
		}
	}
	return results, nil
}
