package process

// ProcessID represents a unique identifier for a process
type ProcessID int

// ProcessInfo contains basic information about a process
type ProcessInfo struct {
	PID     ProcessID    // Process ID
	PPID    ProcessID    // Parent Process ID
	Name    string       // Short process name (on Linux: comm, truncated to 15 chars)
	Exe     string       // Path to the executable
	Cmdline []string     // Command line arguments
	State   ProcessState // Process state (R, S, D, Z, etc.)
	Threads int          // Number of threads
	Memory  uint64       // Resident Set Size (memory usage in bytes)
}

// ProcessTreeNode is one node of a parent/child process tree as
// returned by finder tree queries.
type ProcessTreeNode struct {
	Process  ProcessInfo
	Children []*ProcessTreeNode
}
