package process

// ProcessFinder defines operations for discovering processes.
//
// Name matching intentionally checks both the short process name and
// the executable basename: games launched through Wine or Proton keep
// their Windows executable name only in the command line and exe link,
// while comm is truncated.
type ProcessFinder interface {
	// FindProcessByPID finds a process by its PID
	FindProcessByPID(pid ProcessID) (*ProcessInfo, error)

	// FindProcessByName finds processes by their name (exact match)
	FindProcessByName(name string) ([]ProcessInfo, error)

	// FindProcessByNamePattern finds processes by their name (pattern match)
	FindProcessByNamePattern(pattern string) ([]ProcessInfo, error)

	// FindAllProcesses returns information about all running processes
	FindAllProcesses() ([]ProcessInfo, error)

	// FindProcessByCommandLine finds processes that have a specific argument in their command line
	FindProcessByCommandLine(arg string) ([]ProcessInfo, error)

	// FindProcessByCommandLinePattern finds processes with command line arguments matching a pattern
	FindProcessByCommandLinePattern(pattern string) ([]ProcessInfo, error)
}
