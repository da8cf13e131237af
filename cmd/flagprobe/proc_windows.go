//go:build windows

package main

import (
	"soulmem/process"
	"soulmem/process_windows"
)

func getProcess(pid process.ProcessID) (process.Process, error) {
	return process_windows.NewWithPID(pid)
}

func getHelper() process.ProcessHelper {
	return process_windows.NewHelper()
}
