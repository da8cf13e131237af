//go:build linux

package main

import (
	"soulmem/process"
	"soulmem/process_linux"
)

func getProcess(pid process.ProcessID) (process.Process, error) {
	return process_linux.NewWithPID(pid)
}
