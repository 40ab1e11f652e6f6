// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package proc answers questions about other processes.
package proc

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// MaxPid is the largest pid, which fits into a mutex owner field.
const MaxPid = 1<<30 - 1

// Current returns the pid of the calling process.
func Current() uint32 {
	return uint32(os.Getpid())
}

// Alive returns true, if a process with the given pid exists and has not terminated.
// Zombies are treated as dead. If the state cannot be determined, the process
// is assumed to be alive, so a lock is never stolen from a running owner.
func Alive(pid uint32) bool {
	if pid == 0 || pid > MaxPid {
		return false
	}
	if pid == Current() {
		return true
	}
	exists, err := process.PidExists(int32(pid))
	if err != nil {
		return true
	}
	if !exists {
		return false
	}
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		// the process has gone between the two calls.
		return err != process.ErrorProcessNotRunning
	}
	status, err := p.Status()
	if err != nil {
		return true
	}
	for _, s := range status {
		if s == process.Zombie {
			return false
		}
	}
	return true
}
