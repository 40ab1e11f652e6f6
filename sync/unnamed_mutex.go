// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"syscall"
	"time"

	"github.com/nxgtw/go-ipcsync"
)

const unnamedMutexPrimitive = "unnamed_mutex"

// UnnamedMutex is a process-local mutex with the Mutex contract.
// It never reports Recovered.
type UnnamedMutex struct {
	ch chan struct{}
}

// NewUnnamedMutex returns a new unlocked mutex.
func NewUnnamedMutex() *UnnamedMutex {
	return &UnnamedMutex{ch: make(chan struct{}, 1)}
}

// Lock locks the mutex.
func (m *UnnamedMutex) Lock() (ipcsync.LockOutcome, error) {
	m.ch <- struct{}{}
	return observeLock(unnamedMutexPrimitive, ipcsync.Acquired, nil)
}

// LockTimeout tries to lock the mutex, waiting for not more, than d.
func (m *UnnamedMutex) LockTimeout(d ipcsync.Duration) (ipcsync.LockOutcome, error) {
	select {
	case m.ch <- struct{}{}:
		return observeLock(unnamedMutexPrimitive, ipcsync.Acquired, nil)
	default:
	}
	timer := time.NewTimer(d.Std())
	defer timer.Stop()
	select {
	case m.ch <- struct{}{}:
		return observeLock(unnamedMutexPrimitive, ipcsync.Acquired, nil)
	case <-timer.C:
		return observeLock(unnamedMutexPrimitive, ipcsync.TimedOut, nil)
	}
}

// TryLock locks the mutex, if it is free.
func (m *UnnamedMutex) TryLock() (ipcsync.LockOutcome, error) {
	select {
	case m.ch <- struct{}{}:
		return observeLock(unnamedMutexPrimitive, ipcsync.Acquired, nil)
	default:
		return observeLock(unnamedMutexPrimitive, ipcsync.AlreadyHeld, nil)
	}
}

// Release unlocks the mutex. Unlike sync.Mutex, it returns an error for an unlocked mutex.
func (m *UnnamedMutex) Release() error {
	select {
	case <-m.ch:
		return nil
	default:
		return ipcsync.NewError(syscall.EPERM, "release unnamed mutex", "")
	}
}

// Close is a no-op.
func (m *UnnamedMutex) Close() error {
	return nil
}
