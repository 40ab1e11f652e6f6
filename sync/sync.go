// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package sync implements mutexes and counting semaphores, which can be shared
// between processes by name, along with their process-local counterparts.
// A named mutex is robust: if its holder dies, the next acquirer gets
// ipcsync.Recovered instead of waiting forever.
package sync

import (
	"github.com/nxgtw/go-ipcsync"
)

const (
	// CSemMaxVal is the maximum semaphore value,
	// which is guaranteed to be supported on all platforms.
	CSemMaxVal = 32767
)

// Mutex is a mutual exclusion lock. Contention, timeouts and recovery
// are reported as outcomes. Errors mean the operation itself failed.
type Mutex interface {
	// Lock blocks until the mutex is held. It never returns AlreadyHeld or TimedOut.
	Lock() (ipcsync.LockOutcome, error)
	// LockTimeout waits for the mutex not longer than d. It returns Acquired, Recovered or TimedOut.
	LockTimeout(d ipcsync.Duration) (ipcsync.LockOutcome, error)
	// TryLock does not block. It returns Acquired, Recovered or AlreadyHeld.
	TryLock() (ipcsync.LockOutcome, error)
	// Release releases the mutex. Releasing a mutex, which is not held by the caller, is an error.
	Release() error
	// Close closes the handle. It does not release the mutex.
	Close() error
}

// Semaphore is a synchronization object with a resource counter,
// which can be used to control access to a shared resource.
type Semaphore interface {
	// Acquire blocks until the count is positive and decrements it.
	Acquire() error
	// AcquireTimeout is like Acquire, but waits not longer than d.
	// It returns false, if the timeout expired.
	AcquireTimeout(d ipcsync.Duration) (bool, error)
	// TryAcquire decrements a positive count, or returns false immediately.
	TryAcquire() (bool, error)
	// Release increments the count, waking a waiter, if any.
	Release() error
	// Close closes the handle.
	Close() error
}

// NamedResource is a resource, which lives in a system-wide namespace.
type NamedResource interface {
	// Name returns the name the resource was opened with.
	Name() string
	// Unlink removes the name from the namespace. Open handles stay valid.
	Unlink() error
}

// Locker is the interface of sync.Locker.
type Locker interface {
	Lock()
	Unlock()
}

type panicLocker struct {
	m Mutex
}

// AsLocker returns a Locker for m. Its methods panic on errors.
// Recovery is treated as a successful lock.
func AsLocker(m Mutex) Locker {
	return panicLocker{m: m}
}

func (l panicLocker) Lock() {
	if _, err := l.m.Lock(); err != nil {
		panic(err)
	}
}

func (l panicLocker) Unlock() {
	if err := l.m.Release(); err != nil {
		panic(err)
	}
}
