// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"os"
	"runtime"

	"github.com/nxgtw/go-ipcsync"
	"github.com/nxgtw/go-ipcsync/internal/common"
	"github.com/nxgtw/go-ipcsync/metrics"

	"github.com/pkg/errors"
)

const namedMutexPrimitive = "named_mutex"

var (
	_ Mutex         = (*NamedMutex)(nil)
	_ Mutex         = (*UnnamedMutex)(nil)
	_ NamedResource = (*NamedMutex)(nil)
)

// NamedMutex is a robust mutex shared between processes by name.
//
//	linux: an owner pid word in a shared memory object, futex for sleeping.
//	The owner's liveness is checked on contention, so the death of a holder
//	is observed by the next TryLock, or by a blocked Lock within a poll interval.
//	windows: a kernel mutex. The goroutine, which acquired the mutex, is locked
//	to its OS thread until it releases the mutex, and it must be the one to release it.
//
// The mutex is not recursive on linux, and recursive per OS thread on windows.
// Close must not be called concurrently with other operations on the same handle.
type NamedMutex struct {
	impl *namedMutex
	name string
}

// NewNamedMutex creates or opens a named mutex.
// A created mutex is unlocked. Joining an existing mutex does not change its state.
//
//	name - object name.
//	mode - creation mode.
//	perm - object's permission bits.
func NewNamedMutex(name string, mode ipcsync.CreationMode, perm os.FileMode) (*NamedMutex, error) {
	if err := common.CheckName(name); err != nil {
		return nil, err
	}
	if !mode.Valid() {
		return nil, errors.Errorf("invalid creation mode %d", int(mode))
	}
	impl, err := newNamedMutex(name, mode, common.PermOrDefault(perm))
	if err != nil {
		metrics.ObserveError("open_mutex", err)
		return nil, errors.Wrapf(err, "failed to obtain named mutex %q", name)
	}
	runtime.SetFinalizer(impl, func(m *namedMutex) {
		ipcsync.LogCloseError(m.close(), "named mutex", name)
	})
	return &NamedMutex{impl: impl, name: name}, nil
}

// Lock locks the mutex. It returns Recovered, if the previous holder has died.
func (m *NamedMutex) Lock() (ipcsync.LockOutcome, error) {
	outcome, err := m.impl.lock()
	return observeLock(namedMutexPrimitive, outcome, err)
}

// LockTimeout tries to lock the mutex, waiting for not more, than d.
func (m *NamedMutex) LockTimeout(d ipcsync.Duration) (ipcsync.LockOutcome, error) {
	outcome, err := m.impl.lockTimeout(d)
	return observeLock(namedMutexPrimitive, outcome, err)
}

// TryLock locks the mutex, if it is free, or if its holder has died.
func (m *NamedMutex) TryLock() (ipcsync.LockOutcome, error) {
	outcome, err := m.impl.tryLock()
	return observeLock(namedMutexPrimitive, outcome, err)
}

// Release unlocks the mutex.
func (m *NamedMutex) Release() error {
	err := m.impl.release()
	metrics.ObserveError("release_mutex", err)
	return err
}

// Close closes the handle. The mutex stays in the namespace, and its state is not changed.
func (m *NamedMutex) Close() error {
	runtime.SetFinalizer(m.impl, nil)
	return m.impl.close()
}

// Name returns the name of the mutex.
func (m *NamedMutex) Name() string {
	return m.name
}

// Unlink removes the mutex from the namespace.
func (m *NamedMutex) Unlink() error {
	return UnlinkNamedMutex(m.name)
}

// UnlinkNamedMutex removes a named mutex by name.
// Processes, which have it open, can still use it. New opens create a new mutex.
// On windows the mutex is destroyed, when its last handle is closed, and this is a no-op.
func UnlinkNamedMutex(name string) error {
	if err := common.CheckName(name); err != nil {
		return err
	}
	return unlinkNamedMutex(name)
}

func namedMutexObjectName(name string) string {
	return "ipcsync.mutex." + name
}

func observeLock(primitive string, outcome ipcsync.LockOutcome, err error) (ipcsync.LockOutcome, error) {
	if err != nil {
		metrics.ObserveError("lock_"+primitive, err)
		return outcome, err
	}
	metrics.ObserveLock(primitive, outcome.String())
	if outcome == ipcsync.Recovered {
		ipcsync.Logger().Debug("recovered an abandoned lock", "primitive", primitive)
	}
	return outcome, nil
}
