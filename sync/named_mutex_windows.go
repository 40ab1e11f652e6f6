// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"os"
	"runtime"

	"github.com/nxgtw/go-ipcsync"
	"github.com/nxgtw/go-ipcsync/internal/common"
	"github.com/nxgtw/go-ipcsync/internal/sys/windows"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// namedMutex is a windows kernel mutex.
// The kernel reports WAIT_ABANDONED to the first waiter after the owning thread has exited.
type namedMutex struct {
	handle windows.Handle
}

func newNamedMutex(name string, mode ipcsync.CreationMode, perm os.FileMode) (*namedMutex, error) {
	namep, err := windows.UTF16PtrFromString(namedMutexObjectName(name))
	if err != nil {
		return nil, err
	}
	var handle windows.Handle
	creator := func(create bool) error {
		var err error
		if create {
			handle, err = windows.CreateMutex(nil, false, namep)
			if err == windows.ERROR_ALREADY_EXISTS {
				windows.CloseHandle(handle)
			}
			return ipcsync.WrapError(err, "create mutex "+name, "CreateMutex")
		}
		handle, err = windows.OpenMutex(windows.SYNCHRONIZE|sys.MutexModifyState, false, namep)
		return ipcsync.WrapError(err, "open mutex "+name, "OpenMutex")
	}
	if _, err = common.OpenOrCreate(creator, mode); err != nil {
		return nil, err
	}
	return &namedMutex{handle: handle}, nil
}

func (m *namedMutex) lock() (ipcsync.LockOutcome, error) {
	return m.wait(windows.INFINITE, ipcsync.TimedOut)
}

func (m *namedMutex) lockTimeout(d ipcsync.Duration) (ipcsync.LockOutcome, error) {
	return m.wait(common.TimeoutMillis(d), ipcsync.TimedOut)
}

func (m *namedMutex) tryLock() (ipcsync.LockOutcome, error) {
	return m.wait(0, ipcsync.AlreadyHeld)
}

// wait locks the goroutine to its thread, as the mutex is owned by the thread.
func (m *namedMutex) wait(millis uint32, onTimeout ipcsync.LockOutcome) (ipcsync.LockOutcome, error) {
	runtime.LockOSThread()
	ev, err := windows.WaitForSingleObject(m.handle, millis)
	switch ev {
	case windows.WAIT_OBJECT_0:
		return ipcsync.Acquired, nil
	case windows.WAIT_ABANDONED:
		return ipcsync.Recovered, nil
	case uint32(windows.WAIT_TIMEOUT):
		runtime.UnlockOSThread()
		return onTimeout, nil
	default:
		runtime.UnlockOSThread()
		if err == nil {
			err = errors.Errorf("invalid wait state for a mutex: %d", ev)
		}
		return onTimeout, ipcsync.WrapError(err, "lock mutex", "WaitForSingleObject")
	}
}

func (m *namedMutex) release() error {
	if err := windows.ReleaseMutex(m.handle); err != nil {
		return ipcsync.WrapError(err, "release mutex", "ReleaseMutex")
	}
	runtime.UnlockOSThread()
	return nil
}

func (m *namedMutex) close() error {
	if m.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(m.handle)
	m.handle = 0
	return ipcsync.WrapError(err, "close mutex", "CloseHandle")
}

// unlinkNamedMutex is a no-op on windows, as the mutex is destroyed,
// when its last handle is closed.
func unlinkNamedMutex(name string) error {
	return nil
}
