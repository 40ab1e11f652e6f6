// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"os"

	"github.com/nxgtw/go-ipcsync"
	"github.com/nxgtw/go-ipcsync/internal/common"
	"github.com/nxgtw/go-ipcsync/internal/sys/windows"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

const semMaxValue = CSemMaxVal

// namedSemaphore is a windows kernel semaphore.
type namedSemaphore struct {
	handle windows.Handle
}

func newNamedSemaphore(name string, mode ipcsync.CreationMode, perm os.FileMode, initial int) (*namedSemaphore, error) {
	objName := namedSemaphoreObjectName(name)
	var handle windows.Handle
	creator := func(create bool) error {
		var err error
		if create {
			handle, err = sys.CreateSemaphore(objName, initial, CSemMaxVal, nil)
			if ipcsync.IsExist(err) {
				windows.CloseHandle(handle)
			}
			return ipcsync.WrapError(err, "create semaphore "+name, "CreateSemaphore")
		}
		handle, err = sys.OpenSemaphore(objName, windows.SYNCHRONIZE|sys.SemaphoreModifyState, 0)
		return ipcsync.WrapError(err, "open semaphore "+name, "OpenSemaphore")
	}
	if _, err := common.OpenOrCreate(creator, mode); err != nil {
		return nil, err
	}
	return &namedSemaphore{handle: handle}, nil
}

func (s *namedSemaphore) acquire() error {
	_, err := s.wait(windows.INFINITE)
	return err
}

func (s *namedSemaphore) acquireTimeout(d ipcsync.Duration) (bool, error) {
	return s.wait(common.TimeoutMillis(d))
}

func (s *namedSemaphore) tryAcquire() (bool, error) {
	return s.wait(0)
}

func (s *namedSemaphore) wait(millis uint32) (bool, error) {
	ev, err := windows.WaitForSingleObject(s.handle, millis)
	switch ev {
	case windows.WAIT_OBJECT_0:
		return true, nil
	case uint32(windows.WAIT_TIMEOUT):
		return false, nil
	default:
		if err == nil {
			err = errors.Errorf("invalid wait state for a semaphore: %d", ev)
		}
		return false, ipcsync.WrapError(err, "acquire semaphore", "WaitForSingleObject")
	}
}

func (s *namedSemaphore) release() error {
	_, err := sys.ReleaseSemaphore(s.handle, 1)
	return ipcsync.WrapError(err, "release semaphore", "ReleaseSemaphore")
}

func (s *namedSemaphore) close() error {
	if s.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(s.handle)
	s.handle = 0
	return ipcsync.WrapError(err, "close semaphore", "CloseHandle")
}

// unlinkNamedSemaphore is a no-op on windows.
func unlinkNamedSemaphore(name string) error {
	return nil
}
