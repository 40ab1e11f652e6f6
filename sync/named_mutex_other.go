// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build !linux && !windows

package sync

import (
	"os"

	"github.com/nxgtw/go-ipcsync"
)

type namedMutex struct{}

func newNamedMutex(name string, mode ipcsync.CreationMode, perm os.FileMode) (*namedMutex, error) {
	return nil, ipcsync.ErrUnsupported
}

func (m *namedMutex) lock() (ipcsync.LockOutcome, error) {
	return ipcsync.TimedOut, ipcsync.ErrUnsupported
}

func (m *namedMutex) lockTimeout(d ipcsync.Duration) (ipcsync.LockOutcome, error) {
	return ipcsync.TimedOut, ipcsync.ErrUnsupported
}

func (m *namedMutex) tryLock() (ipcsync.LockOutcome, error) {
	return ipcsync.TimedOut, ipcsync.ErrUnsupported
}

func (m *namedMutex) release() error { return ipcsync.ErrUnsupported }

func (m *namedMutex) close() error { return nil }

func unlinkNamedMutex(name string) error { return ipcsync.ErrUnsupported }
