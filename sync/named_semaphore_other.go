// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build !linux && !windows

package sync

import (
	"os"

	"github.com/nxgtw/go-ipcsync"
)

const semMaxValue = CSemMaxVal

type namedSemaphore struct{}

func newNamedSemaphore(name string, mode ipcsync.CreationMode, perm os.FileMode, initial int) (*namedSemaphore, error) {
	return nil, ipcsync.ErrUnsupported
}

func (s *namedSemaphore) acquire() error { return ipcsync.ErrUnsupported }

func (s *namedSemaphore) acquireTimeout(d ipcsync.Duration) (bool, error) {
	return false, ipcsync.ErrUnsupported
}

func (s *namedSemaphore) tryAcquire() (bool, error) { return false, ipcsync.ErrUnsupported }

func (s *namedSemaphore) release() error { return ipcsync.ErrUnsupported }

func (s *namedSemaphore) close() error { return nil }

func unlinkNamedSemaphore(name string) error { return ipcsync.ErrUnsupported }
