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

const namedSemaphorePrimitive = "named_semaphore"

var (
	_ Semaphore     = (*NamedSemaphore)(nil)
	_ Semaphore     = (*UnnamedSemaphore)(nil)
	_ NamedResource = (*NamedSemaphore)(nil)
)

// NamedSemaphore is a counting semaphore shared between processes by name.
//
//	linux: a counter in a shared memory object, futex for sleeping. The count is limited by math.MaxInt32.
//	windows: a kernel semaphore with the maximum count of CSemMaxVal.
//
// There is no recovery: a count consumed by a process, which died, is lost.
// Close unmaps the shared state, so it must not be called concurrently with
// other operations on the same handle.
type NamedSemaphore struct {
	impl *namedSemaphore
	name string
}

// NewNamedSemaphore creates or opens a named semaphore.
//
//	name - object name.
//	mode - creation mode.
//	perm - object's permission bits.
//	initial - the initial count. It is used only if the semaphore was created.
func NewNamedSemaphore(name string, mode ipcsync.CreationMode, perm os.FileMode, initial int) (*NamedSemaphore, error) {
	if err := common.CheckName(name); err != nil {
		return nil, err
	}
	if !mode.Valid() {
		return nil, errors.Errorf("invalid creation mode %d", int(mode))
	}
	if initial < 0 || initial > semMaxValue {
		return nil, errors.Errorf("invalid initial semaphore value %d", initial)
	}
	impl, err := newNamedSemaphore(name, mode, common.PermOrDefault(perm), initial)
	if err != nil {
		metrics.ObserveError("open_semaphore", err)
		return nil, errors.Wrapf(err, "failed to obtain named semaphore %q", name)
	}
	runtime.SetFinalizer(impl, func(s *namedSemaphore) {
		ipcsync.LogCloseError(s.close(), "named semaphore", name)
	})
	return &NamedSemaphore{impl: impl, name: name}, nil
}

// Acquire decrements the count, waiting for it to become positive.
func (s *NamedSemaphore) Acquire() error {
	_, err := observeSemaphore(namedSemaphorePrimitive, "acquire", true, s.impl.acquire())
	return err
}

// AcquireTimeout is like Acquire, but waits for not more, than d.
func (s *NamedSemaphore) AcquireTimeout(d ipcsync.Duration) (bool, error) {
	ok, err := s.impl.acquireTimeout(d)
	return observeSemaphore(namedSemaphorePrimitive, "acquire_timeout", ok, err)
}

// TryAcquire decrements the count, if it is positive.
func (s *NamedSemaphore) TryAcquire() (bool, error) {
	ok, err := s.impl.tryAcquire()
	return observeSemaphore(namedSemaphorePrimitive, "try_acquire", ok, err)
}

// Release increments the count. Exceeding the maximum count is an error.
func (s *NamedSemaphore) Release() error {
	_, err := observeSemaphore(namedSemaphorePrimitive, "release", true, s.impl.release())
	return err
}

// Close closes the handle.
func (s *NamedSemaphore) Close() error {
	runtime.SetFinalizer(s.impl, nil)
	return s.impl.close()
}

// Name returns the name of the semaphore.
func (s *NamedSemaphore) Name() string {
	return s.name
}

// Unlink removes the semaphore from the namespace.
func (s *NamedSemaphore) Unlink() error {
	return UnlinkNamedSemaphore(s.name)
}

// UnlinkNamedSemaphore removes a named semaphore by name.
// On windows the semaphore is destroyed, when its last handle is closed, and this is a no-op.
func UnlinkNamedSemaphore(name string) error {
	if err := common.CheckName(name); err != nil {
		return err
	}
	return unlinkNamedSemaphore(name)
}

func namedSemaphoreObjectName(name string) string {
	return "ipcsync.sema." + name
}

func observeSemaphore(primitive, op string, ok bool, err error) (bool, error) {
	if err != nil {
		metrics.ObserveError(op+"_"+primitive, err)
		return false, err
	}
	metrics.ObserveSemaphore(primitive, op, ok)
	return ok, nil
}
