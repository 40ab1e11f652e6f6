// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"context"
	"sync/atomic"
	"syscall"

	"github.com/nxgtw/go-ipcsync"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

const unnamedSemaphorePrimitive = "unnamed_semaphore"

// UnnamedSemaphore is a process-local counting semaphore with the maximum count of CSemMaxVal.
type UnnamedSemaphore struct {
	w *semaphore.Weighted
	// count is never less than the number of available units.
	count atomic.Int64
}

// NewUnnamedSemaphore returns a semaphore with the given initial count.
func NewUnnamedSemaphore(initial int) (*UnnamedSemaphore, error) {
	if initial < 0 || initial > CSemMaxVal {
		return nil, errors.Errorf("invalid initial semaphore value %d", initial)
	}
	s := &UnnamedSemaphore{w: semaphore.NewWeighted(CSemMaxVal)}
	// the weighted semaphore starts with all units available, take away the ones above initial.
	if !s.w.TryAcquire(CSemMaxVal - int64(initial)) {
		return nil, errors.New("failed to initialize semaphore")
	}
	s.count.Store(int64(initial))
	return s, nil
}

// Acquire decrements the count, waiting for it to become positive.
func (s *UnnamedSemaphore) Acquire() error {
	if err := s.w.Acquire(context.Background(), 1); err != nil {
		return errors.Wrap(err, "failed to acquire semaphore")
	}
	s.count.Add(-1)
	_, err := observeSemaphore(unnamedSemaphorePrimitive, "acquire", true, nil)
	return err
}

// AcquireTimeout is like Acquire, but waits for not more, than d.
func (s *UnnamedSemaphore) AcquireTimeout(d ipcsync.Duration) (bool, error) {
	if s.w.TryAcquire(1) {
		s.count.Add(-1)
		return observeSemaphore(unnamedSemaphorePrimitive, "acquire_timeout", true, nil)
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.Std())
	defer cancel()
	ok := s.w.Acquire(ctx, 1) == nil
	if ok {
		s.count.Add(-1)
	}
	return observeSemaphore(unnamedSemaphorePrimitive, "acquire_timeout", ok, nil)
}

// TryAcquire decrements the count, if it is positive.
func (s *UnnamedSemaphore) TryAcquire() (bool, error) {
	ok := s.w.TryAcquire(1)
	if ok {
		s.count.Add(-1)
	}
	return observeSemaphore(unnamedSemaphorePrimitive, "try_acquire", ok, nil)
}

// Release increments the count. Exceeding CSemMaxVal is an error.
func (s *UnnamedSemaphore) Release() error {
	for {
		c := s.count.Load()
		if c >= CSemMaxVal {
			return ipcsync.NewError(syscall.EOVERFLOW, "release unnamed semaphore", "")
		}
		if s.count.CompareAndSwap(c, c+1) {
			break
		}
	}
	s.w.Release(1)
	_, err := observeSemaphore(unnamedSemaphorePrimitive, "release", true, nil)
	return err
}

// Close is a no-op.
func (s *UnnamedSemaphore) Close() error {
	return nil
}
