// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"math"
	"os"
	"sync/atomic"

	"github.com/nxgtw/go-ipcsync"
	"github.com/nxgtw/go-ipcsync/internal/common"
	"github.com/nxgtw/go-ipcsync/shm"

	"golang.org/x/sys/unix"
)

const semMaxValue = math.MaxInt32

// semaState is the shared state of a semaphore.
type semaState struct {
	// Count is the number of available units. Waiters sleep on this word.
	Count uint32
	// Waiters is the number of processes, which may be sleeping on Count.
	Waiters uint32
}

type namedSemaphore struct {
	seg   *shm.Segment[semaState]
	state *semaState
}

func newNamedSemaphore(name string, mode ipcsync.CreationMode, perm os.FileMode, initial int) (*namedSemaphore, error) {
	init := func(elems []semaState) {
		elems[0].Count = uint32(initial)
	}
	seg, err := shm.OpenSegmentInit(namedSemaphoreObjectName(name), 1, mode, perm, init)
	if err != nil {
		return nil, err
	}
	return &namedSemaphore{seg: seg, state: &seg.Elements()[0]}, nil
}

func (s *namedSemaphore) acquire() error {
	_, err := s.wait(nil, true)
	return err
}

func (s *namedSemaphore) acquireTimeout(d ipcsync.Duration) (bool, error) {
	deadline := common.NewDeadline(d)
	return s.wait(&deadline, true)
}

func (s *namedSemaphore) tryAcquire() (bool, error) {
	return s.wait(nil, false)
}

// wait decrements a positive count. A nil deadline means no timeout.
func (s *namedSemaphore) wait(deadline *common.Deadline, block bool) (bool, error) {
	state := s.state
	if state == nil {
		return false, ipcsync.NewError(unix.EBADF, "acquire semaphore", "")
	}
	for {
		if c := atomic.LoadUint32(&state.Count); c > 0 {
			if atomic.CompareAndSwapUint32(&state.Count, c, c-1) {
				return true, nil
			}
			continue
		}
		if !block {
			return false, nil
		}
		var ts *unix.Timespec
		if deadline != nil {
			if deadline.Expired() {
				return false, nil
			}
			abs := deadline.Timespec(1<<63 - 1)
			ts = &abs
		}
		atomic.AddUint32(&state.Waiters, 1)
		err := futexWait(&state.Count, 0, ts)
		atomic.AddUint32(&state.Waiters, ^uint32(0))
		if err != nil && !common.IsTimeoutErr(err) {
			return false, err
		}
	}
}

func (s *namedSemaphore) release() error {
	state := s.state
	if state == nil {
		return ipcsync.NewError(unix.EBADF, "release semaphore", "")
	}
	for {
		c := atomic.LoadUint32(&state.Count)
		if c >= semMaxValue {
			return ipcsync.NewError(unix.EOVERFLOW, "release semaphore", "")
		}
		if atomic.CompareAndSwapUint32(&state.Count, c, c+1) {
			break
		}
	}
	if atomic.LoadUint32(&state.Waiters) > 0 {
		if _, err := futexWake(&state.Count, 1); err != nil {
			return err
		}
	}
	return nil
}

func (s *namedSemaphore) close() error {
	if s.seg == nil {
		return nil
	}
	s.state = nil
	err := s.seg.Unmap()
	s.seg = nil
	return err
}

func unlinkNamedSemaphore(name string) error {
	return shm.UnlinkSegment(namedSemaphoreObjectName(name))
}
