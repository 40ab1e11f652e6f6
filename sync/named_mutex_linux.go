// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/nxgtw/go-ipcsync"
	"github.com/nxgtw/go-ipcsync/internal/common"
	"github.com/nxgtw/go-ipcsync/internal/proc"
	"github.com/nxgtw/go-ipcsync/shm"

	"golang.org/x/sys/unix"
)

const (
	// the word of a mutex holds the owner's pid in the low 30 bits.
	cMutexOwnerMask = uint32(proc.MaxPid)
	// cMutexWaiters is set, when there may be processes sleeping on the word.
	cMutexWaiters = uint32(1) << 31

	cMutexSpinCount = 100

	// a sleeping waiter wakes up at least this often to check, if the owner is alive.
	cMutexPollInterval = 100 * time.Millisecond
)

// namedMutex is a robust lightweight mutex. Its state is a single uint32 word
// in a shared memory segment:
//
//	0 - unlocked.
//	pid - locked by process pid, nobody waits.
//	pid | cMutexWaiters - locked, there may be waiters.
//
// Ownership is tracked per process, so any goroutine of the owning process may release the mutex.
type namedMutex struct {
	seg  *shm.Segment[uint32]
	word *uint32
}

func newNamedMutex(name string, mode ipcsync.CreationMode, perm os.FileMode) (*namedMutex, error) {
	seg, err := shm.OpenSegment[uint32](namedMutexObjectName(name), 1, mode, perm)
	if err != nil {
		return nil, err
	}
	return &namedMutex{seg: seg, word: &seg.Elements()[0]}, nil
}

func (m *namedMutex) lock() (ipcsync.LockOutcome, error) {
	return m.acquire(common.NoDeadline(), true)
}

func (m *namedMutex) lockTimeout(d ipcsync.Duration) (ipcsync.LockOutcome, error) {
	return m.acquire(common.NewDeadline(d), true)
}

func (m *namedMutex) tryLock() (ipcsync.LockOutcome, error) {
	return m.acquire(common.NoDeadline(), false)
}

func (m *namedMutex) acquire(deadline common.Deadline, block bool) (ipcsync.LockOutcome, error) {
	word := m.word
	if word == nil {
		return ipcsync.TimedOut, ipcsync.NewError(unix.EBADF, "lock mutex", "")
	}
	self := proc.Current()
	for i := 0; i < cMutexSpinCount; i++ {
		if atomic.CompareAndSwapUint32(word, 0, self) {
			return ipcsync.Acquired, nil
		}
	}
	waited := false
	for {
		v := atomic.LoadUint32(word)
		owner := v & cMutexOwnerMask
		if owner == 0 {
			// a process, which has slept, cannot know if there are other sleepers,
			// so it keeps the waiters flag.
			newValue := self | (v & cMutexWaiters)
			if waited {
				newValue |= cMutexWaiters
			}
			if atomic.CompareAndSwapUint32(word, v, newValue) {
				return ipcsync.Acquired, nil
			}
			continue
		}
		if !proc.Alive(owner) {
			// only one process can replace this exact value, so only one gets Recovered.
			if atomic.CompareAndSwapUint32(word, v, self|(v&cMutexWaiters)) {
				return ipcsync.Recovered, nil
			}
			continue
		}
		if !block {
			return ipcsync.AlreadyHeld, nil
		}
		if deadline.Expired() {
			m.passWakeup(waited)
			return ipcsync.TimedOut, nil
		}
		if v&cMutexWaiters == 0 {
			if !atomic.CompareAndSwapUint32(word, v, v|cMutexWaiters) {
				continue
			}
			v |= cMutexWaiters
		}
		waited = true
		ts := deadline.Timespec(cMutexPollInterval)
		if err := futexWait(word, v, &ts); err != nil && !common.IsTimeoutErr(err) {
			return ipcsync.TimedOut, err
		}
	}
}

// passWakeup wakes another waiter, if a waiter, which may have consumed a wake-up, gives up.
func (m *namedMutex) passWakeup(waited bool) {
	if !waited {
		return
	}
	if v := atomic.LoadUint32(m.word); v&cMutexOwnerMask == 0 && v&cMutexWaiters != 0 {
		futexWake(m.word, 1)
	}
}

func (m *namedMutex) release() error {
	word := m.word
	if word == nil {
		return ipcsync.NewError(unix.EBADF, "release mutex", "")
	}
	self := proc.Current()
	for {
		v := atomic.LoadUint32(word)
		if v&cMutexOwnerMask != self {
			return ipcsync.NewError(unix.EPERM, "release mutex", "")
		}
		if atomic.CompareAndSwapUint32(word, v, 0) {
			if v&cMutexWaiters != 0 {
				if _, err := futexWake(word, 1); err != nil {
					return err
				}
			}
			return nil
		}
	}
}

func (m *namedMutex) close() error {
	if m.seg == nil {
		return nil
	}
	m.word = nil
	err := m.seg.Unmap()
	m.seg = nil
	return err
}

func unlinkNamedMutex(name string) error {
	return shm.UnlinkSegment(namedMutexObjectName(name))
}
