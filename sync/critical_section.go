// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"github.com/nxgtw/go-ipcsync"

	"github.com/pkg/errors"
)

// CriticalSection holds a mutex from its creation until Leave is called.
// Typical usage:
//
//	cs, err := EnterCriticalSection(m)
//	if err != nil {
//		return err
//	}
//	defer cs.Leave()
type CriticalSection struct {
	m       Mutex
	outcome ipcsync.LockOutcome
	left    bool
}

// EnterCriticalSection locks m and returns a section, which releases it.
func EnterCriticalSection(m Mutex) (*CriticalSection, error) {
	if m == nil {
		return nil, errors.New("nil mutex")
	}
	outcome, err := m.Lock()
	if err != nil {
		return nil, errors.Wrap(err, "failed to enter critical section")
	}
	return &CriticalSection{m: m, outcome: outcome}, nil
}

// Outcome returns the outcome of the lock operation.
func (cs *CriticalSection) Outcome() ipcsync.LockOutcome {
	return cs.outcome
}

// Recovered returns true, if the previous holder of the mutex has died while holding it.
// Data protected by the mutex may be inconsistent in this case.
func (cs *CriticalSection) Recovered() bool {
	return cs.outcome == ipcsync.Recovered
}

// Leave releases the mutex. Errors are logged, so it can be deferred. Subsequent calls do nothing.
func (cs *CriticalSection) Leave() {
	if err := cs.Close(); err != nil {
		ipcsync.Logger().Debug("failed to leave critical section", "error", err)
	}
}

// Close is like Leave, but returns the error.
func (cs *CriticalSection) Close() error {
	if cs.left {
		return nil
	}
	cs.left = true
	return errors.Wrap(cs.m.Release(), "failed to leave critical section")
}

// WithLock runs fn inside a critical section on m.
// fn receives the lock outcome. The mutex is released even if fn panics.
// If fn succeeds, the result of the release is returned.
func WithLock(m Mutex, fn func(outcome ipcsync.LockOutcome) error) (err error) {
	cs, err := EnterCriticalSection(m)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := cs.Close(); err == nil {
			err = closeErr
		}
	}()
	return fn(cs.outcome)
}
