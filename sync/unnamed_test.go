// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"syscall"
	"testing"
	"time"

	"github.com/nxgtw/go-ipcsync"

	"github.com/stretchr/testify/assert"
)

func TestUnnamedMutex(t *testing.T) {
	a := assert.New(t)
	m := NewUnnamedMutex()
	a.True(ipcsync.HasCode(m.Release(), syscall.EPERM))
	outcome, err := m.TryLock()
	a.NoError(err)
	a.Equal(ipcsync.Acquired, outcome)
	outcome, err = m.TryLock()
	a.NoError(err)
	a.Equal(ipcsync.AlreadyHeld, outcome)
	timeout := ipcsync.Milliseconds(50)
	before := time.Now()
	outcome, err = m.LockTimeout(timeout)
	a.NoError(err)
	a.Equal(ipcsync.TimedOut, outcome)
	a.GreaterOrEqual(time.Since(before), timeout.Std())
	a.NoError(m.Release())
	outcome, err = m.Lock()
	a.NoError(err)
	a.Equal(ipcsync.Acquired, outcome)
	a.NoError(m.Release())
	a.NoError(m.Close())
}

func TestUnnamedMutexValueInc(t *testing.T) {
	testLockerValueInc(t, NewUnnamedMutex())
}

func TestUnnamedSemaphore(t *testing.T) {
	a := assert.New(t)
	s, err := NewUnnamedSemaphore(1)
	if !a.NoError(err) {
		return
	}
	ok, err := s.TryAcquire()
	a.NoError(err)
	a.True(ok)
	ok, err = s.TryAcquire()
	a.NoError(err)
	a.False(ok)
	timeout := ipcsync.Milliseconds(50)
	before := time.Now()
	ok, err = s.AcquireTimeout(timeout)
	a.NoError(err)
	a.False(ok)
	a.GreaterOrEqual(time.Since(before), timeout.Std())
	released := make(chan error, 1)
	go func() {
		time.Sleep(20 * time.Millisecond)
		released <- s.Release()
	}()
	a.NoError(s.Acquire())
	a.NoError(<-released)
	a.NoError(s.Release())
	a.NoError(s.Close())
}

func TestUnnamedSemaphoreBounds(t *testing.T) {
	a := assert.New(t)
	_, err := NewUnnamedSemaphore(-1)
	a.Error(err)
	_, err = NewUnnamedSemaphore(CSemMaxVal + 1)
	a.Error(err)
	s, err := NewUnnamedSemaphore(CSemMaxVal)
	if !a.NoError(err) {
		return
	}
	a.True(ipcsync.HasCode(s.Release(), syscall.EOVERFLOW))
	ok, err := s.TryAcquire()
	a.NoError(err)
	a.True(ok)
	a.NoError(s.Release())
}
