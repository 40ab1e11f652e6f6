// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package thread runs functions on dedicated OS threads and keeps track of
// the native thread ids of the running ones.
package thread

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/nxgtw/go-ipcsync"

	"github.com/pkg/errors"
)

// Func is a function executed by a Thread.
type Func func() error

// Thread is a goroutine locked to its OS thread for the whole lifetime of its function.
type Thread struct {
	id       int
	fn       Func
	registry *Registry
	tid      atomic.Int64
	started  atomic.Bool
	done     chan struct{}
	err      error
}

// New returns a thread, which is not started. registry may be nil.
func New(id int, fn Func, registry *Registry) *Thread {
	return &Thread{id: id, fn: fn, registry: registry, done: make(chan struct{})}
}

// Start starts the thread. A thread can be started only once.
func (t *Thread) Start() error {
	if !t.started.CompareAndSwap(false, true) {
		return errors.Errorf("thread %d has already been started", t.id)
	}
	go t.run()
	return nil
}

func (t *Thread) run() {
	defer close(t.done)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	tid := currentTID()
	t.tid.Store(int64(tid))
	if t.registry != nil {
		if err := t.registry.Register(t.id, tid); err != nil {
			t.err = err
			return
		}
		defer func() {
			if err := t.registry.Unregister(t.id); err != nil {
				ipcsync.Logger().Debug("failed to unregister thread", "id", t.id, "error", err)
			}
		}()
	}
	defer func() {
		if r := recover(); r != nil {
			t.err = errors.Errorf("thread %d panicked: %v", t.id, r)
		}
	}()
	t.err = t.fn()
}

// ID returns the logical id of the thread.
func (t *Thread) ID() int {
	return t.id
}

// TID returns the native id of the thread, or 0, if it has not been started yet.
func (t *Thread) TID() int {
	return int(t.tid.Load())
}

// Join waits for the thread to finish and returns the result of its function.
func (t *Thread) Join() error {
	if !t.started.Load() {
		return errors.Errorf("thread %d has not been started", t.id)
	}
	<-t.done
	return t.err
}

// JoinTimeout is like Join, but waits for not more, than d.
// It returns false, if the thread is still running.
func (t *Thread) JoinTimeout(d ipcsync.Duration) (bool, error) {
	if !t.started.Load() {
		return false, errors.Errorf("thread %d has not been started", t.id)
	}
	timer := time.NewTimer(d.Std())
	defer timer.Stop()
	select {
	case <-t.done:
		return true, t.err
	case <-timer.C:
		return false, nil
	}
}

// Done returns a channel, which is closed, when the thread finishes.
func (t *Thread) Done() <-chan struct{} {
	return t.done
}

// Sleep pauses the current goroutine for d.
func Sleep(d ipcsync.Duration) {
	time.Sleep(d.Std())
}
