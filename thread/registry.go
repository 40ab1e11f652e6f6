// Copyright 2016 Aleksandr Demakin. All rights reserved.

package thread

import (
	"github.com/nxgtw/go-ipcsync"
	"github.com/nxgtw/go-ipcsync/sync"

	"github.com/pkg/errors"
)

// Registry maps logical thread ids to native thread ids and back.
// It is safe for concurrent use.
type Registry struct {
	m     *sync.UnnamedMutex
	byID  map[int]int
	byTID map[int]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		m:     sync.NewUnnamedMutex(),
		byID:  make(map[int]int),
		byTID: make(map[int]int),
	}
}

// Register adds a running thread. Each logical id can be registered once.
func (r *Registry) Register(id, tid int) error {
	return sync.WithLock(r.m, func(ipcsync.LockOutcome) error {
		if _, found := r.byID[id]; found {
			return errors.Errorf("thread %d is already registered", id)
		}
		r.byID[id] = tid
		r.byTID[tid] = id
		return nil
	})
}

// Unregister removes a thread. Removing an unknown id is not an error.
func (r *Registry) Unregister(id int) error {
	return sync.WithLock(r.m, func(ipcsync.LockOutcome) error {
		if tid, found := r.byID[id]; found {
			delete(r.byID, id)
			if r.byTID[tid] == id {
				delete(r.byTID, tid)
			}
		}
		return nil
	})
}

// TID returns the native id of a registered thread.
func (r *Registry) TID(id int) (tid int, found bool) {
	r.lock(func() { tid, found = r.byID[id] })
	return
}

// ID returns the logical id of the thread with the given native id.
func (r *Registry) ID(tid int) (id int, found bool) {
	r.lock(func() { id, found = r.byTID[tid] })
	return
}

// Len returns the number of registered threads.
func (r *Registry) Len() (l int) {
	r.lock(func() { l = len(r.byID) })
	return
}

func (r *Registry) lock(f func()) {
	cs, err := sync.EnterCriticalSection(r.m)
	if err != nil {
		panic(err)
	}
	defer cs.Leave()
	f()
}
