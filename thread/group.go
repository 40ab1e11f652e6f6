// Copyright 2016 Aleksandr Demakin. All rights reserved.

package thread

import (
	"github.com/nxgtw/go-ipcsync"
	"github.com/nxgtw/go-ipcsync/internal/syncutil"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
)

// Group runs threads on a bounded pool of OS threads.
// Every running thread of a group is present in its registry.
type Group struct {
	pool     *ants.Pool
	registry *Registry
	mut      syncutil.RWMutex
	threads  []*Thread
	nextID   int
}

// NewGroup returns a group, which runs not more, than size threads simultaneously.
// Threads started above the limit wait for a free slot.
func NewGroup(size int) (*Group, error) {
	if size <= 0 {
		return nil, errors.Errorf("invalid group size %d", size)
	}
	pool, err := ants.NewPool(size, ants.WithPanicHandler(func(r interface{}) {
		ipcsync.Logger().Error("thread pool worker panicked", "panic", r)
	}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create thread pool")
	}
	return &Group{pool: pool, registry: NewRegistry()}, nil
}

// Go starts fn on a pooled thread. The returned thread must not be started again.
func (g *Group) Go(fn Func) (*Thread, error) {
	g.mut.Lock()
	t := New(g.nextID, fn, g.registry)
	g.nextID++
	g.threads = append(g.threads, t)
	g.mut.Unlock()
	t.started.Store(true)
	if err := g.pool.Submit(t.run); err != nil {
		t.err = errors.Wrap(err, "failed to submit thread")
		close(t.done)
		return nil, t.err
	}
	return t, nil
}

// Registry returns the registry of the running threads.
func (g *Group) Registry() *Registry {
	return g.registry
}

// Running returns the number of threads, which are running now.
func (g *Group) Running() int {
	return g.pool.Running()
}

// Threads returns all threads started by the group.
func (g *Group) Threads() []*Thread {
	g.mut.RLock()
	defer g.mut.RUnlock()
	return append([]*Thread(nil), g.threads...)
}

// Wait joins all threads and returns the first error.
func (g *Group) Wait() error {
	var result error
	for _, t := range g.Threads() {
		if err := t.Join(); err != nil && result == nil {
			result = errors.Wrapf(err, "thread %d failed", t.ID())
		}
	}
	return result
}

// Close waits for the threads for not more, than d, and releases the pool.
func (g *Group) Close(d ipcsync.Duration) error {
	return errors.Wrap(g.pool.ReleaseTimeout(d.Std()), "failed to release thread pool")
}
