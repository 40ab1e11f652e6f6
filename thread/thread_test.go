// Copyright 2016 Aleksandr Demakin. All rights reserved.

package thread

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nxgtw/go-ipcsync"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestThread(t *testing.T) {
	a := assert.New(t)
	registry := NewRegistry()
	release := make(chan struct{})
	var tid int
	th := New(7, func() error {
		tid = currentTID()
		<-release
		return nil
	}, registry)
	a.Error(th.Join())
	a.NoError(th.Start())
	a.Error(th.Start())
	a.Eventually(func() bool { return th.TID() != 0 }, time.Second, time.Millisecond)
	a.Eventually(func() bool { return registry.Len() == 1 }, time.Second, time.Millisecond)
	registered, found := registry.TID(7)
	a.True(found)
	a.Equal(th.TID(), registered)
	id, found := registry.ID(th.TID())
	a.True(found)
	a.Equal(7, id)
	joined, err := th.JoinTimeout(ipcsync.Milliseconds(20))
	a.False(joined)
	a.NoError(err)
	close(release)
	a.NoError(th.Join())
	a.Equal(tid, th.TID())
	a.Equal(0, registry.Len())
}

func TestThreadError(t *testing.T) {
	a := assert.New(t)
	fnErr := errors.New("thread error")
	th := New(1, func() error { return fnErr }, nil)
	a.NoError(th.Start())
	joined, err := th.JoinTimeout(ipcsync.Seconds(5))
	a.True(joined)
	a.Equal(fnErr, err)
	th = New(2, func() error { panic("oops") }, nil)
	a.NoError(th.Start())
	a.Error(th.Join())
}

func TestRegistry(t *testing.T) {
	a := assert.New(t)
	r := NewRegistry()
	a.NoError(r.Register(1, 100))
	a.Error(r.Register(1, 101))
	a.NoError(r.Register(2, 200))
	a.Equal(2, r.Len())
	tid, found := r.TID(2)
	a.True(found)
	a.Equal(200, tid)
	a.NoError(r.Unregister(1))
	a.NoError(r.Unregister(1))
	_, found = r.ID(100)
	a.False(found)
	a.Equal(1, r.Len())
}

func TestGroup(t *testing.T) {
	a := assert.New(t)
	const size, count = 4, 16
	g, err := NewGroup(size)
	if !a.NoError(err) {
		return
	}
	var running, maxRunning atomic.Int32
	for i := 0; i < count; i++ {
		_, err := g.Go(func() error {
			n := running.Add(1)
			for {
				m := maxRunning.Load()
				if n <= m || maxRunning.CompareAndSwap(m, n) {
					break
				}
			}
			Sleep(ipcsync.Milliseconds(5))
			running.Add(-1)
			return nil
		})
		a.NoError(err)
	}
	a.NoError(g.Wait())
	a.LessOrEqual(maxRunning.Load(), int32(size))
	a.Len(g.Threads(), count)
	a.Equal(0, g.Registry().Len())
	a.NoError(g.Close(ipcsync.Seconds(5)))
	_, err = NewGroup(0)
	a.Error(err)
}

func TestGroupDistinctThreads(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "windows" {
		t.Skip("native thread ids are not available")
	}
	a := assert.New(t)
	g, err := NewGroup(2)
	if !a.NoError(err) {
		return
	}
	defer g.Close(ipcsync.Seconds(5))
	barrier := make(chan struct{})
	var started atomic.Int32
	fn := func() error {
		started.Add(1)
		<-barrier
		return nil
	}
	t1, err := g.Go(fn)
	a.NoError(err)
	t2, err := g.Go(fn)
	a.NoError(err)
	a.Eventually(func() bool { return started.Load() == 2 }, time.Second, time.Millisecond)
	a.Equal(2, g.Registry().Len())
	a.NotEqual(t1.TID(), t2.TID())
	close(barrier)
	a.NoError(g.Wait())
}

func TestSleep(t *testing.T) {
	d := ipcsync.Milliseconds(20)
	before := time.Now()
	Sleep(d)
	assert.GreaterOrEqual(t, time.Since(before), d.Std())
}
