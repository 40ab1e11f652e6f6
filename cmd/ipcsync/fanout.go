// Copyright 2016 Aleksandr Demakin. All rights reserved.

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/nxgtw/go-ipcsync"
	"github.com/nxgtw/go-ipcsync/internal/syncutil"
	"github.com/nxgtw/go-ipcsync/shm"
	"github.com/nxgtw/go-ipcsync/sync"
	"github.com/nxgtw/go-ipcsync/thread"

	"github.com/pkg/errors"
)

// childCommand returns a command, which runs this program with the given arguments.
var childCommand = func(args []string) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, errors.Wrap(err, "failed to find the executable")
	}
	return exec.Command(exe, args...), nil
}

// lockedWriter serializes writes of the child processes.
type lockedWriter struct {
	mut syncutil.Mutex
	w   io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mut.Lock()
	defer lw.mut.Unlock()
	return lw.w.Write(p)
}

func argsSegmentName(name string) string {
	return name + ".args"
}

// runFanout stores the arguments in a shared segment and starts child processes,
// each of which prints the first argument nobody has printed yet.
func runFanout(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("fanout", flag.ContinueOnError)
	name := fs.String("name", "ipcsync.fanout", "name of the mutex and the segment")
	delay := fs.Duration("delay", 2*time.Millisecond, "start delay between consecutive children")
	workers := fs.Int("workers", 0, "number of child processes, twice the number of arguments if 0")
	parallel := fs.Int("parallel", 8, "maximum number of simultaneously running children")
	if err := fs.Parse(args); err != nil {
		return err
	}
	values := fs.Args()
	if len(values) == 0 {
		return errors.New("no arguments specified")
	}
	if *workers <= 0 {
		*workers = 2 * len(values)
	}
	mutex, err := sync.NewNamedMutex(*name, ipcsync.OpenOrCreate, 0666)
	if err != nil {
		return err
	}
	defer mutex.Close()
	segName := argsSegmentName(*name)
	if err := shm.UnlinkSegment(segName); err != nil {
		return err
	}
	var setErr error
	seg, err := shm.OpenSegmentInit(segName, len(values), ipcsync.CreateExclusive, 0666, func(cells []ConsumeOnceCell) {
		for i, v := range values {
			if err := cells[i].Set(v); err != nil && setErr == nil {
				setErr = err
			}
		}
	})
	if err != nil {
		return err
	}
	// this process has created the segment, so it removes it.
	defer func() {
		ipcsync.LogCloseError(seg.Unmap(), "segment", segName)
		ipcsync.LogCloseError(shm.UnlinkSegment(segName), "segment", segName)
	}()
	if setErr != nil {
		return setErr
	}
	group, err := thread.NewGroup(*parallel)
	if err != nil {
		return err
	}
	defer group.Close(ipcsync.Seconds(5))
	w := &lockedWriter{w: out}
	childArgs := []string{"fanout-child", "-name", *name, "-count", strconv.Itoa(len(values))}
	for i := 0; i < *workers; i++ {
		cmd, err := childCommand(append(childArgs, "-delay", (*delay * time.Duration(i)).String()))
		if err != nil {
			return err
		}
		cmd.Stdout, cmd.Stderr = w, w
		if _, err := group.Go(func() error { return errors.Wrap(cmd.Run(), "child failed") }); err != nil {
			return err
		}
	}
	if err := group.Wait(); err != nil {
		return err
	}
	for i, c := range seg.Elements() {
		if c.Available() {
			return errors.Errorf("argument %d has not been consumed", i)
		}
	}
	return nil
}

func runFanoutChild(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("fanout-child", flag.ContinueOnError)
	name := fs.String("name", "", "name of the mutex and the segment")
	count := fs.Int("count", 0, "number of cells")
	delay := fs.Duration("delay", 0, "start delay")
	if err := fs.Parse(args); err != nil {
		return err
	}
	thread.Sleep(ipcsync.FromStd(*delay))
	mutex, err := sync.NewNamedMutex(*name, ipcsync.OpenExisting, 0666)
	if err != nil {
		return err
	}
	defer mutex.Close()
	seg, err := shm.OpenSegment[ConsumeOnceCell](argsSegmentName(*name), *count, ipcsync.OpenExisting, 0666)
	if err != nil {
		return err
	}
	// only the creator unlinks the segment.
	defer seg.Unmap()
	return sync.WithLock(mutex, func(outcome ipcsync.LockOutcome) error {
		if outcome == ipcsync.Recovered {
			ipcsync.Logger().Warn("a previous consumer died inside the critical section", "name", *name)
		}
		cells := seg.Elements()
		for i := range cells {
			if arg, ok := cells[i].Consume(); ok {
				fmt.Fprintf(out, "Argument: %s, from pid: %d\n", arg, os.Getpid())
				return nil
			}
		}
		return nil
	})
}
