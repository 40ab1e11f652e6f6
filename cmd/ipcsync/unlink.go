// Copyright 2016 Aleksandr Demakin. All rights reserved.

package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/nxgtw/go-ipcsync/shm"
	"github.com/nxgtw/go-ipcsync/singleton"
	"github.com/nxgtw/go-ipcsync/sync"

	"github.com/pkg/errors"
)

func runUnlink(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("unlink", flag.ContinueOnError)
	mutex := fs.String("mutex", "", "mutex name")
	sema := fs.String("semaphore", "", "semaphore name")
	segment := fs.String("segment", "", "segment name")
	instance := fs.String("instance", "", "instance name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	unlinkers := []struct {
		kind, name string
		unlink     func(string) error
	}{
		{"mutex", *mutex, sync.UnlinkNamedMutex},
		{"semaphore", *sema, sync.UnlinkNamedSemaphore},
		{"segment", *segment, shm.UnlinkSegment},
		{"instance", *instance, singleton.Unlink},
	}
	done := 0
	for _, u := range unlinkers {
		if len(u.name) == 0 {
			continue
		}
		if err := u.unlink(u.name); err != nil {
			return errors.Wrapf(err, "failed to unlink %s %q", u.kind, u.name)
		}
		fmt.Fprintf(out, "unlinked %s %q\n", u.kind, u.name)
		done++
	}
	if done == 0 {
		return errors.New("nothing to unlink")
	}
	return nil
}
