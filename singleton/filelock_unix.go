// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package singleton

import (
	"os"

	"github.com/nxgtw/go-ipcsync"

	"golang.org/x/sys/unix"
)

func lockFile(file *os.File) (bool, error) {
	for {
		err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		switch err {
		case nil:
			return true, nil
		case unix.EWOULDBLOCK:
			return false, nil
		case unix.EINTR:
			continue
		default:
			return false, ipcsync.WrapError(err, "lock file", "flock")
		}
	}
}

func unlockFile(file *os.File) error {
	return ipcsync.WrapError(unix.Flock(int(file.Fd()), unix.LOCK_UN), "unlock file", "flock")
}
