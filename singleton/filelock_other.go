// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build !darwin && !dragonfly && !freebsd && !linux && !netbsd && !openbsd && !windows

package singleton

import (
	"os"

	"github.com/nxgtw/go-ipcsync"
)

func lockFile(file *os.File) (bool, error) {
	return false, ipcsync.ErrUnsupported
}

func unlockFile(file *os.File) error {
	return ipcsync.ErrUnsupported
}
