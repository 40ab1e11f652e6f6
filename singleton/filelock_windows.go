// Copyright 2016 Aleksandr Demakin. All rights reserved.

package singleton

import (
	"os"

	"github.com/nxgtw/go-ipcsync"

	"golang.org/x/sys/windows"
)

// the locked byte lies far beyond the data, so other processes can still read the pid.
const lockOffsetHigh = 1

func lockFile(file *os.File) (bool, error) {
	ol := windows.Overlapped{OffsetHigh: lockOffsetHigh}
	flags := uint32(windows.LOCKFILE_EXCLUSIVE_LOCK | windows.LOCKFILE_FAIL_IMMEDIATELY)
	err := windows.LockFileEx(windows.Handle(file.Fd()), flags, 0, 1, 0, &ol)
	switch err {
	case nil:
		return true, nil
	case windows.ERROR_LOCK_VIOLATION:
		return false, nil
	default:
		return false, ipcsync.WrapError(err, "lock file", "LockFileEx")
	}
}

func unlockFile(file *os.File) error {
	ol := windows.Overlapped{OffsetHigh: lockOffsetHigh}
	err := windows.UnlockFileEx(windows.Handle(file.Fd()), 0, 1, 0, &ol)
	return ipcsync.WrapError(err, "unlock file", "UnlockFileEx")
}
