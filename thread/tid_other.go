// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build !linux && !windows

package thread

import "os"

// there is no portable thread id, the pid keeps registry lookups working for a single thread.
func currentTID() int {
	return os.Getpid()
}
