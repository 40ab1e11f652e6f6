// Copyright 2016 Aleksandr Demakin. All rights reserved.

package common

import (
	"github.com/nxgtw/go-ipcsync"

	"golang.org/x/sys/windows"
)

// TimeoutMillis converts a timeout into the relative milliseconds taken by
// WaitForSingleObject. The value is rounded up and clamped below INFINITE.
func TimeoutMillis(d ipcsync.Duration) uint32 {
	const maxWait = uint64(windows.INFINITE - 1)
	std := d.Std()
	millis := uint64(std / 1e6)
	if std%1e6 != 0 {
		millis++
	}
	if millis > maxWait {
		return uint32(maxWait)
	}
	return uint32(millis)
}
