// Copyright 2016 Aleksandr Demakin. All rights reserved.

package thread

import "golang.org/x/sys/windows"

func currentTID() int {
	return int(windows.GetCurrentThreadId())
}
