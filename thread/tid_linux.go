// Copyright 2016 Aleksandr Demakin. All rights reserved.

package thread

import "golang.org/x/sys/unix"

func currentTID() int {
	return unix.Gettid()
}
