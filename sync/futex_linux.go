// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"unsafe"

	"github.com/nxgtw/go-ipcsync"

	"golang.org/x/sys/unix"
)

const (
	cFUTEX_WAKE        = 1
	cFUTEX_WAIT_BITSET = 9

	cFUTEX_BITSET_MATCH_ANY = 0xffffffff
)

// futexWait sleeps, while *addr == value, until woken or until the absolute
// CLOCK_MONOTONIC time ts passes. nil ts means no timeout.
// A value mismatch (EAGAIN) and a signal (EINTR) are reported as spurious wake-ups, ie nil.
// The futex is shared between processes, so FUTEX_PRIVATE_FLAG is not used.
func futexWait(addr *uint32, value uint32, ts *unix.Timespec) error {
	_, _, errno := unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(cFUTEX_WAIT_BITSET),
		uintptr(value),
		uintptr(unsafe.Pointer(ts)),
		0,
		uintptr(cFUTEX_BITSET_MATCH_ANY))
	switch errno {
	case 0, unix.EAGAIN, unix.EINTR:
		return nil
	default:
		return ipcsync.NewError(errno, "wait", "futex")
	}
}

// futexWake wakes up to count waiters sleeping on addr.
func futexWake(addr *uint32, count int) (int, error) {
	woken, _, errno := unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(cFUTEX_WAKE),
		uintptr(count),
		0, 0, 0)
	if errno != 0 {
		return 0, ipcsync.NewError(errno, "wake", "futex")
	}
	return int(woken), nil
}
