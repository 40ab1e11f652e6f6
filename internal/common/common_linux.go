// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build linux

package common

import (
	"time"

	"github.com/nxgtw/go-ipcsync"

	"golang.org/x/sys/unix"
)

// Deadline is an absolute point on the CLOCK_MONOTONIC clock.
// FUTEX_WAIT_BITSET takes absolute timeouts on this clock, so a deadline
// computed once survives any number of spurious wake-ups and EINTRs.
type Deadline struct {
	at int64
}

// MonotonicNow returns the current CLOCK_MONOTONIC time in nanoseconds.
func MonotonicNow() int64 {
	var ts unix.Timespec
	// CLOCK_MONOTONIC is always available on linux.
	_ = unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts)
	return ts.Nano()
}

// NewDeadline returns now + d.
func NewDeadline(d ipcsync.Duration) Deadline {
	return Deadline{at: saturatingAdd(MonotonicNow(), d.Std())}
}

// Expired returns true, if the deadline is in the past.
func (d Deadline) Expired() bool {
	return MonotonicNow() >= d.at
}

// Timespec returns the deadline, or now + limit, whichever comes first.
func (d Deadline) Timespec(limit time.Duration) unix.Timespec {
	at := d.at
	if capped := saturatingAdd(MonotonicNow(), limit); capped < at {
		at = capped
	}
	return unix.NsecToTimespec(at)
}

// NoDeadline returns a deadline, which never expires.
func NoDeadline() Deadline {
	return Deadline{at: 1<<63 - 1}
}

func saturatingAdd(now int64, d time.Duration) int64 {
	if int64(d) > (1<<63-1)-now {
		return 1<<63 - 1
	}
	return now + int64(d)
}

// IsTimeoutErr returns true, if the error is ETIMEDOUT.
func IsTimeoutErr(err error) bool {
	return ipcsync.HasCode(err, unix.ETIMEDOUT)
}
