// Copyright 2016 Aleksandr Demakin. All rights reserved.

package ipcsync

//go:generate stringer -type=LockOutcome

// LockOutcome is the result of a mutex acquisition attempt.
// Contention and timeouts are outcomes, not errors.
type LockOutcome int

const (
	// Acquired means the caller now holds the mutex.
	Acquired LockOutcome = iota
	// AlreadyHeld means another holder owns the mutex. Only returned by non-blocking attempts.
	AlreadyHeld
	// Recovered means the caller now holds the mutex, and the previous holder
	// terminated without releasing it. Data guarded by the mutex may be inconsistent.
	Recovered
	// TimedOut means a timed attempt expired before the mutex became free.
	TimedOut
)

// Held returns true, if the outcome means the caller holds the mutex.
func (o LockOutcome) Held() bool {
	return o == Acquired || o == Recovered
}
