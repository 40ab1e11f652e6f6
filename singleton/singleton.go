// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package singleton makes sure only one instance of a program runs at a time.
//
// An instance holds a named mutex for its lifetime and consumes the single unit
// of a named signal semaphore, which starts with one unit. A new instance, which finds the semaphore empty,
// either gives up, or releases the semaphore to ask the running one to terminate,
// and retries. If the holder of the mutex has died, the new instance recovers
// the mutex and takes its place.
package singleton

import (
	"os"
	"time"

	"github.com/nxgtw/go-ipcsync"
	"github.com/nxgtw/go-ipcsync/sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
)

const (
	// ReplaceEnv is the environment variable, which makes a new instance replace a running one,
	// if it is set to ReplaceValue.
	ReplaceEnv   = "IPCSYNC_REPLACE"
	ReplaceValue = "NEW"

	defaultRetryInterval = 2 * time.Second
	defaultRetries       = 5
)

var (
	// ErrAlreadyRunning is returned, if another instance is running.
	ErrAlreadyRunning = errors.New("another instance is already running")

	errStillRunning = errors.New("the running instance has not terminated yet")
)

// Config describes a single instance lock.
type Config struct {
	// Name identifies the program. Instances with the same name exclude each other.
	Name string
	// Replace makes a new instance ask the running one to terminate.
	Replace bool
	// Retry is the policy for waiting until the running instance terminates.
	// If nil, it retries every 2 seconds, 5 times.
	Retry backoff.BackOff
	// Perm is the permission bits of the named objects. 0666 is used, if not set.
	Perm os.FileMode
}

// ReplaceRequested returns true, if the environment asks to replace a running instance.
func ReplaceRequested() bool {
	return os.Getenv(ReplaceEnv) == ReplaceValue
}

// Instance is the running instance of a program.
// On windows Close must be called by the goroutine, which called Acquire.
type Instance struct {
	name      string
	mutex     *sync.NamedMutex
	signal    *sync.NamedSemaphore
	recovered bool
	closed    bool
	// lostSignal is set, if the previous attempt found the mutex free and the signal empty.
	lostSignal bool
}

// Acquire makes the calling process the running instance.
func Acquire(cfg Config) (inst *Instance, err error) {
	if len(cfg.Name) == 0 {
		return nil, errors.New("empty instance name")
	}
	mutex, err := sync.NewNamedMutex(lockName(cfg.Name), ipcsync.OpenOrCreate, cfg.Perm)
	if err != nil {
		return nil, err
	}
	signal, err := sync.NewNamedSemaphore(signalName(cfg.Name), ipcsync.OpenOrCreate, cfg.Perm, 1)
	if err != nil {
		mutex.Close()
		return nil, err
	}
	inst = &Instance{name: cfg.Name, mutex: mutex, signal: signal}
	defer func() {
		if err != nil {
			ipcsync.LogCloseError(signal.Close(), "instance signal", cfg.Name)
			ipcsync.LogCloseError(mutex.Close(), "instance lock", cfg.Name)
		}
	}()
	retry := cfg.Retry
	if retry == nil {
		retry = backoff.WithMaxRetries(backoff.NewConstantBackOff(defaultRetryInterval), defaultRetries)
	}
	err = backoff.Retry(func() error {
		err := inst.tryAcquire(cfg.Replace)
		if err == nil || err == errStillRunning {
			return err
		}
		return backoff.Permanent(err)
	}, retry)
	if err == errStillRunning {
		err = ErrAlreadyRunning
	}
	if err != nil {
		return nil, err
	}
	return inst, nil
}

func (inst *Instance) tryAcquire(replace bool) error {
	signaled, err := inst.signal.TryAcquire()
	if err != nil {
		return err
	}
	outcome, err := inst.mutex.TryLock()
	if err != nil {
		if signaled {
			inst.signal.Release()
		}
		return err
	}
	switch outcome {
	case ipcsync.Recovered:
		// the previous instance died. if it had consumed the signal unit, it is lost with it.
		inst.recovered = true
		return inst.drainSignal()
	case ipcsync.Acquired:
		if signaled {
			return inst.drainSignal()
		}
		if inst.lostSignal {
			// nobody has returned the unit since the previous attempt, so its holder died with it.
			ipcsync.Logger().Warn("instance signal unit was lost, taking over", "name", inst.name)
			return nil
		}
		// another process holds the unit for a moment, while it checks the mutex.
		inst.lostSignal = true
		if err := inst.mutex.Release(); err != nil {
			return err
		}
		return errStillRunning
	}
	inst.lostSignal = false
	// the unit taken from a live instance is a termination request, which is still in flight.
	if signaled || replace {
		if err := inst.signal.Release(); err != nil {
			return err
		}
	}
	if !replace {
		return ErrAlreadyRunning
	}
	if !signaled {
		ipcsync.Logger().Info("another instance is running, requesting termination", "name", inst.name)
	}
	return errStillRunning
}

// drainSignal consumes units left by termination requests, which were sent to the previous instance.
func (inst *Instance) drainSignal() error {
	for {
		ok, err := inst.signal.TryAcquire()
		if err != nil || !ok {
			return err
		}
	}
}

// Recovered returns true, if the previous instance terminated abnormally.
func (inst *Instance) Recovered() bool {
	return inst.recovered
}

// Name returns the name of the instance.
func (inst *Instance) Name() string {
	return inst.name
}

// Wait blocks until another process requests termination.
func (inst *Instance) Wait() error {
	return errors.Wrap(inst.signal.Acquire(), "failed to wait for a termination request")
}

// WaitTimeout is like Wait, but waits for not more, than d.
// It returns true, if termination was requested.
func (inst *Instance) WaitTimeout(d ipcsync.Duration) (bool, error) {
	ok, err := inst.signal.AcquireTimeout(d)
	return ok, errors.Wrap(err, "failed to wait for a termination request")
}

// Close stops being the running instance, so that a new one can start.
func (inst *Instance) Close() error {
	if inst.closed {
		return nil
	}
	inst.closed = true
	// leave exactly one unit for the next instance. The unit is returned before the mutex,
	// so dying in between leaves a recoverable mutex, not a free mutex with an empty signal.
	if err := inst.drainSignal(); err != nil {
		return err
	}
	if err := inst.signal.Release(); err != nil {
		return err
	}
	if err := inst.mutex.Release(); err != nil {
		return err
	}
	ipcsync.LogCloseError(inst.signal.Close(), "instance signal", inst.name)
	return inst.mutex.Close()
}

// RequestTermination asks the running instance with the given name to terminate.
// The request is fulfilled, when the instance calls Wait.
func RequestTermination(name string) error {
	signal, err := sync.NewNamedSemaphore(signalName(name), ipcsync.OpenExisting, 0, 0)
	if err != nil {
		return errors.Wrap(err, "failed to open the instance signal")
	}
	defer signal.Close()
	return signal.Release()
}

// Unlink removes the named objects of an instance.
func Unlink(name string) error {
	if err := sync.UnlinkNamedMutex(lockName(name)); err != nil {
		return err
	}
	return sync.UnlinkNamedSemaphore(signalName(name))
}

func lockName(name string) string {
	return name + ".lock"
}

func signalName(name string) string {
	return name + ".signal"
}
