// Copyright 2016 Aleksandr Demakin. All rights reserved.

package singleton

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FileLock is an exclusive advisory lock on a file.
// The lock is released by the system, when the process dies, so there is nothing to recover.
type FileLock struct {
	file *os.File
}

// LockFile locks the file at path, creating it, if needed.
// It returns ErrAlreadyRunning, if the file is locked by another process.
// The pid of the current process is written into the file.
func LockFile(path string) (*FileLock, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open lock file")
	}
	locked, err := lockFile(file)
	if err != nil || !locked {
		file.Close()
		if err == nil {
			err = ErrAlreadyRunning
		}
		return nil, err
	}
	if err = writePid(file); err != nil {
		unlockFile(file)
		file.Close()
		return nil, err
	}
	return &FileLock{file: file}, nil
}

func writePid(file *os.File) error {
	if err := file.Truncate(0); err != nil {
		return errors.Wrap(err, "failed to truncate lock file")
	}
	if _, err := file.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0); err != nil {
		return errors.Wrap(err, "failed to write lock file")
	}
	return nil
}

// Path returns the path of the lock file.
func (l *FileLock) Path() string {
	return l.file.Name()
}

// Unlock releases the lock. The file is not removed.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}
	err := unlockFile(l.file)
	if closeErr := l.file.Close(); err == nil {
		err = errors.Wrap(closeErr, "failed to close lock file")
	}
	l.file = nil
	return err
}

// LockFileOwner returns the pid written into a lock file by its last holder.
func LockFileOwner(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read lock file")
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	return pid, errors.Wrap(err, "invalid lock file contents")
}
