// Copyright 2016 Aleksandr Demakin. All rights reserved.

package ipcsync

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
)

// ErrUnsupported is returned by every named constructor on platforms
// without a native substrate.
var ErrUnsupported = errors.New("ipcsync: platform is not supported")

// Error is a platform error code annotated with the operation, which failed,
// and the native call, which reported it. Its text is decoded by the platform
// (strerror on unix, FormatMessage on windows).
type Error struct {
	Code syscall.Errno
	Op   string
	Call string
}

// NewError returns a new error for the given code.
func NewError(code syscall.Errno, op, call string) *Error {
	return &Error{Code: code, Op: op, Call: call}
}

func (e *Error) Error() string {
	prefix := e.Op
	if len(e.Call) > 0 {
		prefix += " @ " + e.Call
	}
	return prefix + ": " + e.Code.Error()
}

// Unwrap returns the platform code, so errors.Is(err, os.ErrExist) and similar checks work.
func (e *Error) Unwrap() error {
	return e.Code
}

// WrapError turns err into an *Error, if it carries a platform code.
// Other errors are annotated with the operation and returned as is.
func WrapError(err error, op, call string) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*Error); ok {
		return err
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return NewError(errno, op, call)
	}
	return errors.Wrapf(err, "%s @ %s", op, call)
}

// IsExist returns true, if the error means a named resource already exists.
func IsExist(err error) bool {
	return errors.Is(err, os.ErrExist)
}

// IsNotExist returns true, if the error means a named resource does not exist.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

// HasCode returns true, if err carries the given platform code.
func HasCode(err error, code syscall.Errno) bool {
	var errno syscall.Errno
	return errors.As(err, &errno) && errno == code
}
