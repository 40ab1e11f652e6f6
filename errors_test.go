// Copyright 2016 Aleksandr Demakin. All rights reserved.

package ipcsync

import (
	"os"
	"syscall"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorText(t *testing.T) {
	a := assert.New(t)
	err := NewError(syscall.EEXIST, "create mutex", "link")
	a.Equal("create mutex @ link: "+syscall.EEXIST.Error(), err.Error())
	err = NewError(syscall.EPERM, "release", "")
	a.Equal("release: "+syscall.EPERM.Error(), err.Error())
}

func TestErrorClassification(t *testing.T) {
	a := assert.New(t)
	err := errors.Wrap(NewError(syscall.EEXIST, "create", "open"), "failed to open segment")
	a.True(IsExist(err))
	a.False(IsNotExist(err))
	a.True(HasCode(err, syscall.EEXIST))
	var cond *Error
	a.True(errors.As(err, &cond))
	a.Equal("create", cond.Op)

	err = WrapError(&os.PathError{Op: "open", Path: "/dev/shm/x", Err: syscall.ENOENT}, "open mutex", "open")
	a.True(IsNotExist(err))
	a.IsType((*Error)(nil), err)

	plain := errors.New("plain")
	wrapped := WrapError(plain, "op", "call")
	a.Equal(plain, errors.Cause(wrapped))
	a.Nil(WrapError(nil, "op", "call"))

	cond = NewError(syscall.EINVAL, "a", "b")
	a.Equal(error(cond), WrapError(cond, "c", "d"))
}

func TestLockOutcome(t *testing.T) {
	a := assert.New(t)
	a.Equal("Recovered", Recovered.String())
	a.Equal("LockOutcome(9)", LockOutcome(9).String())
	a.True(Acquired.Held())
	a.True(Recovered.Held())
	a.False(AlreadyHeld.Held())
	a.False(TimedOut.Held())
}

func TestCreationMode(t *testing.T) {
	a := assert.New(t)
	a.True(OpenExisting.Valid())
	a.False(CreationMode(5).Valid())
	a.Equal("create-exclusive", CreateExclusive.String())
}
