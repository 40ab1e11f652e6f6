// Copyright 2016 Aleksandr Demakin. All rights reserved.

package common

import (
	"os"
	"syscall"
	"testing"

	"github.com/nxgtw/go-ipcsync"

	"github.com/stretchr/testify/assert"
)

func TestOpenOrCreate(t *testing.T) {
	a := assert.New(t)
	var calls []bool
	exists := true
	creator := func(create bool) error {
		calls = append(calls, create)
		if create && exists {
			return os.ErrExist
		}
		if !create && !exists {
			return os.ErrNotExist
		}
		return nil
	}
	created, err := OpenOrCreate(creator, ipcsync.OpenOrCreate)
	a.NoError(err)
	a.False(created)
	a.Equal([]bool{false}, calls)

	calls, exists = nil, false
	created, err = OpenOrCreate(creator, ipcsync.OpenOrCreate)
	a.NoError(err)
	a.True(created)
	a.Equal([]bool{false, true}, calls)

	calls = nil
	_, err = OpenOrCreate(creator, ipcsync.OpenExisting)
	a.True(ipcsync.IsNotExist(err))
	a.Equal([]bool{false}, calls)

	calls, exists = nil, true
	_, err = OpenOrCreate(creator, ipcsync.CreateExclusive)
	a.True(ipcsync.IsExist(err))
	a.Equal([]bool{true}, calls)

	_, err = OpenOrCreate(creator, ipcsync.CreationMode(100))
	a.Error(err)
}

func TestOpenOrCreateRace(t *testing.T) {
	a := assert.New(t)
	// the object is removed between the attempts every time.
	calls := 0
	creator := func(create bool) error {
		calls++
		if create {
			return os.ErrExist
		}
		return os.ErrNotExist
	}
	_, err := OpenOrCreate(creator, ipcsync.OpenOrCreate)
	a.Error(err)
	a.Equal(2*openOrCreateAttempts, calls)
}

func TestCheckName(t *testing.T) {
	a := assert.New(t)
	a.True(ipcsync.HasCode(CheckName(""), syscall.EINVAL))
	a.NoError(CheckName("name"))
	a.Equal(os.FileMode(0666), PermOrDefault(0))
	a.Equal(os.FileMode(0600), PermOrDefault(0600))
	a.Equal(os.FileMode(0644), PermOrDefault(os.ModeDir|0644))
}
