// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build !linux && !windows

package shm

import (
	"os"

	"github.com/nxgtw/go-ipcsync"
)

type memoryObject struct {
	name    string
	created bool
}

func newMemoryObject(name string, mode ipcsync.CreationMode, perm os.FileMode, size int64, init InitFunc) (*memoryObject, error) {
	return nil, ipcsync.ErrUnsupported
}

func (obj *memoryObject) Name() string { return obj.name }

func (obj *memoryObject) Fd() uintptr { return ^uintptr(0) }

func (obj *memoryObject) Size() int64 { return 0 }

func (obj *memoryObject) Close() error { return nil }

func unlinkMemoryObject(name string) error {
	return ipcsync.ErrUnsupported
}
