// Copyright 2015 Aleksandr Demakin. All rights reserved.

// Package shm implements named shared memory objects and typed segments on top of them.
// On linux objects are files in a shared memory filesystem (usually /dev/shm).
// On windows objects are named file mappings backed by the paging file.
package shm

import (
	"os"
	"runtime"

	"github.com/nxgtw/go-ipcsync"
	"github.com/nxgtw/go-ipcsync/internal/common"

	"github.com/pkg/errors"
)

// InitFunc initializes the memory of a newly created object.
// It is called once, before any other process can open the object.
type InitFunc func(data []byte) error

// MemoryObject represents an object which can be used to
// map shared memory regions into the process' address space.
type MemoryObject struct {
	*memoryObject
}

// NewMemoryObject creates or opens a shared memory object.
//
//	name - a name of the object. should not contain '/' and exceed 255 symbols.
//	mode - creation mode.
//	perm - object's permission bits.
//	size - object size. A created object is zero-filled. An opened object must have exactly this size,
//	unless size is 0, which accepts any size.
func NewMemoryObject(name string, mode ipcsync.CreationMode, perm os.FileMode, size int64) (*MemoryObject, error) {
	return NewMemoryObjectInit(name, mode, perm, size, nil)
}

// NewMemoryObjectInit is like NewMemoryObject, but calls init for a created object
// before it becomes visible to other processes. If init fails, the object is not created.
func NewMemoryObjectInit(name string, mode ipcsync.CreationMode, perm os.FileMode, size int64, init InitFunc) (*MemoryObject, error) {
	if err := common.CheckName(name); err != nil {
		return nil, err
	}
	if !mode.Valid() {
		return nil, errors.Errorf("invalid creation mode %d", int(mode))
	}
	if size < 0 || (size == 0 && mode != ipcsync.OpenExisting) {
		return nil, errors.Errorf("invalid object size %d", size)
	}
	impl, err := newMemoryObject(name, mode, common.PermOrDefault(perm), size, init)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to obtain shared memory object %q", name)
	}
	runtime.SetFinalizer(impl, func(obj *memoryObject) {
		ipcsync.LogCloseError(obj.Close(), "shared memory object", name)
	})
	return &MemoryObject{impl}, nil
}

// Created returns true, if the object was created by this handle.
func (obj *MemoryObject) Created() bool {
	return obj.created
}

// Close closes the handle. The object itself remains in the namespace.
func (obj *MemoryObject) Close() error {
	runtime.SetFinalizer(obj.memoryObject, nil)
	return obj.memoryObject.Close()
}

// Unlink removes the object from the namespace. The handle remains valid.
func (obj *MemoryObject) Unlink() error {
	return UnlinkMemoryObject(obj.Name())
}

// UnlinkMemoryObject removes a shared memory object by name.
// Regions mapped by processes remain valid until unmapped.
// Removing a missing object is not an error.
func UnlinkMemoryObject(name string) error {
	if err := common.CheckName(name); err != nil {
		return err
	}
	return unlinkMemoryObject(name)
}
