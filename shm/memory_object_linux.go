// Copyright 2015 Aleksandr Demakin. All rights reserved.

package shm

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"syscall"

	"github.com/nxgtw/go-ipcsync"
	"github.com/nxgtw/go-ipcsync/internal/common"
	"github.com/nxgtw/go-ipcsync/mmf"

	"github.com/pkg/errors"
)

type memoryObject struct {
	file    *os.File
	name    string
	created bool
}

func newMemoryObject(name string, mode ipcsync.CreationMode, perm os.FileMode, size int64, init InitFunc) (*memoryObject, error) {
	path, err := shmName(name)
	if err != nil {
		return nil, err
	}
	var file *os.File
	creator := func(create bool) error {
		var err error
		if create {
			file, err = createPublished(path, perm, size, init)
		} else {
			file, err = openExisting(path, size)
		}
		return err
	}
	created, err := common.OpenOrCreate(creator, mode)
	if err != nil {
		return nil, err
	}
	return &memoryObject{file: file, name: name, created: created}, nil
}

// createPublished builds the object under a private name and publishes it with link(2).
// link fails with EEXIST, if the name is taken, so no process can observe
// a partially initialized object, and a collision leaves the existing one intact.
func createPublished(path string, perm os.FileMode, size int64, init InitFunc) (*os.File, error) {
	if err := checkFreeSpace(filepath.Dir(path), size); err != nil {
		return nil, err
	}
	tmpPath := fmt.Sprintf("%s.tmp.%d.%x", path, os.Getpid(), rand.Uint64())
	file, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return nil, ipcsync.WrapError(err, "create "+path, "open")
	}
	defer func() {
		ipcsync.LogCloseError(os.Remove(tmpPath), "temporary shared memory object", tmpPath)
	}()
	if err = publish(file, tmpPath, path, size, init); err != nil {
		ipcsync.LogCloseError(file.Close(), "temporary shared memory object", tmpPath)
		return nil, err
	}
	return file, nil
}

func publish(file *os.File, tmpPath, path string, size int64, init InitFunc) error {
	if err := file.Truncate(size); err != nil {
		return ipcsync.WrapError(err, "create "+path, "ftruncate")
	}
	if init != nil {
		if err := initObject(file, int(size), init); err != nil {
			return err
		}
	}
	return ipcsync.WrapError(os.Link(tmpPath, path), "create "+path, "link")
}

func initObject(obj mmf.Mappable, size int, init InitFunc) error {
	region, err := mmf.NewMemoryRegion(obj, mmf.MemReadWrite, 0, size)
	if err != nil {
		return errors.Wrap(err, "failed to map new object")
	}
	initErr := init(region.Data())
	if err = region.Close(); initErr == nil {
		initErr = err
	}
	return errors.Wrap(initErr, "failed to initialize new object")
}

func openExisting(path string, size int64) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, ipcsync.WrapError(err, "open "+path, "open")
	}
	if size > 0 {
		fi, err := file.Stat()
		if err != nil {
			file.Close()
			return nil, ipcsync.WrapError(err, "open "+path, "fstat")
		}
		if fi.Size() != size {
			file.Close()
			return nil, errors.Wrapf(ipcsync.NewError(syscall.EINVAL, "open "+path, "fstat"),
				"existing object has size %d, expected %d", fi.Size(), size)
		}
	}
	return file, nil
}

func (obj *memoryObject) Name() string {
	return obj.name
}

func (obj *memoryObject) Close() error {
	return ipcsync.WrapError(obj.file.Close(), "close "+obj.name, "close")
}

func (obj *memoryObject) Size() int64 {
	fileInfo, err := obj.file.Stat()
	if err != nil {
		return 0
	}
	return fileInfo.Size()
}

func (obj *memoryObject) Fd() uintptr {
	return obj.file.Fd()
}

// Stat lets mmf check the mapping size against the object size.
func (obj *memoryObject) Stat() (os.FileInfo, error) {
	return obj.file.Stat()
}

func unlinkMemoryObject(name string) error {
	path, err := shmName(name)
	if err != nil {
		return err
	}
	if err = os.Remove(path); err != nil && !os.IsNotExist(err) {
		return ipcsync.WrapError(err, "unlink "+name, "unlink")
	}
	return nil
}
