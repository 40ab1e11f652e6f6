// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shm

import (
	"os"
	"unsafe"

	"github.com/nxgtw/go-ipcsync"
	"github.com/nxgtw/go-ipcsync/internal/common"
	"github.com/nxgtw/go-ipcsync/internal/sys/windows"
	"github.com/nxgtw/go-ipcsync/mmf"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// memoryObject is a named file mapping backed by the paging file.
// It is destroyed by the system, when its last handle is closed.
type memoryObject struct {
	handle  windows.Handle
	name    string
	size    int64
	created bool
}

func newMemoryObject(name string, mode ipcsync.CreationMode, perm os.FileMode, size int64, init InitFunc) (*memoryObject, error) {
	// creation and initialization are serialized with opening by a named mutex,
	// so an opener never sees an object before init has finished.
	guard, err := lockInitGuard(name)
	if err != nil {
		return nil, err
	}
	defer unlockInitGuard(guard, name)

	maxSizeHigh := uint32(size >> 32)
	maxSizeLow := uint32(size & 0xFFFFFFFF)
	var handle windows.Handle
	creator := func(create bool) error {
		var err error
		if create {
			handle, err = sys.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE, maxSizeHigh, maxSizeLow, name)
			if ipcsync.IsExist(err) {
				windows.CloseHandle(handle)
			}
		} else {
			handle, err = sys.OpenFileMapping(windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, name)
		}
		return ipcsync.WrapError(err, "obtain "+name, "file mapping")
	}
	created, err := common.OpenOrCreate(creator, mode)
	if err != nil {
		return nil, err
	}
	obj := &memoryObject{handle: handle, name: name, size: size, created: created}
	if created && init != nil {
		err = initObject(obj, int(size), init)
	} else if !created {
		obj.size, err = mappingSize(handle)
		if err == nil && size > 0 && !sizeMatches(obj.size, size) {
			err = errors.Wrapf(ipcsync.NewError(windows.ERROR_INVALID_PARAMETER, "open "+name, "VirtualQuery"),
				"existing object has size %d, expected %d", obj.size, size)
		}
		if err == nil && size > 0 {
			obj.size = size
		}
	}
	if err != nil {
		windows.CloseHandle(handle)
		return nil, err
	}
	return obj, nil
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

// mappingSize returns the size of the mapping rounded up to the page size.
func mappingSize(handle windows.Handle) (int64, error) {
	addr, err := windows.MapViewOfFile(handle, windows.FILE_MAP_READ, 0, 0, 0)
	if err != nil {
		return 0, ipcsync.WrapError(err, "query mapping size", "MapViewOfFile")
	}
	defer windows.UnmapViewOfFile(addr)
	var info windows.MemoryBasicInformation
	if err = windows.VirtualQuery(addr, &info, unsafe.Sizeof(info)); err != nil {
		return 0, ipcsync.WrapError(err, "query mapping size", "VirtualQuery")
	}
	return int64(info.RegionSize), nil
}

func sizeMatches(actual, expected int64) bool {
	page := int64(os.Getpagesize())
	return actual == (expected+page-1)/page*page
}

func lockInitGuard(name string) (windows.Handle, error) {
	namep, err := windows.UTF16PtrFromString("ipcsync.init." + name)
	if err != nil {
		return 0, err
	}
	guard, err := windows.CreateMutex(nil, false, namep)
	if err != nil && err != windows.ERROR_ALREADY_EXISTS {
		return 0, ipcsync.WrapError(err, "lock init guard "+name, "CreateMutex")
	}
	ev, err := windows.WaitForSingleObject(guard, windows.INFINITE)
	if ev != windows.WAIT_OBJECT_0 && ev != windows.WAIT_ABANDONED {
		windows.CloseHandle(guard)
		if err == nil {
			err = errors.Errorf("invalid wait state %d", ev)
		}
		return 0, ipcsync.WrapError(err, "lock init guard "+name, "WaitForSingleObject")
	}
	return guard, nil
}

func unlockInitGuard(guard windows.Handle, name string) {
	ipcsync.LogCloseError(windows.ReleaseMutex(guard), "init guard", name)
	ipcsync.LogCloseError(windows.CloseHandle(guard), "init guard", name)
}

func (obj *memoryObject) Name() string {
	return obj.name
}

// Fd returns the file mapping handle.
func (obj *memoryObject) Fd() uintptr {
	return uintptr(obj.handle)
}

func (obj *memoryObject) Size() int64 {
	return obj.size
}

func (obj *memoryObject) Close() error {
	return ipcsync.WrapError(windows.CloseHandle(obj.handle), "close "+obj.name, "CloseHandle")
}

// unlinkMemoryObject is a no-op on windows, as the object is destroyed,
// when its last handle is closed.
func unlinkMemoryObject(name string) error {
	return nil
}
