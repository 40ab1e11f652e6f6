// Copyright 2015 Aleksandr Demakin. All rights reserved.

// Package mmf maps objects into the address space of the process.
package mmf

import (
	"os"
	"runtime"

	"github.com/nxgtw/go-ipcsync"
	"github.com/nxgtw/go-ipcsync/metrics"

	"github.com/pkg/errors"
)

// Mapping modes.
const (
	// MemReadOnly maps the object for reading.
	MemReadOnly = iota
	// MemReadWrite maps the object for reading and writing. Changes are visible to other processes.
	MemReadWrite
)

var (
	mmapOffsetMultiple int64
)

// Mappable is a named object, which can return a handle,
// that can be used as a file descriptor for mmap, or as a file mapping handle on windows.
type Mappable interface {
	Fd() uintptr
	Name() string
}

// MemoryRegion is a mmapped area of a memory object.
// Warning. The internal object has a finalizer set,
// so the region will be unmapped during the gc.
// Keep the region alive while its data is used.
type MemoryRegion struct {
	*memoryRegion
}

// NewMemoryRegion maps a region of the object.
//
//	object - an object to mmap.
//	mode - MemReadOnly or MemReadWrite.
//	offset - offset in bytes from the beginning of the object.
//	size - mapping size, must be positive.
func NewMemoryRegion(object Mappable, mode int, offset int64, size int) (*MemoryRegion, error) {
	if size <= 0 {
		return nil, errors.Errorf("invalid mapping size %d", size)
	}
	if offset < 0 {
		return nil, errors.Errorf("invalid mapping offset %d", offset)
	}
	impl, err := newMemoryRegion(object, mode, offset, size)
	if err != nil {
		return nil, err
	}
	metrics.MappedBytes.Add(float64(size))
	runtime.SetFinalizer(impl, func(region *memoryRegion) {
		ipcsync.LogCloseError(region.release(), "memory region", object.Name())
	})
	return &MemoryRegion{impl}, nil
}

// Close unmaps the region so that it cannot be longer used.
// Closing an unmapped region is a no-op.
func (region *MemoryRegion) Close() error {
	runtime.SetFinalizer(region.memoryRegion, nil)
	return region.memoryRegion.release()
}

// Data returns region's mapped data.
func (region *MemoryRegion) Data() []byte {
	return region.memoryRegion.Data()
}

// Flush syncs mapped content with the object.
func (region *MemoryRegion) Flush(async bool) error {
	if region.data == nil {
		return errors.New("region is not mapped")
	}
	return region.memoryRegion.Flush(async)
}

// Size returns mapping size.
func (region *MemoryRegion) Size() int {
	return region.memoryRegion.Size()
}

// release unmaps the region once and updates the mapped bytes gauge.
func (region *memoryRegion) release() error {
	if region.data == nil {
		return nil
	}
	size := region.size
	err := region.unmap()
	metrics.MappedBytes.Sub(float64(size))
	return err
}

// calcMmapOffsetFixup returns a value X,
// so that offset - X is a valid mmap offset
// typically the value of the fixup is a memory page size,
// however, on windows it must be a multiple of the
// memory allocation granularity value as well.
func calcMmapOffsetFixup(offset int64) int64 {
	return (offset - (offset/mmapOffsetMultiple)*mmapOffsetMultiple)
}

// fileInfoGetter is used to obtain file's size
type fileInfoGetter interface {
	Stat() (os.FileInfo, error)
}

func fileSizeFromFd(f Mappable) (int64, error) {
	if ig, ok := f.(fileInfoGetter); ok {
		fi, err := ig.Stat()
		if err != nil {
			return 0, err
		}
		return fi.Size(), nil
	}
	return 0, nil
}
