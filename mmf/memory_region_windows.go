// Copyright 2015 Aleksandr Demakin. All rights reserved.

package mmf

import (
	"os"
	"unsafe"

	"github.com/nxgtw/go-ipcsync"
	"github.com/nxgtw/go-ipcsync/internal/allocator"
	"github.com/nxgtw/go-ipcsync/internal/sys/windows"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

func init() {
	g, p := sys.GetAllocGranularity(), os.Getpagesize()
	if g >= p {
		mmapOffsetMultiple = int64(g)
	} else {
		mmapOffsetMultiple = int64(p)
	}
}

type memoryRegion struct {
	data       []byte
	size       int
	pageOffset int64
}

// newMemoryRegion maps a view of a file mapping object.
// obj.Fd() must return a handle of a file mapping, as shm.MemoryObject does on windows.
func newMemoryRegion(obj Mappable, mode int, offset int64, size int) (*memoryRegion, error) {
	flags, err := memFlagsFromMode(mode)
	if err != nil {
		return nil, err
	}
	pageOffset := calcMmapOffsetFixup(offset)
	offset -= pageOffset
	lowOffset := uint32(offset & 0xFFFFFFFF)
	highOffset := uint32(offset >> 32)
	addr, err := windows.MapViewOfFile(windows.Handle(obj.Fd()), flags, highOffset, lowOffset, uintptr(int64(size)+pageOffset))
	if err != nil {
		return nil, ipcsync.WrapError(err, "map "+obj.Name(), "MapViewOfFile")
	}
	totalSize := size + int(pageOffset)
	return &memoryRegion{
		data:       allocator.ByteSliceFromUnsafePointer(unsafe.Pointer(addr), totalSize, totalSize),
		size:       size,
		pageOffset: pageOffset,
	}, nil
}

func (region *memoryRegion) unmap() error {
	err := windows.UnmapViewOfFile(uintptr(allocator.ByteSliceData(region.data)))
	region.data = nil
	region.pageOffset = 0
	region.size = 0
	return ipcsync.WrapError(err, "unmap", "UnmapViewOfFile")
}

func (region *memoryRegion) Data() []byte {
	if region.data == nil {
		return nil
	}
	return region.data[region.pageOffset:]
}

func (region *memoryRegion) Size() int {
	return region.size
}

func (region *memoryRegion) Flush(async bool) error {
	err := windows.FlushViewOfFile(uintptr(allocator.ByteSliceData(region.data)), uintptr(len(region.data)))
	return ipcsync.WrapError(err, "flush", "FlushViewOfFile")
}

func memFlagsFromMode(mode int) (flags uint32, err error) {
	switch mode {
	case MemReadOnly:
		flags = windows.FILE_MAP_READ
	case MemReadWrite:
		flags = windows.FILE_MAP_WRITE
	default:
		err = errors.Errorf("invalid mem region flags %d", mode)
	}
	return
}
