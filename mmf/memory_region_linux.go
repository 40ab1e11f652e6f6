// Copyright 2015 Aleksandr Demakin. All rights reserved.

package mmf

import (
	"os"

	"github.com/nxgtw/go-ipcsync"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func init() {
	mmapOffsetMultiple = int64(os.Getpagesize())
}

type memoryRegion struct {
	data       []byte
	size       int
	pageOffset int64
}

func newMemoryRegion(obj Mappable, mode int, offset int64, size int) (*memoryRegion, error) {
	prot, flags, err := memProtAndFlagsFromMode(mode)
	if err != nil {
		return nil, errors.Wrap(err, "memory region flags check failed")
	}
	calculatedSize, err := fileSizeFromFd(obj)
	if err != nil {
		return nil, errors.Wrap(err, "file size check failed")
	}
	// we need this check on unix, because you can actually mmap more bytes,
	// then the size of the object, which can cause SIGBUS on access.
	if calculatedSize > 0 && int64(size)+offset > calculatedSize {
		return nil, ipcsync.NewError(unix.EINVAL, "map "+obj.Name(), "mmap")
	}
	pageOffset := calcMmapOffsetFixup(offset)
	var data []byte
	if data, err = unix.Mmap(int(obj.Fd()), offset-pageOffset, size+int(pageOffset), prot, flags); err != nil {
		return nil, ipcsync.WrapError(err, "map "+obj.Name(), "mmap")
	}
	return &memoryRegion{data: data, size: size, pageOffset: pageOffset}, nil
}

func (region *memoryRegion) unmap() error {
	err := unix.Munmap(region.data)
	region.data = nil
	region.pageOffset = 0
	region.size = 0
	return ipcsync.WrapError(err, "unmap", "munmap")
}

func (region *memoryRegion) Data() []byte {
	if region.data == nil {
		return nil
	}
	return region.data[region.pageOffset:]
}

func (region *memoryRegion) Flush(async bool) error {
	flag := unix.MS_SYNC
	if async {
		flag = unix.MS_ASYNC
	}
	return ipcsync.WrapError(unix.Msync(region.data, flag), "flush", "msync")
}

func (region *memoryRegion) Size() int {
	return region.size
}

func memProtAndFlagsFromMode(mode int) (prot, flags int, err error) {
	switch mode {
	case MemReadOnly:
		prot = unix.PROT_READ
		flags = unix.MAP_SHARED
	case MemReadWrite:
		prot = unix.PROT_READ | unix.PROT_WRITE
		flags = unix.MAP_SHARED
	default:
		err = errors.Errorf("invalid memory region flags %d", mode)
	}
	return
}
