// Copyright 2015 Aleksandr Demakin. All rights reserved.

//go:build !linux && !windows

package mmf

import "github.com/nxgtw/go-ipcsync"

func init() {
	mmapOffsetMultiple = 1
}

type memoryRegion struct {
	data []byte
	size int
}

func newMemoryRegion(obj Mappable, mode int, offset int64, size int) (*memoryRegion, error) {
	return nil, ipcsync.ErrUnsupported
}

func (region *memoryRegion) unmap() error {
	region.data = nil
	return nil
}

func (region *memoryRegion) Data() []byte {
	return region.data
}

func (region *memoryRegion) Size() int {
	return region.size
}

func (region *memoryRegion) Flush(async bool) error {
	return ipcsync.ErrUnsupported
}
