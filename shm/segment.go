// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shm

import (
	"os"
	"unsafe"

	"github.com/nxgtw/go-ipcsync"
	"github.com/nxgtw/go-ipcsync/internal/allocator"
	"github.com/nxgtw/go-ipcsync/mmf"

	"github.com/pkg/errors"
)

// Segment is a named shared memory region holding a fixed number of values of type T.
// T must be a plain type without any references, as its values are shared
// between address spaces. The segment does no locking, callers coordinate access
// with a mutex or a semaphore.
//
// Warning. The mapping has a finalizer set, so it is unmapped during the gc,
// once the segment is unreachable. The slice returned by Elements does not keep
// the segment alive: keep the *Segment reachable while its elements are used.
type Segment[T any] struct {
	name    string
	count   int
	created bool
	region  *mmf.MemoryRegion
	elems   []T
}

// OpenSegment creates or opens a segment of count elements.
// A created segment is zero-filled. Opening an existing segment of a different size fails.
func OpenSegment[T any](name string, count int, mode ipcsync.CreationMode, perm os.FileMode) (*Segment[T], error) {
	return OpenSegmentInit[T](name, count, mode, perm, nil)
}

// OpenSegmentInit is like OpenSegment, but calls init for a created segment
// before any other process can open it.
func OpenSegmentInit[T any](name string, count int, mode ipcsync.CreationMode, perm os.FileMode, init func(elems []T)) (*Segment[T], error) {
	if err := allocator.CheckPlain[T](); err != nil {
		return nil, errors.Wrap(err, "invalid segment element type")
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if count <= 0 || elemSize == 0 || count > maxSegmentBytes/elemSize {
		return nil, errors.Errorf("invalid segment length %d for element size %d", count, elemSize)
	}
	size := count * elemSize
	var initFunc InitFunc
	if init != nil {
		initFunc = func(data []byte) error {
			elems, err := allocator.SliceOf[T](data, count)
			if err != nil {
				return err
			}
			init(elems)
			return nil
		}
	}
	obj, err := NewMemoryObjectInit(name, mode, perm, int64(size), initFunc)
	if err != nil {
		return nil, err
	}
	// the mapping keeps the object alive, the handle is not needed after mmap.
	defer func() {
		ipcsync.LogCloseError(obj.Close(), "shared memory object", name)
	}()
	region, err := mmf.NewMemoryRegion(obj, mmf.MemReadWrite, 0, size)
	if err != nil {
		if obj.Created() {
			ipcsync.LogCloseError(obj.Unlink(), "shared memory object", name)
		}
		return nil, errors.Wrap(err, "failed to map segment")
	}
	elems, err := allocator.SliceOf[T](region.Data(), count)
	if err != nil {
		ipcsync.LogCloseError(region.Close(), "memory region", name)
		return nil, err
	}
	return &Segment[T]{
		name:    name,
		count:   count,
		created: obj.Created(),
		region:  region,
		elems:   elems,
	}, nil
}

// Elements returns the shared values. The slice is valid until Unmap is called.
func (s *Segment[T]) Elements() []T {
	return s.elems
}

// Bytes returns the raw memory of the segment. The slice is valid until Unmap is called.
func (s *Segment[T]) Bytes() []byte {
	return s.region.Data()
}

// Len returns the number of elements.
func (s *Segment[T]) Len() int {
	return s.count
}

// Name returns the name of the segment.
func (s *Segment[T]) Name() string {
	return s.name
}

// Created returns true, if this call to OpenSegment created the segment.
func (s *Segment[T]) Created() bool {
	return s.created
}

// Flush syncs the memory with its backing store.
func (s *Segment[T]) Flush() error {
	return s.region.Flush(false)
}

// Unmap removes the segment from the address space of the process.
// The segment and its contents stay in the namespace.
// Unmapping an unmapped segment is a no-op.
func (s *Segment[T]) Unmap() error {
	s.elems = nil
	return s.region.Close()
}

// Close is the same as Unmap.
func (s *Segment[T]) Close() error {
	return s.Unmap()
}

// Unlink removes the segment from the namespace. Regions, which are still mapped, stay valid.
// On windows the segment is destroyed, when the last process unmaps it, and Unlink is a no-op.
func (s *Segment[T]) Unlink() error {
	return UnlinkSegment(s.name)
}

// UnlinkSegment removes a segment by name.
func UnlinkSegment(name string) error {
	return UnlinkMemoryObject(name)
}
