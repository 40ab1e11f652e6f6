// Copyright 2015 Aleksandr Demakin. All rights reserved.

package allocator

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestCheckPlainType(t *testing.T) {
	type validStruct struct {
		a, b int
		u    uintptr
		s    struct {
			arr [3]int
		}
	}
	type invalidStruct1 struct {
		a, b *int
	}
	type invalidStruct2 struct {
		a, b []int
	}
	type invalidStruct3 struct {
		s string
	}
	type invalidStruct4 struct {
		inner struct {
			p unsafe.Pointer
		}
	}
	a := assert.New(t)
	a.NoError(CheckPlain[int]())
	a.NoError(CheckPlain[complex128]())
	a.NoError(CheckPlain[[3]int]())
	a.NoError(CheckPlain[validStruct]())
	a.NoError(CheckPlain[struct{}]())

	a.Error(CheckPlain[invalidStruct1]())
	a.Error(CheckPlain[invalidStruct2]())
	a.Error(CheckPlain[invalidStruct3]())
	a.Error(CheckPlain[invalidStruct4]())
	a.Error(CheckPlain[[3]string]())
	a.Error(CheckPlain[map[int]int]())
	a.Error(CheckPlain[[]int]())
	a.Error(CheckPlainType(nil))
	a.Error(CheckPlainType(reflect.TypeOf(func() {})))
}

func TestSliceOf(t *testing.T) {
	type pair struct {
		a uint32
		b uint32
	}
	a := assert.New(t)
	data := make([]uint64, 4)
	bytes := unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), 32)
	pairs, err := SliceOf[pair](bytes, 4)
	if !a.NoError(err) {
		return
	}
	a.Len(pairs, 4)
	pairs[1].a = 7
	pairs[1].b = 9
	a.Equal(uint64(7)|uint64(9)<<32, data[1])
	_, err = SliceOf[pair](bytes, 5)
	a.Error(err)
	empty, err := SliceOf[pair](nil, 0)
	a.NoError(err)
	a.Len(empty, 0)
	_, err = SliceOf[uint32](bytes[1:], 2)
	a.Error(err)
}

func TestByteSliceConversions(t *testing.T) {
	a := assert.New(t)
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	ptr := ByteSliceData(data)
	same := ByteSliceFromUnsafePointer(ptr, 4, 8)
	a.Equal([]byte{1, 2, 3, 4}, same)
	a.Equal(8, cap(same))
	same[:8][4] = 0
	a.Equal([]byte{1, 2, 3, 4, 0, 6, 7, 8}, data)
}
