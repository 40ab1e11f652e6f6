// Copyright 2015 Aleksandr Demakin. All rights reserved.

// Package allocator places plain values into raw memory.
package allocator

import (
	"reflect"
	"unsafe"

	"github.com/pkg/errors"
)

// CheckPlainType checks if values of the type can be placed into memory shared between processes.
// Such a type must be stored continuously in the memory, ie must not contain any references
// like pointers, slices, maps, strings, interfaces, channels or funcs at any depth.
func CheckPlainType(t reflect.Type) error {
	if t == nil {
		return errors.New("nil type")
	}
	return checkType(t)
}

// CheckPlain calls CheckPlainType for T.
func CheckPlain[T any]() error {
	return CheckPlainType(reflect.TypeOf((*T)(nil)).Elem())
}

func checkType(t reflect.Type) error {
	switch kind := t.Kind(); kind {
	case reflect.Array:
		return checkType(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if err := checkType(field.Type); err != nil {
				return errors.Wrapf(err, "field %s", field.Name)
			}
		}
		return nil
	default:
		if kind >= reflect.Bool && kind <= reflect.Complex128 {
			return nil
		}
		return errors.Errorf("unsupported type %q", kind.String())
	}
}

// ByteSliceData returns a pointer to the data of the given byte slice.
func ByteSliceData(slice []byte) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(slice))
}

// ByteSliceFromUnsafePointer returns a slice of bytes with given length and capacity.
// Memory pointed by the unsafe.Pointer is used for the slice.
func ByteSliceFromUnsafePointer(memory unsafe.Pointer, length, capacity int) []byte {
	return unsafe.Slice((*byte)(memory), capacity)[:length]
}

// SliceOf returns a slice of count values of T, which uses the memory of data.
// data must be at least count*sizeof(T) bytes long and properly aligned for T.
func SliceOf[T any](data []byte, count int) ([]T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if count < 0 || (size > 0 && count > len(data)/size) {
		return nil, errors.Errorf("%d bytes cannot hold %d elements of size %d", len(data), count, size)
	}
	if count == 0 {
		return []T{}, nil
	}
	ptr := ByteSliceData(data)
	if uintptr(ptr)%unsafe.Alignof(zero) != 0 {
		return nil, errors.New("memory is not aligned for the element type")
	}
	return unsafe.Slice((*T)(ptr), count), nil
}
