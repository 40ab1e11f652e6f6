// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package sys wraps the kernel32 calls, which golang.org/x/sys/windows
// lacks or implements without ERROR_ALREADY_EXISTS reporting.
package sys

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	// SemaphoreModifyState is SEMAPHORE_MODIFY_STATE access right.
	SemaphoreModifyState = 0x0002
	// MutexModifyState is MUTEX_MODIFY_STATE access right.
	MutexModifyState = 0x0001
)

// systemInfo is used for GetSystemInfo WinApi call
// see https://msdn.microsoft.com/en-us/library/windows/desktop/ms724958(v=vs.85).aspx
type systemInfo struct {
	// This is the first member of the union
	OemID uint32
	// These are the second member of the union
	//      ProcessorArchitecture uint16;
	//      Reserved uint16;
	PageSize                  uint32
	MinimumApplicationAddress uintptr
	MaximumApplicationAddress uintptr
	ActiveProcessorMask       *uint32
	NumberOfProcessors        uint32
	ProcessorType             uint32
	AllocationGranularity     uint32
	ProcessorLevel            uint16
	ProcessorRevision         uint16
}

var (
	modkernel32           = windows.NewLazySystemDLL("kernel32.dll")
	procGetSystemInfo     = modkernel32.NewProc("GetSystemInfo")
	procOpenFileMapping   = modkernel32.NewProc("OpenFileMappingW")
	procCreateFileMapping = modkernel32.NewProc("CreateFileMappingW")
	procCreateSemaphore   = modkernel32.NewProc("CreateSemaphoreW")
	procOpenSemaphore     = modkernel32.NewProc("OpenSemaphoreW")
	procReleaseSemaphore  = modkernel32.NewProc("ReleaseSemaphore")
)

// GetAllocGranularity returns system allocation granularity.
func GetAllocGranularity() int {
	var si systemInfo
	// this cannot fail
	procGetSystemInfo.Call(uintptr(unsafe.Pointer(&si)))
	return int(si.AllocationGranularity)
}

// OpenFileMapping is a wraper for windows syscall.
func OpenFileMapping(access uint32, inheritHandle uint32, name string) (windows.Handle, error) {
	namep, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	r1, _, err := procOpenFileMapping.Call(uintptr(access), uintptr(inheritHandle), uintptr(unsafe.Pointer(namep)))
	if r1 == 0 {
		return 0, &os.PathError{Path: name, Op: "OpenFileMapping", Err: err}
	}
	return windows.Handle(r1), nil
}

// CreateFileMapping is a wraper for windows syscall.
// We cannot use a call from golang.org/x/sys/windows, because it returns nil error, if the syscall returned a valid handle.
// However, CreateFileMapping may return a valid handle along with ERROR_ALREADY_EXISTS, and in this case
// we cannot find out, if the file existed before.
// If the object existed, both the handle and an error are returned, and the caller must close the handle.
func CreateFileMapping(fhandle windows.Handle, sa *windows.SecurityAttributes, prot uint32, maxSizeHigh uint32, maxSizeLow uint32, name string) (handle windows.Handle, err error) {
	var namep *uint16
	if len(name) > 0 {
		namep, err = windows.UTF16PtrFromString(name)
		if err != nil {
			return 0, err
		}
	}
	r1, _, err := procCreateFileMapping.Call(uintptr(fhandle), uintptr(unsafe.Pointer(sa)), uintptr(prot), uintptr(maxSizeHigh), uintptr(maxSizeLow), uintptr(unsafe.Pointer(namep)))
	if r1 == 0 {
		return 0, &os.PathError{Path: name, Op: "CreateFileMapping", Err: err}
	}
	if err == windows.ERROR_ALREADY_EXISTS {
		return windows.Handle(r1), &os.PathError{Path: name, Op: "CreateFileMapping", Err: err}
	}
	return windows.Handle(r1), nil
}

// CreateSemaphore is a wraper for windows syscall.
// If the object existed, both the handle and an error are returned, and the caller must close the handle.
func CreateSemaphore(name string, initial, maximum int, attrs *windows.SecurityAttributes) (windows.Handle, error) {
	namep, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	h, _, err := procCreateSemaphore.Call(
		uintptr(unsafe.Pointer(attrs)),
		uintptr(initial),
		uintptr(maximum),
		uintptr(unsafe.Pointer(namep)))
	if h == 0 {
		return 0, &os.PathError{Op: "CreateSemaphore", Path: name, Err: err}
	}
	if err == windows.ERROR_ALREADY_EXISTS {
		return windows.Handle(h), &os.PathError{Op: "CreateSemaphore", Path: name, Err: err}
	}
	return windows.Handle(h), nil
}

// OpenSemaphore is a wraper for windows syscall.
func OpenSemaphore(name string, desiredAccess uint32, inheritHandle uint32) (windows.Handle, error) {
	namep, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	h, _, err := procOpenSemaphore.Call(uintptr(desiredAccess), uintptr(inheritHandle), uintptr(unsafe.Pointer(namep)))
	if h == 0 {
		return 0, &os.PathError{Op: "OpenSemaphore", Path: name, Err: err}
	}
	return windows.Handle(h), nil
}

// ReleaseSemaphore is a wraper for windows syscall. Returns the previous count.
func ReleaseSemaphore(h windows.Handle, count int) (int, error) {
	var prev int32
	ok, _, err := procReleaseSemaphore.Call(
		uintptr(h),
		uintptr(count),
		uintptr(unsafe.Pointer(&prev)),
	)
	if ok == 0 {
		return 0, os.NewSyscallError("ReleaseSemaphore", err)
	}
	return int(prev), nil
}
