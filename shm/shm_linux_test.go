// Copyright 2015 Aleksandr Demakin. All rights reserved.

package shm

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/nxgtw/go-ipcsync"

	"github.com/stretchr/testify/assert"
)

func TestShmFsFromReader(t *testing.T) {
	const (
		testData = `
			#
			# /etc/fstab
			# name dir type opts freq passno
			UUID=cd459033-ae0a-4fb4-96fb-2323365a8e21 /                       ext4    defaults        1 1
			UUID=4542ef12-df3d-4336-9d12-740763854139 /boot                   ext4    defaults        1 2
			UUID=53d61062-7b6b-4f5b-80fd-7baf4017f96d swap                    swap    defaults        0 0
			tmpfs /dev/shm tmpfs rw,seclabel,nosuid,nodev 0 0
		`
		testData2 = "tmpfs /dev/shm nottmpfs rw,seclabel,nosuid,nodev 0 0"
	)
	a := assert.New(t)
	a.Equal("/dev/shm/", shmFsFromReader(strings.NewReader(testData)))
	a.Equal("", shmFsFromReader(strings.NewReader(testData2)))
}

func TestShmFsFromMountPoints(t *testing.T) {
	assert.NotEmpty(t, shmFsFromMounts())
}

func TestShmName(t *testing.T) {
	a := assert.New(t)
	path, err := shmName("/ipcsync.test")
	a.NoError(err)
	a.True(strings.HasSuffix(path, "/ipcsync.test"))
	_, err = shmName("")
	a.True(ipcsync.HasCode(err, syscall.EINVAL))
	_, err = shmName("a/b")
	a.Error(err)
	_, err = shmName(strings.Repeat("a", maxNameLen))
	a.Error(err)
}

func TestCheckFreeSpace(t *testing.T) {
	a := assert.New(t)
	dir, err := shmDirectory()
	if !a.NoError(err) {
		return
	}
	a.NoError(checkFreeSpace(dir, 4096))
	err = checkFreeSpace(dir, 1<<62)
	a.True(ipcsync.HasCode(err, syscall.ENOSPC))
}

func TestCreateExclusiveConflictLeavesNoTrace(t *testing.T) {
	const name = "ipcsync.test.conflict"
	a := assert.New(t)
	if !a.NoError(UnlinkSegment(name)) {
		return
	}
	defer UnlinkSegment(name)
	seg, err := OpenSegment[uint64](name, 128, ipcsync.CreateExclusive, 0666)
	if !a.NoError(err) {
		return
	}
	defer seg.Unmap()
	for i := range seg.Elements() {
		seg.Elements()[i] = uint64(i) + 1
	}
	initCalled := false
	_, err = OpenSegmentInit[uint64](name, 128, ipcsync.CreateExclusive, 0666, func(elems []uint64) {
		initCalled = true
		for i := range elems {
			elems[i] = 0
		}
	})
	a.True(ipcsync.IsExist(err))
	a.True(initCalled)
	for i, v := range seg.Elements() {
		if !a.Equal(uint64(i)+1, v, "element %d", i) {
			break
		}
	}
	path, err := shmName(name)
	if !a.NoError(err) {
		return
	}
	leftovers, err := filepath.Glob(path + ".tmp.*")
	a.NoError(err)
	a.Empty(leftovers)
	fi, err := os.Stat(path)
	if a.NoError(err) {
		a.Equal(int64(128*8), fi.Size())
	}
}
