// Copyright 2015 Aleksandr Demakin. All rights reserved.

package shm

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/nxgtw/go-ipcsync"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sys/unix"
)

const (
	maxNameLen       = 255
	defaultShmPath   = "/dev/shm/"
	cShmfsSuperMagic = 0x01021994
	cRamfsMagic      = 0x858458f6

	// DirEnv overrides the directory for shared memory objects.
	DirEnv = "IPCSYNC_SHM_DIR"
)

var (
	shmPathOnce sync.Once
	shmPath     string
)

// shmName returns a path of the object in the shared memory filesystem.
// glibc/sysdeps/posix/shm-directory.h
func shmName(name string) (string, error) {
	name = strings.TrimLeft(name, "/")
	nameLen := len(name)
	if nameLen == 0 || nameLen >= maxNameLen || strings.Contains(name, "/") {
		return "", ipcsync.NewError(syscall.EINVAL, "shm name "+name, "")
	}
	dir, err := shmDirectory()
	if err != nil {
		return "", errors.Wrap(err, "error building shared memory name")
	}
	return dir + name, nil
}

func shmDirectory() (string, error) {
	shmPathOnce.Do(locateShmFs)
	if len(shmPath) == 0 {
		return shmPath, errors.New("error locating the shared memory path")
	}
	return shmPath, nil
}

// glibc/sysdeps/unix/sysv/linux/shm-directory.c
func locateShmFs() {
	if dir := os.Getenv(DirEnv); len(dir) > 0 {
		shmPath = withSlash(dir)
	} else if checkShmPath(defaultShmPath) {
		shmPath = defaultShmPath
	} else {
		shmPath = shmFsFromMounts()
	}
}

func withSlash(path string) string {
	if !strings.HasSuffix(path, "/") {
		return path + "/"
	}
	return path
}

func checkShmPath(path string) bool {
	if len(path) == 0 {
		return false
	}
	var statfs unix.Statfs_t
	if err := unix.Statfs(path, &statfs); err != nil {
		return false
	}
	return isShmFs(int64(statfs.Type))
}

func isShmFs(fsType int64) bool {
	return fsType == cShmfsSuperMagic || fsType == cRamfsMagic
}

func shmFsFromMounts() string {
	for _, path := range []string{"/proc/mounts", "/etc/fstab"} {
		if file, err := os.Open(path); err == nil {
			result := shmFsFromReader(file)
			file.Close()
			return result
		}
	}
	return ""
}

func shmFsFromReader(r io.Reader) string {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		// fsname dir type opts freq passno
		if len(fields) < 3 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fstype := fields[2]; fstype != "tmpfs" && fstype != "shm" {
			continue
		}
		if checkShmPath(fields[1]) {
			return withSlash(fields[1])
		}
	}
	return ""
}

// checkFreeSpace fails with ENOSPC, if the filesystem at dir cannot hold size more bytes.
// tmpfs reserves pages lazily, so a truncated but unbacked object would fail with SIGBUS on first access.
func checkFreeSpace(dir string, size int64) error {
	usage, err := disk.Usage(dir)
	if err != nil {
		return errors.Wrap(err, "failed to get shm filesystem usage")
	}
	if usage.Total > 0 && uint64(size) > usage.Free {
		return ipcsync.NewError(syscall.ENOSPC, "allocate shared memory", "statfs")
	}
	return nil
}
