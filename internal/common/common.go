// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package common holds helpers shared by the platform implementations.
package common

import (
	"os"
	"syscall"

	"github.com/nxgtw/go-ipcsync"

	"github.com/pkg/errors"
)

const openOrCreateAttempts = 16

// OpenOrCreate performs the creation protocol for a named object.
// creator(true) must create the object atomically, failing with an os.ErrExist-compatible error,
// if it already exists. creator(false) must open an existing object, failing with an os.ErrNotExist-compatible
// error, if there is none. In OpenOrCreate mode an existing object is opened first, and the object is
// created only if it is absent, so joining never runs the creation path. Both steps are retried,
// as the object may be created or removed between them by another process.
// Returns true, if the object was created.
func OpenOrCreate(creator func(create bool) error, mode ipcsync.CreationMode) (bool, error) {
	switch mode {
	case ipcsync.OpenExisting:
		return false, creator(false)
	case ipcsync.CreateExclusive:
		if err := creator(true); err != nil {
			return false, err
		}
		return true, nil
	case ipcsync.OpenOrCreate:
		var err error
		for attempt := 0; attempt < openOrCreateAttempts; attempt++ {
			if err = creator(false); !ipcsync.IsNotExist(err) {
				return false, err
			}
			if err = creator(true); !ipcsync.IsExist(err) {
				return err == nil, err
			}
		}
		return false, errors.Wrap(err, "failed to open or create the object")
	default:
		return false, errors.Errorf("unknown creation mode %d", int(mode))
	}
}

// CheckName validates a name of a named resource.
func CheckName(name string) error {
	if len(name) == 0 {
		return ipcsync.NewError(syscall.EINVAL, "check name", "")
	}
	return nil
}

// PermOrDefault returns perm, or 0666, if perm has no permission bits.
func PermOrDefault(perm os.FileMode) os.FileMode {
	if perm.Perm() == 0 {
		return 0666
	}
	return perm.Perm()
}
