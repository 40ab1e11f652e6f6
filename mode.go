// Copyright 2016 Aleksandr Demakin. All rights reserved.

package ipcsync

import "fmt"

// CreationMode defines how a named resource is obtained.
type CreationMode int

const (
	// OpenOrCreate joins an existing resource or creates a fresh one.
	// An existing resource's state is never modified by joining it.
	OpenOrCreate CreationMode = iota
	// CreateExclusive creates a new resource and fails if the name is taken.
	// The check and the creation are one atomic step.
	CreateExclusive
	// OpenExisting joins an existing resource and fails if there is none.
	OpenExisting
)

// Valid returns true, if the mode is one of the known modes.
func (m CreationMode) Valid() bool {
	return m >= OpenOrCreate && m <= OpenExisting
}

func (m CreationMode) String() string {
	switch m {
	case OpenOrCreate:
		return "open-or-create"
	case CreateExclusive:
		return "create-exclusive"
	case OpenExisting:
		return "open-existing"
	default:
		return fmt.Sprintf("CreationMode(%d)", int(m))
	}
}
