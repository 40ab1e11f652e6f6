// Copyright 2016 Aleksandr Demakin. All rights reserved.

package main

import (
	"github.com/pkg/errors"
)

// MaxArgLen is the maximum length of a string stored in a ConsumeOnceCell.
const MaxArgLen = 248

const (
	cellEmpty uint32 = iota
	cellAvailable
	cellConsumed
)

// ConsumeOnceCell holds a string, which can be taken only once.
// It is stored in shared memory, so it has no pointers. It is not synchronized.
type ConsumeOnceCell struct {
	State uint32
	Len   uint32
	Data  [MaxArgLen]byte
}

// Set stores s and makes the cell available.
func (c *ConsumeOnceCell) Set(s string) error {
	if len(s) > MaxArgLen {
		return errors.Errorf("argument is too long: %d > %d", len(s), MaxArgLen)
	}
	c.Len = uint32(copy(c.Data[:], s))
	c.State = cellAvailable
	return nil
}

// Available returns true, if the cell holds a string, which has not been consumed.
func (c *ConsumeOnceCell) Available() bool {
	return c.State == cellAvailable
}

// Consume takes the string. Subsequent calls return false.
func (c *ConsumeOnceCell) Consume() (string, bool) {
	if !c.Available() {
		return "", false
	}
	c.State = cellConsumed
	return string(c.Data[:c.Len]), true
}
