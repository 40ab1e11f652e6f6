// Copyright 2015 Aleksandr Demakin. All rights reserved.

package mmf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type nopMappable struct{}

func (nopMappable) Fd() uintptr  { return ^uintptr(0) }
func (nopMappable) Name() string { return "nop" }

func TestMmfInvalidArgs(t *testing.T) {
	a := assert.New(t)
	_, err := NewMemoryRegion(nopMappable{}, MemReadOnly, 0, 0)
	a.Error(err)
	_, err = NewMemoryRegion(nopMappable{}, MemReadOnly, -1, 1)
	a.Error(err)
	_, err = NewMemoryRegion(nopMappable{}, 42, 0, 1)
	a.Error(err)
}
