// Copyright 2016 Aleksandr Demakin. All rights reserved.

package proc

import (
	"os"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAliveSelf(t *testing.T) {
	a := assert.New(t)
	a.True(Alive(Current()))
	a.Equal(uint32(os.Getpid()), Current())
	a.False(Alive(0))
	a.False(Alive(MaxPid + 1))
}

func TestAliveExited(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no 'true' binary")
	}
	a := assert.New(t)
	cmd := exec.Command("true")
	if !a.NoError(cmd.Start()) {
		return
	}
	pid := uint32(cmd.Process.Pid)
	if !a.NoError(cmd.Wait()) {
		return
	}
	a.False(Alive(pid))
}
