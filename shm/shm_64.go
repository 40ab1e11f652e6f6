// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build !(386 || arm || mips || mipsle)

package shm

const maxSegmentBytes = 1 << 40
