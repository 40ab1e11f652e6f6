// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build unix

package main

import "syscall"

const alreadyRunningCode = int(syscall.EALREADY)
