// Copyright 2016 Aleksandr Demakin. All rights reserved.

package main

import "golang.org/x/sys/windows"

const alreadyRunningCode = int(windows.ERROR_ALREADY_EXISTS)
