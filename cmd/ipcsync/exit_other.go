// Copyright 2016 Aleksandr Demakin. All rights reserved.

//go:build !unix && !windows

package main

const alreadyRunningCode = 1
