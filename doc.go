// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package ipcsync provides named, cross-process synchronization primitives
// and typed shared memory.
// The root package holds the vocabulary shared by all subpackages:
//
//	Duration     - a multi-unit timeout value
//	Error        - a platform error code annotated with the failing operation
//	LockOutcome  - the result of a mutex acquisition attempt
//	CreationMode - how a named resource is created or opened
//
// The primitives themselves live in the subpackages:
//
//	sync   - mutexes, semaphores and critical sections (linux, windows)
//	shm    - shared memory objects and typed segments (linux, windows)
//	mmf    - memory mapped regions (linux, windows)
//
// On other platforms every named constructor fails with an unsupported platform error.
package ipcsync
