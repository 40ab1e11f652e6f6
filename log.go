// Copyright 2016 Aleksandr Demakin. All rights reserved.

package ipcsync

import (
	"log/slog"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

// SetLogger sets the logger used to report errors, which cannot be returned
// to the caller, like the ones from finalizers and deferred cleanup.
// Passing nil restores slog.Default().
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

// Logger returns the current library logger.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// LogCloseError reports an error of a cleanup step, which has no caller to return it to.
func LogCloseError(err error, what, name string) {
	if err != nil {
		Logger().Debug("cleanup failed", "object", what, "name", name, "error", err)
	}
}
