// Copyright 2016 Aleksandr Demakin. All rights reserved.

package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	testutil "github.com/nxgtw/go-ipcsync/internal/test"
	"github.com/nxgtw/go-ipcsync/singleton"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	testutil.RunHelper(map[string]testutil.HelperCommand{
		"fanout-child": func(args []string) error {
			return runFanoutChild(args, os.Stdout)
		},
	})
	childCommand = func(args []string) (*exec.Cmd, error) {
		return testutil.Command(args), nil
	}
	os.Exit(m.Run())
}

func skipUnsupported(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "windows" {
		t.Skipf("named objects are not supported on %s", runtime.GOOS)
	}
}

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	lockedWriter
	buff bytes.Buffer
}

func newSyncBuffer() *syncBuffer {
	b := &syncBuffer{}
	b.w = &b.buff
	return b
}

func (b *syncBuffer) String() string {
	b.mut.Lock()
	defer b.mut.Unlock()
	return b.buff.String()
}

func TestRunErrors(t *testing.T) {
	a := assert.New(t)
	a.Error(run(nil, io.Discard, io.Discard))
	a.Error(run([]string{"nope"}, io.Discard, io.Discard))
	a.Error(run([]string{"-log-format", "xml", "unlink"}, io.Discard, io.Discard))
	a.Error(run([]string{"-log-level", "loud", "unlink"}, io.Discard, io.Discard))
	a.Error(run([]string{"unlink"}, io.Discard, io.Discard))
	a.Error(run([]string{"fanout"}, io.Discard, io.Discard))
}

func TestConsumeOnceCell(t *testing.T) {
	a := assert.New(t)
	var c ConsumeOnceCell
	a.False(c.Available())
	_, ok := c.Consume()
	a.False(ok)
	a.NoError(c.Set("value"))
	a.True(c.Available())
	s, ok := c.Consume()
	a.True(ok)
	a.Equal("value", s)
	_, ok = c.Consume()
	a.False(ok)
	a.Error(c.Set(strings.Repeat("x", MaxArgLen+1)))
	a.NoError(c.Set(strings.Repeat("x", MaxArgLen)))
	s, _ = c.Consume()
	a.Len(s, MaxArgLen)
}

func TestFanout(t *testing.T) {
	skipUnsupported(t)
	a := assert.New(t)
	const name = "ipcsync.test.fanout"
	defer run([]string{"unlink", "-mutex", name}, io.Discard, io.Discard)
	out := newSyncBuffer()
	values := []string{"alpha", "beta", "gamma", "delta"}
	err := run(append([]string{"fanout", "-name", name, "-parallel", "4"}, values...), out, io.Discard)
	if !a.NoError(err, out.String()) {
		return
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	a.Len(lines, len(values))
	for _, v := range values {
		a.Equal(1, strings.Count(out.String(), "Argument: "+v+", from pid: "), v)
	}
}

func TestDaemonHandler(t *testing.T) {
	a := assert.New(t)
	var running atomic.Bool
	running.Store(true)
	handler, err := newDaemonHandler(&running)
	if !a.NoError(err) {
		return
	}
	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}
	a.Equal(http.StatusOK, get("/live").Code)
	a.Equal(http.StatusOK, get("/ready").Code)
	running.Store(false)
	a.Equal(http.StatusServiceUnavailable, get("/ready").Code)
	rec := get("/metrics")
	a.Equal(http.StatusOK, rec.Code)
	a.Contains(rec.Body.String(), "ipcsync_mapped_bytes")
}

func TestDaemonAndSignal(t *testing.T) {
	skipUnsupported(t)
	a := assert.New(t)
	const name = "ipcsync.test.daemon"
	t.Setenv(singleton.ReplaceEnv, "")
	a.NoError(singleton.Unlink(name))
	defer singleton.Unlink(name)
	out := newSyncBuffer()
	done := make(chan error, 1)
	go func() {
		done <- run([]string{"daemon", "-name", name}, out, io.Discard)
	}()
	if !a.Eventually(func() bool {
		return strings.Contains(out.String(), "Waiting to continue")
	}, 5*time.Second, 10*time.Millisecond) {
		return
	}
	second := newSyncBuffer()
	err := run([]string{"daemon", "-name", name}, second, io.Discard)
	var code exitCode
	if a.True(errors.As(err, &code)) {
		a.Equal(exitCode(alreadyRunningCode), code)
	}
	a.Contains(second.String(), "already running")
	a.NoError(run([]string{"signal", "-name", name}, io.Discard, io.Discard))
	select {
	case err := <-done:
		a.NoError(err)
		a.Contains(out.String(), "Terminating per request")
	case <-time.After(5 * time.Second):
		t.Error("daemon has not terminated")
	}
}
