// Copyright 2015 Aleksandr Demakin. All rights reserved.

// Package testutil runs helper processes for cross-process tests.
// A helper is the test binary itself, re-executed with a marker in its environment.
// The package's TestMain must call RunHelper before m.Run().
package testutil

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/nxgtw/go-ipcsync/internal/syncutil"

	"github.com/pkg/errors"
)

const helperEnv = "IPCSYNC_TEST_HELPER"

// HelperCommand is a command, which can be executed by a helper process.
type HelperCommand func(args []string) error

// TestAppResult is a result of a helper process launch.
type TestAppResult struct {
	Output string
	Err    error
}

// IsHelper returns true, if the current process is a helper process.
func IsHelper() bool {
	return os.Getenv(helperEnv) == "1"
}

// RunHelper executes a helper command and exits, if the current process is a helper process.
// It returns immediately otherwise.
func RunHelper(commands map[string]HelperCommand) {
	if !IsHelper() {
		return
	}
	args := helperArgs()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "no helper command")
		os.Exit(2)
	}
	cmd, found := commands[args[0]]
	if !found {
		fmt.Fprintf(os.Stderr, "unknown helper command %q\n", args[0])
		os.Exit(2)
	}
	if err := cmd(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(0)
}

func helperArgs() []string {
	for i, arg := range os.Args {
		if arg == "--" {
			return os.Args[i+1:]
		}
	}
	return nil
}

// syncBuffer collects process output line by line.
type syncBuffer struct {
	mut   syncutil.Mutex
	buff  bytes.Buffer
	lines chan string
}

func (b *syncBuffer) consume(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		b.mut.Lock()
		b.buff.WriteString(line)
		b.buff.WriteByte('\n')
		b.mut.Unlock()
		select {
		case b.lines <- line:
		default:
		}
	}
	close(b.lines)
}

func (b *syncBuffer) String() string {
	b.mut.Lock()
	defer b.mut.Unlock()
	return b.buff.String()
}

// TestApp is a running helper process.
type TestApp struct {
	cmd    *exec.Cmd
	out    *syncBuffer
	done   chan struct{}
	result TestAppResult
}

// Command returns a command, which runs the test binary as a helper process.
func Command(args []string) *exec.Cmd {
	cmdArgs := append([]string{"-test.run=^$", "--"}, args...)
	cmd := exec.Command(os.Args[0], cmdArgs...)
	cmd.Env = append(os.Environ(), helperEnv+"=1")
	return cmd
}

// StartTestApp starts a helper process with the given arguments.
func StartTestApp(args []string) (*TestApp, error) {
	cmd := Command(args)
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create stdout pipe")
	}
	cmd.Stderr = cmd.Stdout
	out := &syncBuffer{lines: make(chan string, 64)}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "failed to start helper process")
	}
	app := &TestApp{cmd: cmd, out: out, done: make(chan struct{})}
	consumed := make(chan struct{})
	go func() {
		out.consume(pipe)
		close(consumed)
	}()
	go func() {
		<-consumed
		app.result = waitForCommand(cmd, out)
		close(app.done)
	}()
	return app, nil
}

// Pid returns helper's process id.
func (app *TestApp) Pid() int {
	return app.cmd.Process.Pid
}

// WaitForLine waits until the helper prints a line with the given prefix.
func (app *TestApp) WaitForLine(prefix string, d time.Duration) error {
	timeout := time.After(d)
	for {
		select {
		case line, ok := <-app.out.lines:
			if !ok {
				return errors.Errorf("helper exited before printing %q, output: %s", prefix, app.out.String())
			}
			if strings.HasPrefix(line, prefix) {
				return nil
			}
		case <-timeout:
			return errors.Errorf("timed out waiting for %q", prefix)
		}
	}
}

// Kill kills the helper and waits for it to exit.
func (app *TestApp) Kill() error {
	if err := app.cmd.Process.Kill(); err != nil {
		return errors.Wrap(err, "failed to kill helper")
	}
	<-app.done
	return nil
}

// Wait waits for the helper to exit.
func (app *TestApp) Wait() TestAppResult {
	<-app.done
	return app.result
}

// Done returns a channel, which is closed, when the helper exits.
func (app *TestApp) Done() <-chan struct{} {
	return app.done
}

func waitForCommand(cmd *exec.Cmd, out fmt.Stringer) (result TestAppResult) {
	if result.Err = cmd.Wait(); result.Err != nil {
		var exitErr *exec.ExitError
		if errors.As(result.Err, &exitErr) {
			result.Err = errors.Errorf("%v, status code = %d", result.Err, exitErr.ExitCode())
		}
	}
	result.Output = out.String()
	return
}

// RunTestApp runs a helper process and waits for it to finish.
// To kill the process, send to killChan.
func RunTestApp(args []string, killChan <-chan bool) TestAppResult {
	return <-RunTestAppAsync(args, killChan)
}

// RunTestAppAsync starts a helper process and returns immediately.
// To kill the process, send to killChan.
// To wait for the program to finish, receive on TestAppResult chan.
func RunTestAppAsync(args []string, killChan <-chan bool) <-chan TestAppResult {
	ch := make(chan TestAppResult, 1)
	app, err := StartTestApp(args)
	if err != nil {
		ch <- TestAppResult{Err: err}
		return ch
	}
	if killChan != nil {
		go func() {
			select {
			case kill, ok := <-killChan:
				if kill && ok {
					app.cmd.Process.Kill()
				}
			case <-app.done:
			}
		}()
	}
	go func() {
		ch <- app.Wait()
	}()
	return ch
}

// WaitForAppResultChan waits for a value from ch with a timeout
func WaitForAppResultChan(ch <-chan TestAppResult, d time.Duration) (TestAppResult, bool) {
	select {
	case value := <-ch:
		return value, true
	case <-time.After(d):
		return TestAppResult{}, false
	}
}
