// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Command ipcsync is a set of small programs built on the ipcsync primitives.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nxgtw/go-ipcsync"

	"github.com/pkg/errors"
)

const usage = `ipcsync - cross-process synchronization tools.
usage:
  ipcsync [-log-format text|json] [-log-level debug|info|warn|error] command [arguments]
available commands:
  daemon -name {name} [-listen addr] [-replace]
    runs as the single instance until another process requests termination.
    setting IPCSYNC_REPLACE=NEW in the environment is the same as -replace.
  signal -name {name}
    requests termination of the running instance.
  fanout [-name {name}] [-delay duration] {args...}
    prints each argument exactly once from one of the child processes.
  unlink [-mutex name] [-semaphore name] [-segment name] [-instance name]
    removes named objects.
`

type command func(args []string, out io.Writer) error

var commands = map[string]command{
	"daemon":       runDaemon,
	"signal":       runSignal,
	"fanout":       runFanout,
	"fanout-child": runFanoutChild,
	"unlink":       runUnlink,
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var code exitCode
		if errors.As(err, &code) {
			os.Exit(int(code))
		}
		os.Exit(1)
	}
}

// exitCode is an error, which makes the program exit with the given status.
type exitCode int

func (c exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(c))
}

func run(args []string, out, logOut io.Writer) error {
	fs := flag.NewFlagSet("ipcsync", flag.ContinueOnError)
	fs.SetOutput(logOut)
	fs.Usage = func() { fmt.Fprint(logOut, usage) }
	logFormat := fs.String("log-format", "text", "log format: text or json")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	logger, err := newLogger(logOut, *logFormat, *logLevel)
	if err != nil {
		return err
	}
	ipcsync.SetLogger(logger)
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no command specified")
	}
	cmd, found := commands[fs.Arg(0)]
	if !found {
		fs.Usage()
		return errors.Errorf("unknown command %q", fs.Arg(0))
	}
	return cmd(fs.Args()[1:], out)
}

func newLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, errors.Errorf("invalid log format %q", format)
	}
}
