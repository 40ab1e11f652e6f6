// Copyright 2016 Aleksandr Demakin. All rights reserved.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/nxgtw/go-ipcsync"
	"github.com/nxgtw/go-ipcsync/metrics"
	"github.com/nxgtw/go-ipcsync/singleton"

	"github.com/heptiolabs/healthcheck"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxDaemonGoroutines = 1000

func runDaemon(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	name := fs.String("name", "ipcsync.daemon", "instance name")
	listen := fs.String("listen", "", "address for the /live, /ready and /metrics endpoints")
	replace := fs.Bool("replace", false, "ask the running instance to terminate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	inst, err := singleton.Acquire(singleton.Config{
		Name:    *name,
		Replace: *replace || singleton.ReplaceRequested(),
	})
	if err == singleton.ErrAlreadyRunning {
		fmt.Fprintf(out, "Another instance of %q is already running!\n", *name)
		fmt.Fprintf(out, "Terminate it or try again with %s=%s\n", singleton.ReplaceEnv, singleton.ReplaceValue)
		return exitCode(alreadyRunningCode)
	}
	if err != nil {
		return err
	}
	if inst.Recovered() {
		fmt.Fprintln(out, "Previous instance terminated abnormally. Recovered resources.")
	}
	var running atomic.Bool
	running.Store(true)
	if len(*listen) > 0 {
		srv, err := startDaemonServer(*listen, &running)
		if err != nil {
			inst.Close()
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				ipcsync.Logger().Warn("failed to shut down http server", "error", err)
			}
		}()
	}
	fmt.Fprintln(out, "Waiting to continue or request termination...")
	if err := inst.Wait(); err != nil {
		inst.Close()
		return err
	}
	running.Store(false)
	if err := inst.Close(); err != nil {
		return err
	}
	fmt.Fprintln(out, "Terminating per request")
	return nil
}

func newDaemonHandler(running *atomic.Bool) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, errors.Wrap(err, "failed to register go collector")
	}
	health := healthcheck.NewHandler()
	health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(maxDaemonGoroutines))
	health.AddReadinessCheck("instance", func() error {
		if !running.Load() {
			return errors.New("instance is terminating")
		}
		return nil
	})
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/live", health.LiveEndpoint)
	mux.HandleFunc("/ready", health.ReadyEndpoint)
	return mux, nil
}

func startDaemonServer(addr string, running *atomic.Bool) (*http.Server, error) {
	handler, err := newDaemonHandler(running)
	if err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to listen")
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			ipcsync.Logger().Error("http server failed", "error", err)
		}
	}()
	ipcsync.Logger().Info("serving health and metrics", "addr", ln.Addr().String())
	return srv, nil
}

func runSignal(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("signal", flag.ContinueOnError)
	name := fs.String("name", "ipcsync.daemon", "instance name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := singleton.RequestTermination(*name); err != nil {
		return err
	}
	fmt.Fprintf(out, "Requested termination of %q\n", *name)
	return nil
}
