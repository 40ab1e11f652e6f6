// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package metrics exposes prometheus collectors updated by the primitives.
// The collectors are not registered by default, use Register.
package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ipcsync"

var (
	// LockOutcomes counts mutex acquisition attempts by primitive and outcome.
	LockOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lock_outcomes_total",
		Help:      "Mutex acquisition attempts by primitive and outcome.",
	}, []string{"primitive", "outcome"})

	// SemaphoreOps counts semaphore operations by primitive, operation and result.
	SemaphoreOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "semaphore_operations_total",
		Help:      "Semaphore operations by primitive, operation and result.",
	}, []string{"primitive", "op", "result"})

	// MappedBytes is the amount of shared memory currently mapped by the process.
	MappedBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mapped_bytes",
		Help:      "Bytes of shared memory currently mapped by this process.",
	})

	// Errors counts platform errors by operation.
	Errors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "errors_total",
		Help:      "Platform errors reported by the primitives.",
	}, []string{"op"})
)

// Collectors returns all the collectors of the package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{LockOutcomes, SemaphoreOps, MappedBytes, Errors}
}

// Register registers all the collectors with r.
// Collectors, which are already registered, are skipped.
func Register(r prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return errors.Wrap(err, "failed to register collector")
		}
	}
	return nil
}

// ObserveLock records a mutex acquisition outcome.
func ObserveLock(primitive, outcome string) {
	LockOutcomes.WithLabelValues(primitive, outcome).Inc()
}

// ObserveSemaphore records a semaphore operation. ok is false for failed non-blocking
// or timed attempts.
func ObserveSemaphore(primitive, op string, ok bool) {
	result := "ok"
	if !ok {
		result = "unavailable"
	}
	SemaphoreOps.WithLabelValues(primitive, op, result).Inc()
}

// ObserveError records a platform error. nil errors are ignored.
func ObserveError(op string, err error) {
	if err != nil {
		Errors.WithLabelValues(op).Inc()
	}
}
