package qrng

import (
	"errors"

	"github.com/quantum-shield/qrng/qrng/sampler"
)

// Sentinel errors for errors.Is() checks. A protocol declaring itself
// insecure is a normal result value, never an error.
var (
	// ErrBackendUnavailable is returned when the measurement backend
	// cannot be reached. It matches errors produced by the sampler
	// package, which propagate through this package unchanged.
	ErrBackendUnavailable = sampler.ErrUnavailable

	// ErrInvalidInput is returned for zero-length requests, empty count
	// distributions, and out-of-range parameters.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAggregation is returned when the performance tracker cannot
	// absorb a new observation without corrupting its counters.
	ErrAggregation = errors.New("aggregation failure")
)
