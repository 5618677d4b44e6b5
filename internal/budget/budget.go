// SPDX-License-Identifier: MPL-2.0

// Package budget computes the heap size requested from the Java runtime.
package budget

import (
	"errors"
	"fmt"
)

// MinPhysicalMB is the smallest amount of installed memory the launcher
// accepts.
const MinPhysicalMB = 200

var (
	// ErrInsufficientMemory is wrapped by InsufficientMemoryError.
	ErrInsufficientMemory = errors.New("not enough memory")
	// ErrZeroHeap is returned when the computed heap is zero.
	ErrZeroHeap = errors.New("computed heap size is zero")
)

// InsufficientMemoryError reports a host below MinPhysicalMB.
type InsufficientMemoryError struct {
	PhysicalMB int
}

// Error implements the error interface.
func (e *InsufficientMemoryError) Error() string {
	return fmt.Sprintf("not enough memory: %dMB installed, at least %dMB required", e.PhysicalMB, MinPhysicalMB)
}

// Unwrap returns ErrInsufficientMemory for errors.Is.
func (e *InsufficientMemoryError) Unwrap() error { return ErrInsufficientMemory }

// Compute returns min(ceilingMB, floor(2*physicalMB/3)).
//
// Hosts below MinPhysicalMB fail with *InsufficientMemoryError before any
// arithmetic. A zero result fails with ErrZeroHeap; with the 200MB floor
// and a positive ceiling that cannot happen, but the check stays so a lower
// floor or a zero ceiling never produces -Xmx0m.
func Compute(physicalMB, ceilingMB int) (int, error) {
	if physicalMB < MinPhysicalMB {
		return 0, &InsufficientMemoryError{PhysicalMB: physicalMB}
	}

	heap := (physicalMB * 2) / 3
	heap = min(heap, ceilingMB)

	if heap <= 0 {
		return 0, ErrZeroHeap
	}
	return heap, nil
}
