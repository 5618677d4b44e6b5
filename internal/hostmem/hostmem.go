// SPDX-License-Identifier: MPL-2.0

// Package hostmem reports the total physical memory installed on the host.
package hostmem

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"
)

// bytesPerMB is the divisor used to convert bytes to whole megabytes.
const bytesPerMB = 1024 * 1024

// ErrQueryFailed is wrapped by every error returned from a failed query.
var ErrQueryFailed = errors.New("physical memory query failed")

type (
	// Inspector reports total physical memory in megabytes.
	Inspector interface {
		TotalMB(ctx context.Context) (int, error)
	}

	// System queries the operating system through gopsutil.
	System struct {
		virtualMemory func(context.Context) (*mem.VirtualMemoryStat, error)
	}
)

// NewSystem returns an Inspector backed by the host operating system.
func NewSystem() *System {
	return &System{virtualMemory: mem.VirtualMemoryWithContext}
}

// TotalMB implements Inspector.
func (s *System) TotalMB(ctx context.Context) (int, error) {
	vm, err := s.virtualMemory(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	if vm == nil || vm.Total == 0 {
		return 0, fmt.Errorf("%w: operating system reported no memory", ErrQueryFailed)
	}
	return BytesToMB(vm.Total), nil
}

// BytesToMB converts a byte count to megabytes with truncating division.
func BytesToMB(b uint64) int {
	return int(b / bytesPerMB)
}

// Fixed is an Inspector that always reports the same value.
type Fixed int

// TotalMB implements Inspector.
func (f Fixed) TotalMB(context.Context) (int, error) {
	return int(f), nil
}
