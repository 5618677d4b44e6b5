// SPDX-License-Identifier: MPL-2.0

package hostmem

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v4/mem"
)

func TestBytesToMB(t *testing.T) {
	tests := []struct {
		in   uint64
		want int
	}{
		{0, 0},
		{1024*1024 - 1, 0},
		{1024 * 1024, 1},
		{900 * 1024 * 1024, 900},
		{900*1024*1024 + 1024*1024 - 1, 900},
		{16 * 1024 * 1024 * 1024, 16384},
	}
	for _, tt := range tests {
		if got := BytesToMB(tt.in); got != tt.want {
			t.Errorf("BytesToMB(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSystem_TotalMB(t *testing.T) {
	s := &System{virtualMemory: func(context.Context) (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 300 * 1024 * 1024}, nil
	}}

	got, err := s.TotalMB(context.Background())
	if err != nil {
		t.Fatalf("TotalMB() error = %v", err)
	}
	if got != 300 {
		t.Errorf("TotalMB() = %d, want 300", got)
	}
}

func TestSystem_TotalMB_Errors(t *testing.T) {
	tests := []struct {
		name string
		vm   *mem.VirtualMemoryStat
		err  error
	}{
		{name: "query error", err: errors.New("not implemented yet")},
		{name: "nil stat", vm: nil},
		{name: "zero total", vm: &mem.VirtualMemoryStat{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &System{virtualMemory: func(context.Context) (*mem.VirtualMemoryStat, error) {
				return tt.vm, tt.err
			}}
			_, err := s.TotalMB(context.Background())
			if !errors.Is(err, ErrQueryFailed) {
				t.Fatalf("TotalMB() error = %v, want ErrQueryFailed", err)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Errorf("TotalMB() error should wrap %v", tt.err)
			}
		})
	}
}

func TestSystem_TotalMB_Host(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping host query in short mode")
	}
	got, err := NewSystem().TotalMB(context.Background())
	if err != nil {
		t.Skipf("host memory unavailable: %v", err)
	}
	if got <= 0 {
		t.Errorf("TotalMB() = %d, want > 0", got)
	}
}

func TestFixed(t *testing.T) {
	got, err := Fixed(150).TotalMB(context.Background())
	if err != nil || got != 150 {
		t.Errorf("Fixed(150).TotalMB() = %d, %v", got, err)
	}
}
