// SPDX-License-Identifier: MPL-2.0

package jvm

import (
	"errors"
	"strings"
)

const (
	// RuntimeMarker must appear in the probe text for a runtime to count as
	// installed.
	RuntimeMarker = "Java"
	// Arch64Marker identifies a 64-bit virtual machine in the probe text.
	Arch64Marker = "64-Bit"

	// Ceiling32MB is the largest heap requested from a 32-bit runtime.
	Ceiling32MB = 250
	// Ceiling64MB is the largest heap requested from a 64-bit runtime.
	Ceiling64MB = 500
)

const (
	Arch32 Arch = iota + 1
	Arch64
)

// ErrRuntimeNotFound is returned when the probe text does not mention Java.
var ErrRuntimeNotFound = errors.New("could not find java on your system")

type (
	// Arch is the pointer width of the detected virtual machine.
	Arch int

	// Classification is the result of inspecting a runtime's version text.
	Classification struct {
		Arch      Arch
		CeilingMB int
	}
)

// String returns "32-bit" or "64-bit".
func (a Arch) String() string {
	switch a {
	case Arch32:
		return "32-bit"
	case Arch64:
		return "64-bit"
	default:
		return "unknown"
	}
}

// CeilingMB returns the heap ceiling for the architecture, or 0 when unknown.
func (a Arch) CeilingMB() int {
	switch a {
	case Arch32:
		return Ceiling32MB
	case Arch64:
		return Ceiling64MB
	default:
		return 0
	}
}

// Classify inspects the version text from a runtime probe.
//
// This is a plain substring heuristic, not a version parser: any text
// containing "Java" counts as a runtime, and any text also containing
// "64-Bit" counts as 64-bit, wherever the markers appear.
func Classify(text string) (Classification, error) {
	if !strings.Contains(text, RuntimeMarker) {
		return Classification{}, ErrRuntimeNotFound
	}

	arch := Arch32
	if strings.Contains(text, Arch64Marker) {
		arch = Arch64
	}
	return Classification{Arch: arch, CeilingMB: arch.CeilingMB()}, nil
}
