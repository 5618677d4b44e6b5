// SPDX-License-Identifier: MPL-2.0

// Package launch starts the application process and relays its output.
package launch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

const (
	// OutputCapture reads the child's whole standard output, then writes it.
	OutputCapture OutputMode = "capture"
	// OutputStream forwards standard output as it is produced.
	OutputStream OutputMode = "stream"
)

// DefaultWaitDelay bounds how long Run waits for the child's output pipes
// to close after the context ends and the child has been killed.
const DefaultWaitDelay = 5 * time.Second

// ErrLaunchFailed is wrapped when the child could not be started or its
// output could not be read.
var ErrLaunchFailed = errors.New("launch failed")

type (
	// OutputMode selects how the child's standard output is relayed.
	OutputMode string

	// Spec describes the process to start.
	Spec struct {
		// Binary is the runtime executable.
		Binary string
		// Args are passed to Binary without a shell.
		Args []string
		// Dir is the working directory; empty means the launcher's own.
		Dir string
		// Mode selects capture or stream relaying (default capture).
		Mode OutputMode
		// Stdout receives the child's standard output (default os.Stdout).
		Stdout io.Writer
		// Stderr receives the child's standard error (default os.Stderr).
		Stderr io.Writer
		// WaitDelay overrides DefaultWaitDelay. A grandchild that inherited
		// the output pipes cannot hold Run open past it.
		WaitDelay time.Duration
	}

	// Outcome describes a child that ran to completion.
	Outcome struct {
		// ExitCode is the child's exit status.
		ExitCode int
		// Output is the captured standard output in capture mode.
		Output string
	}

	// Runner starts a process described by a Spec.
	Runner interface {
		Run(ctx context.Context, spec Spec) (Outcome, error)
	}

	// ExecRunner runs processes with os/exec.
	ExecRunner struct{}

	// Error reports a child that could not be started or read.
	Error struct {
		Binary string
		Err    error
	}
)

// IsValid reports whether the mode is a known OutputMode.
func (m OutputMode) IsValid() bool {
	return m == OutputCapture || m == OutputStream
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Binary, e.Err)
}

// Unwrap lets errors.Is match both ErrLaunchFailed and the cause.
func (e *Error) Unwrap() []error {
	return []error{ErrLaunchFailed, e.Err}
}

// NewExecRunner creates a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements Runner. A child that starts and exits with a non-zero
// status is a normal completion and is reported through Outcome.ExitCode.
func (r *ExecRunner) Run(ctx context.Context, spec Spec) (Outcome, error) {
	stdout := spec.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := spec.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	cmd := exec.CommandContext(ctx, spec.Binary, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Stderr = stderr
	cmd.WaitDelay = spec.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}

	var captured bytes.Buffer
	if spec.Mode == OutputStream {
		cmd.Stdout = stdout
	} else {
		cmd.Stdout = &captured
	}

	if err := cmd.Start(); err != nil {
		return Outcome{}, &Error{Binary: spec.Binary, Err: err}
	}

	waitErr := cmd.Wait()
	out := Outcome{Output: captured.String()}

	if spec.Mode != OutputStream && captured.Len() > 0 {
		if _, err := io.WriteString(stdout, out.Output); err != nil {
			return out, &Error{Binary: spec.Binary, Err: fmt.Errorf("relay output: %w", err)}
		}
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		// ExitCode is -1 when the child was killed by a signal.
		if errors.As(waitErr, &exitErr) && ctx.Err() == nil && exitErr.ExitCode() >= 0 {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, &Error{Binary: spec.Binary, Err: waitErr}
	}

	return out, nil
}
