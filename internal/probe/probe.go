// SPDX-License-Identifier: MPL-2.0

// Package probe asks the installed Java runtime to describe itself.
//
// The runtime is started with its version flag and both output streams are
// drained. The version banner is conventionally written to standard error,
// so that stream is the probe's result. A runtime that cannot be found or
// started yields an empty result instead of an error: callers treat empty
// text as "runtime absent".
package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultBinary is the runtime executable looked up on PATH.
	DefaultBinary = "java"
	// DefaultVersionFlag is the runtime's version-query flag.
	DefaultVersionFlag = "-version"
)

type (
	// Result is the outcome of a probe. Text is the runtime's standard error
	// output; it is empty whenever the runtime could not be run.
	Result struct {
		// Binary is the resolved path of the runtime, empty when lookup failed.
		Binary string
		// Text is the diagnostic text read from standard error.
		Text string
		// Stdout is whatever the runtime wrote to standard output.
		Stdout string
		// Err records why the runtime could not be probed. It is informational
		// only: a probe never fails, it reports absence through an empty Text.
		Err error
	}

	// Prober runs a runtime probe.
	Prober interface {
		Probe(ctx context.Context) Result
	}

	// Command probes a runtime binary found on PATH.
	Command struct {
		// Binary is the runtime executable name or path (default "java").
		Binary string
		// Flag is the version-query flag (default "-version").
		Flag string

		lookPath func(string) (string, error)
	}
)

// Found reports whether the probe produced any diagnostic text.
func (r Result) Found() bool {
	return r.Text != ""
}

// NewCommand creates a Command for the given binary and flag; empty values
// fall back to DefaultBinary and DefaultVersionFlag.
func NewCommand(binary, flag string) *Command {
	if binary == "" {
		binary = DefaultBinary
	}
	if flag == "" {
		flag = DefaultVersionFlag
	}
	return &Command{Binary: binary, Flag: flag, lookPath: exec.LookPath}
}

// Probe implements Prober.
func (c *Command) Probe(ctx context.Context) Result {
	lookPath := c.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	path, err := lookPath(c.Binary)
	if err != nil {
		return Result{Err: fmt.Errorf("look up %s: %w", c.Binary, err)}
	}

	res := Run(ctx, path, c.Flag)
	res.Binary = path
	return res
}

// Run executes binary with flag and returns its standard error text.
// Both streams are read to completion concurrently so a runtime that fills
// one pipe while the other is being drained cannot block the probe.
func Run(ctx context.Context, binary, flag string) Result {
	cmd := exec.CommandContext(ctx, binary, flag)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{Err: fmt.Errorf("attach stdout: %w", err)}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{Err: fmt.Errorf("attach stderr: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		return Result{Err: fmt.Errorf("start %s: %w", binary, err)}
	}

	var outBuf, errBuf bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(&outBuf, stdout)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(&errBuf, stderr)
		return err
	})

	copyErr := g.Wait()
	waitErr := cmd.Wait()

	if copyErr != nil {
		return Result{Err: fmt.Errorf("read %s output: %w", binary, copyErr)}
	}

	// A non-zero exit status still leaves a usable banner on stderr, so only
	// context cancellation discards the text.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{Err: fmt.Errorf("probe %s: %w", binary, ctxErr)}
	}

	return Result{
		Text:   errBuf.String(),
		Stdout: outBuf.String(),
		Err:    waitErr,
	}
}
