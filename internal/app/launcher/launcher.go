// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/astrojournal/ajlaunch/internal/budget"
	"github.com/astrojournal/ajlaunch/internal/config"
	"github.com/astrojournal/ajlaunch/internal/hostmem"
	"github.com/astrojournal/ajlaunch/internal/installpath"
	"github.com/astrojournal/ajlaunch/internal/issue"
	"github.com/astrojournal/ajlaunch/internal/jvm"
	"github.com/astrojournal/ajlaunch/internal/launch"
	"github.com/astrojournal/ajlaunch/internal/probe"
)

const (
	// ExitPrecondition is returned when the host cannot run the application.
	ExitPrecondition = 1
	// ExitLaunchFailed is returned when the application process could not be
	// started or its output could not be relayed.
	ExitLaunchFailed = 2
)

type (
	// Launcher runs the launch pipeline. Every environment touchpoint is a
	// field so tests can substitute fakes; New fills in the real ones.
	Launcher struct {
		Config *config.Config
		Prober probe.Prober
		Memory hostmem.Inspector
		Paths  installpath.Resolver
		Runner launch.Runner
		Logger *log.Logger
		// Stdout receives the application's output.
		Stdout io.Writer
		// Stderr receives the application's diagnostics.
		Stderr io.Writer
	}

	// Plan is everything decided before the application starts.
	Plan struct {
		// Runtime is the resolved runtime executable.
		Runtime string
		// ProbeText is the runtime's version banner.
		ProbeText string
		// Arch is the classified runtime architecture.
		Arch jvm.Arch
		// CeilingMB is the heap ceiling implied by Arch.
		CeilingMB int
		// PhysicalMB is the host's installed memory.
		PhysicalMB int
		// HeapMB is the -Xmx value.
		HeapMB int
		// InstallDir is the normalized class path.
		InstallDir string
		// Args are the runtime arguments.
		Args []string
		// CommandLine is Runtime and Args quoted for display.
		CommandLine string
	}
)

// New returns a Launcher wired to the real runtime, host and filesystem.
func New(cfg *config.Config, logger *log.Logger) *Launcher {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Launcher{
		Config: cfg,
		Prober: probe.NewCommand(cfg.Runtime.Binary, cfg.Runtime.VersionFlag),
		Memory: hostmem.NewSystem(),
		Paths:  installpath.NewExecutable(),
		Runner: launch.NewExecRunner(),
		Logger: logger,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Plan probes the runtime, sizes the heap and resolves the class path
// without starting anything. Failures are *FatalError.
func (l *Launcher) Plan(ctx context.Context) (*Plan, error) {
	cfg := l.config()
	logger := l.logger()
	title := "Failed to launch " + cfg.Application.Name

	result := l.probe(ctx)
	logger.Debug("probed runtime", "binary", result.Binary, "text", strings.TrimSpace(result.Text), "err", result.Err)

	class, err := jvm.Classify(result.Text)
	if err != nil {
		detail := ""
		if result.Err != nil {
			detail = result.Err.Error()
		}
		return nil, &FatalError{
			Code:    ExitPrecondition,
			Issue:   issue.RuntimeNotFoundId,
			Title:   title,
			Message: "Could not find java on your system",
			Detail:  detail,
			Err:     errors.Join(err, result.Err),
		}
	}
	logger.Infof("Found %s JVM, setting memory ceiling to %dm", class.Arch, class.CeilingMB)

	physicalMB, err := l.Memory.TotalMB(ctx)
	if err != nil {
		err = issue.NewErrorContext().
			WithOperation("query installed memory").
			WithSuggestion("Check that the launcher may read system information (e.g. /proc/meminfo)").
			Wrap(err).
			BuildError()
		return nil, &FatalError{
			Code:    ExitPrecondition,
			Issue:   issue.HostMemoryQueryFailedId,
			Title:   title,
			Message: "Could not determine how much memory is installed",
			Detail:  issue.Format(err, cfg.UI.Verbose),
			Err:     err,
		}
	}
	logger.Infof("Physical memory installed is %d", physicalMB)

	heapMB, err := budget.Compute(physicalMB, class.CeilingMB)
	switch {
	case errors.Is(err, budget.ErrInsufficientMemory):
		return nil, &FatalError{
			Code:    ExitPrecondition,
			Issue:   issue.InsufficientMemoryId,
			Title:   title,
			Message: fmt.Sprintf("Not enough memory to run %s (you need at least %dMB)", cfg.Application.Name, budget.MinPhysicalMB),
			Err:     err,
		}
	case err != nil:
		return nil, &FatalError{
			Code:  ExitPrecondition,
			Issue: issue.HeapBudgetZeroId,
			Title: title,
			Message: fmt.Sprintf("%s process failed to start. Please, check %s is inside %s directory",
				cfg.Application.Name, launcherName(cfg.Application.Name), cfg.Application.Name),
			Err: err,
		}
	}
	logger.Infof("Amount of memory to use is %d", heapMB)

	installDir, err := l.Paths.Resolve()
	if err != nil {
		err = issue.NewErrorContext().
			WithOperation("locate the install directory").
			WithSuggestion(fmt.Sprintf("Start %s from the folder that contains %s", launcherName(cfg.Application.Name), cfg.Application.Artifact)).
			Wrap(err).
			BuildError()
		return nil, &FatalError{
			Code:    ExitPrecondition,
			Issue:   issue.InstallPathUnresolvedId,
			Title:   title,
			Message: fmt.Sprintf("Could not locate the %s install directory", cfg.Application.Name),
			Detail:  issue.Format(err, cfg.UI.Verbose),
			Err:     err,
		}
	}
	logger.Debug("resolved install directory", "path", installDir)

	runtimeBin := result.Binary
	if runtimeBin == "" {
		runtimeBin = cfg.Runtime.Binary
	}
	args := jvm.Args(jvm.ArgsOptions{
		ClassPath: installDir,
		StackSize: cfg.Application.StackSize,
		HeapMB:    heapMB,
		Artifact:  cfg.Application.Artifact,
	})

	plan := &Plan{
		Runtime:     runtimeBin,
		ProbeText:   result.Text,
		Arch:        class.Arch,
		CeilingMB:   class.CeilingMB,
		PhysicalMB:  physicalMB,
		HeapMB:      heapMB,
		InstallDir:  installDir,
		Args:        args,
		CommandLine: jvm.CommandLine(runtimeBin, args),
	}
	logger.Info("Final command is " + plan.CommandLine)

	return plan, nil
}

// Execute starts the planned application and waits for it. A run that
// completes exits 0 unless launch.propagate_exit_code asks for the
// application's status; failures to start are *FatalError.
func (l *Launcher) Execute(ctx context.Context, plan *Plan) (int, error) {
	cfg := l.config()

	if cfg.Launch.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Launch.Timeout)
		defer cancel()
	}

	outcome, err := l.Runner.Run(ctx, launch.Spec{
		Binary: plan.Runtime,
		Args:   plan.Args,
		Mode:   cfg.Launch.Output,
		Stdout: l.Stdout,
		Stderr: l.Stderr,
	})
	if err != nil {
		err = issue.NewErrorContext().
			WithOperation("start "+cfg.Application.Name).
			WithResource(plan.Runtime).
			WithSuggestion(fmt.Sprintf("Check that %s exists under %s", cfg.Application.Artifact, plan.InstallDir)).
			Wrap(err).
			BuildError()
		return ExitLaunchFailed, &FatalError{
			Code:    ExitLaunchFailed,
			Issue:   issue.LaunchFailedId,
			Title:   "Failed to launch " + cfg.Application.Name,
			Message: cfg.Application.Name + " process failed to start",
			Detail:  issue.Format(err, cfg.UI.Verbose),
			Err:     err,
		}
	}

	if outcome.ExitCode == 0 {
		return 0, nil
	}
	l.logger().Infof("%s exited with status %d", cfg.Application.Name, outcome.ExitCode)
	if cfg.Launch.PropagateExitCode {
		return outcome.ExitCode, nil
	}
	return 0, nil
}

// Run plans and executes the launch.
func (l *Launcher) Run(ctx context.Context) (int, error) {
	plan, err := l.Plan(ctx)
	if err != nil {
		var fe *FatalError
		if errors.As(err, &fe) {
			return fe.Code, err
		}
		return ExitPrecondition, err
	}
	return l.Execute(ctx, plan)
}

func (l *Launcher) probe(ctx context.Context) probe.Result {
	if timeout := l.config().Launch.ProbeTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return l.Prober.Probe(ctx)
}

func (l *Launcher) config() *config.Config {
	if l.Config == nil {
		return config.DefaultConfig()
	}
	return l.Config
}

func (l *Launcher) logger() *log.Logger {
	if l.Logger == nil {
		return log.New(io.Discard)
	}
	return l.Logger
}

// launcherName is the executable users are told to look for.
func launcherName(appName string) string {
	return strings.ToLower(appName) + ".exe"
}
