// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/astrojournal/ajlaunch/internal/jvm"
	"github.com/astrojournal/ajlaunch/internal/launch"
	"github.com/astrojournal/ajlaunch/internal/notify"
	"github.com/astrojournal/ajlaunch/internal/probe"
)

// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// Config holds the launcher configuration.
	Config struct {
		Runtime     RuntimeConfig     `json:"runtime" yaml:"runtime" mapstructure:"runtime"`
		Application ApplicationConfig `json:"application" yaml:"application" mapstructure:"application"`
		Launch      LaunchConfig      `json:"launch" yaml:"launch" mapstructure:"launch"`
		UI          UIConfig          `json:"ui" yaml:"ui" mapstructure:"ui"`
	}

	// RuntimeConfig selects the Java runtime.
	RuntimeConfig struct {
		// Binary is the executable name or path (default "java").
		Binary string `json:"binary" yaml:"binary" mapstructure:"binary"`
		// VersionFlag is passed when probing the runtime (default "-version").
		VersionFlag string `json:"version_flag" yaml:"version_flag" mapstructure:"version_flag"`
	}

	// ApplicationConfig describes the application being launched.
	ApplicationConfig struct {
		// Name is used in notification titles.
		Name string `json:"name" yaml:"name" mapstructure:"name"`
		// Artifact is the jar, relative to the install directory.
		Artifact string `json:"artifact" yaml:"artifact" mapstructure:"artifact"`
		// StackSize is the -Xss value.
		StackSize string `json:"stack_size" yaml:"stack_size" mapstructure:"stack_size"`
	}

	// LaunchConfig controls the child process.
	LaunchConfig struct {
		// Output is "capture" (read to completion, then echo) or "stream".
		Output launch.OutputMode `json:"output" yaml:"output" mapstructure:"output"`
		// Timeout bounds the application run; zero waits forever.
		Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
		// ProbeTimeout bounds the version probe; zero waits forever.
		ProbeTimeout time.Duration `json:"probe_timeout" yaml:"probe_timeout" mapstructure:"probe_timeout"`
		// PropagateExitCode makes a non-zero application status the
		// launcher's own exit code. Off, a completed run always exits 0.
		PropagateExitCode bool `json:"propagate_exit_code" yaml:"propagate_exit_code" mapstructure:"propagate_exit_code"`
	}

	// UIConfig configures user-facing output.
	UIConfig struct {
		// Dialogs enables native modal dialogs where available.
		Dialogs bool `json:"dialogs" yaml:"dialogs" mapstructure:"dialogs"`
		// Verbose enables debug diagnostics.
		Verbose bool `json:"verbose" yaml:"verbose" mapstructure:"verbose"`
		// IssueStyle is the glamour style for help pages; empty disables them
		// and "auto" picks one for the output stream.
		IssueStyle string `json:"issue_style" yaml:"issue_style" mapstructure:"issue_style"`
	}

	// InvalidConfigError collects field-level validation failures.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the configuration reproducing the stock launcher.
func DefaultConfig() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			Binary:      probe.DefaultBinary,
			VersionFlag: probe.DefaultVersionFlag,
		},
		Application: ApplicationConfig{
			Name:      "AstroJournal",
			Artifact:  jvm.DefaultArtifact,
			StackSize: jvm.DefaultStackSize,
		},
		Launch: LaunchConfig{
			Output: launch.OutputCapture,
		},
		UI: UIConfig{
			Dialogs:    true,
			IssueStyle: notify.StyleAuto,
		},
	}
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig for errors.Is.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Validate checks values that may bypass the CUE schema through
// environment overrides.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Runtime.Binary) == "" {
		errs = append(errs, fmt.Errorf("runtime.binary must not be empty"))
	}
	if !strings.HasPrefix(c.Runtime.VersionFlag, "-") {
		errs = append(errs, fmt.Errorf("runtime.version_flag %q must start with '-'", c.Runtime.VersionFlag))
	}
	if strings.TrimSpace(c.Application.Artifact) == "" {
		errs = append(errs, fmt.Errorf("application.artifact must not be empty"))
	}
	if strings.TrimSpace(c.Application.StackSize) == "" {
		errs = append(errs, fmt.Errorf("application.stack_size must not be empty"))
	}
	if !c.Launch.Output.IsValid() {
		errs = append(errs, fmt.Errorf("launch.output %q must be %q or %q", c.Launch.Output, launch.OutputCapture, launch.OutputStream))
	}
	if c.Launch.Timeout < 0 || c.Launch.ProbeTimeout < 0 {
		errs = append(errs, fmt.Errorf("launch timeouts must not be negative"))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}
