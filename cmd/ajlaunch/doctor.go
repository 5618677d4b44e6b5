// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/astrojournal/ajlaunch/internal/app/launcher"
	"github.com/astrojournal/ajlaunch/internal/issue"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
	formatTOML = "toml"
)

// doctorReport is what the launcher would do on this machine.
type doctorReport struct {
	OK           bool   `json:"ok" yaml:"ok" toml:"ok"`
	ConfigFile   string `json:"config_file,omitempty" yaml:"config_file,omitempty" toml:"config_file,omitempty"`
	Runtime      string `json:"runtime,omitempty" yaml:"runtime,omitempty" toml:"runtime,omitempty"`
	Architecture string `json:"architecture,omitempty" yaml:"architecture,omitempty" toml:"architecture,omitempty"`
	CeilingMB    int    `json:"ceiling_mb,omitempty" yaml:"ceiling_mb,omitempty" toml:"ceiling_mb,omitempty"`
	PhysicalMB   int    `json:"physical_mb,omitempty" yaml:"physical_mb,omitempty" toml:"physical_mb,omitempty"`
	HeapMB       int    `json:"heap_mb,omitempty" yaml:"heap_mb,omitempty" toml:"heap_mb,omitempty"`
	InstallDir   string `json:"install_dir,omitempty" yaml:"install_dir,omitempty" toml:"install_dir,omitempty"`
	Command      string `json:"command,omitempty" yaml:"command,omitempty" toml:"command,omitempty"`
	Problem      string `json:"problem,omitempty" yaml:"problem,omitempty" toml:"problem,omitempty"`
	ExitCode     int    `json:"exit_code,omitempty" yaml:"exit_code,omitempty" toml:"exit_code,omitempty"`

	issueID issue.Id
}

func newDoctorCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Report what the launcher would do on this machine",
		Long: `Run every launch check without starting AstroJournal: find the Java
runtime, classify it, read installed memory, compute the heap and resolve
the class path. The exit code is the one a real launch would fail with.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			switch format {
			case formatText, formatJSON, formatYAML, formatTOML:
			default:
				return fmt.Errorf("unknown format %q (want text, json, yaml or toml)", format)
			}

			report := runDoctor(cmd, app, flags)
			if err := writeReport(app.stdout, report, format); err != nil {
				return err
			}
			if !report.OK {
				return &ExitError{Code: report.ExitCode}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json, yaml or toml")
	return cmd
}

func runDoctor(cmd *cobra.Command, app *App, flags *rootFlagValues) doctorReport {
	ctx := cmd.Context()

	cfg, cfgPath, err := app.loadConfig(ctx, flags.configPath)
	if err != nil {
		return doctorReport{
			Problem:  issue.Format(err, flags.verbose),
			ExitCode: launcher.ExitPrecondition,
			issueID:  issue.ConfigLoadFailedId,
		}
	}

	// Diagnostics would corrupt structured output, so they only appear on
	// stderr and only when asked for.
	var logger *log.Logger
	if flags.verbose || cfg.UI.Verbose {
		logger = newLogger(app.stderr, true)
	} else {
		logger = log.New(io.Discard)
		slog.SetDefault(slog.New(logger))
	}

	report := doctorReport{ConfigFile: cfgPath}
	plan, err := app.NewLauncher(cfg, logger).Plan(ctx)
	if err != nil {
		report.Problem = err.Error()
		report.ExitCode = launcher.ExitPrecondition
		var fe *launcher.FatalError
		if errors.As(err, &fe) {
			report.Problem = fe.Message
			report.ExitCode = fe.Code
			report.issueID = fe.Issue
		}
		return report
	}

	report.OK = true
	report.Runtime = plan.Runtime
	report.Architecture = plan.Arch.String()
	report.CeilingMB = plan.CeilingMB
	report.PhysicalMB = plan.PhysicalMB
	report.HeapMB = plan.HeapMB
	report.InstallDir = plan.InstallDir
	report.Command = plan.CommandLine
	return report
}

func writeReport(w io.Writer, r doctorReport, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case formatTOML:
		return toml.NewEncoder(w).Encode(r)
	default:
		_, err := io.WriteString(w, renderReportText(r))
		return err
	}
}

func renderReportText(r doctorReport) string {
	var sb strings.Builder

	sb.WriteString(TitleStyle.Render("AstroJournal launch check"))
	sb.WriteString("\n\n")

	row := func(key, value string) {
		if value == "" {
			return
		}
		sb.WriteString(reportKeyStyle.Render(key))
		sb.WriteString(value)
		sb.WriteString("\n")
	}
	mb := func(v int) string {
		if v == 0 {
			return ""
		}
		return strconv.Itoa(v) + " MB"
	}

	configFile := r.ConfigFile
	if configFile == "" {
		configFile = SubtitleStyle.Render("(using defaults)")
	}
	row("Config file", configFile)
	row("Runtime", r.Runtime)
	row("Architecture", r.Architecture)
	row("Heap ceiling", mb(r.CeilingMB))
	row("Physical memory", mb(r.PhysicalMB))
	row("Heap", mb(r.HeapMB))
	row("Install dir", r.InstallDir)
	row("Command", r.Command)
	sb.WriteString("\n")

	if r.OK {
		sb.WriteString(SuccessStyle.Render("✓ Ready to launch"))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(ErrorStyle.Render("✗ " + r.Problem))
	sb.WriteString("\n")
	if entry := issue.Get(r.issueID); entry != nil {
		rendered, err := entry.Render("notty")
		if err != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", r.issueID, "error", err)
		} else {
			sb.WriteString(rendered)
		}
	}
	return sb.String()
}
