// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/astrojournal/ajlaunch/internal/app/launcher"
	"github.com/astrojournal/ajlaunch/internal/config"
	"github.com/astrojournal/ajlaunch/internal/issue"
	"github.com/astrojournal/ajlaunch/internal/notify"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every command.
type rootFlagValues struct {
	verbose    bool
	configPath string
	dryRun     bool
}

// NewRootCommand builds the ajlaunch command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "ajlaunch",
		Short: "Start AstroJournal with a heap sized for this machine",
		Long: TitleStyle.Render("ajlaunch") + SubtitleStyle.Render(" - memory-aware AstroJournal launcher") + `

ajlaunch checks that a Java runtime is installed, works out whether it is
32-bit or 64-bit, and starts AstroJournal with a maximum heap of two thirds
of physical memory, capped at 250MB (32-bit) or 500MB (64-bit).

` + SubtitleStyle.Render("Examples:") + `
  ajlaunch                  Launch AstroJournal
  ajlaunch --dry-run        Show the command without starting it
  ajlaunch doctor           Report what the launcher would do
  ajlaunch config show      Show the effective configuration`,
		Args: cobra.NoArgs,
		// Errors reach the user through notifications, reports or handleError.
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, app, flags)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is <install dir>/ajlaunch.cue, then the user config dir)")
	rootCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print the final command without starting the application")

	rootCmd.AddCommand(newDoctorCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the command tree and runs it. This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// handleError prints errors that have not reached the user yet. An *ExitError
// has already been shown through a notification or a report.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// runLaunch is the root command: load configuration, run the pipeline and
// turn fatal outcomes into a notification and an exit code.
func runLaunch(cmd *cobra.Command, app *App, flags *rootFlagValues) error {
	ctx := cmd.Context()
	cmd.SilenceUsage = true

	cfg, cfgPath, err := app.loadConfig(ctx, flags.configPath)
	if err != nil {
		defaults := config.DefaultConfig()
		notifyUser(app.NewNotifier(defaults, app.stderr), notify.Notification{
			Title:   "Failed to launch " + defaults.Application.Name,
			Message: "Could not load the launcher configuration",
			Detail:  issue.Format(err, flags.verbose),
			Issue:   issue.ConfigLoadFailedId,
		})
		return &ExitError{Code: launcher.ExitPrecondition, Err: err}
	}
	if flags.verbose {
		cfg.UI.Verbose = true
	}

	logger := newLogger(app.stdout, cfg.UI.Verbose)
	logger.Debug("configuration loaded", "path", cfgPath)

	l := app.NewLauncher(cfg, logger)

	var code int
	if flags.dryRun {
		_, err = l.Plan(ctx)
		if err == nil {
			fmt.Fprintln(app.stdout, SubtitleStyle.Render("Dry run: "+cfg.Application.Name+" was not started"))
		}
	} else {
		code, err = l.Run(ctx)
	}

	if err != nil {
		var fe *launcher.FatalError
		if !errors.As(err, &fe) {
			return err
		}
		if ctx.Err() == nil {
			notifyUser(app.NewNotifier(cfg, app.stderr), fe.Notification())
		}
		return &ExitError{Code: fe.Code, Err: fe}
	}

	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// notifyUser shows n, falling back to a log line when the notifier fails.
func notifyUser(n notify.Notifier, msg notify.Notification) {
	if err := n.Notify(msg); err != nil {
		slog.Error(msg.Message, "title", msg.Title, "notify_error", err)
	}
}
