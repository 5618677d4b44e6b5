// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"

	"github.com/astrojournal/ajlaunch/internal/app/launcher"
	"github.com/astrojournal/ajlaunch/internal/config"
	"github.com/astrojournal/ajlaunch/internal/installpath"
	"github.com/astrojournal/ajlaunch/internal/notify"
)

const logPrefix = "ajlaunch"

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives an App and reaches the environment only through it.
	App struct {
		Config      config.Provider
		Paths       installpath.Resolver
		NewLauncher LauncherFactory
		NewNotifier NotifierFactory
		stdout      io.Writer
		stderr      io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      config.Provider
		Paths       installpath.Resolver
		NewLauncher LauncherFactory
		NewNotifier NotifierFactory
		Stdout      io.Writer
		Stderr      io.Writer
	}

	// LauncherFactory builds the pipeline for a loaded configuration.
	LauncherFactory func(cfg *config.Config, logger *log.Logger) *launcher.Launcher

	// NotifierFactory builds the notifier used for fatal errors.
	NotifierFactory func(cfg *config.Config, stderr io.Writer) notify.Notifier
)

// NewApp creates an App, filling unset dependencies with the real ones.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:      deps.Config,
		Paths:       deps.Paths,
		NewLauncher: deps.NewLauncher,
		NewNotifier: deps.NewNotifier,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Paths == nil {
		app.Paths = installpath.NewExecutable()
	}
	if app.NewLauncher == nil {
		stdout, stderr := app.stdout, app.stderr
		app.NewLauncher = func(cfg *config.Config, logger *log.Logger) *launcher.Launcher {
			l := launcher.New(cfg, logger)
			l.Stdout = stdout
			l.Stderr = stderr
			return l
		}
	}
	if app.NewNotifier == nil {
		app.NewNotifier = func(cfg *config.Config, stderr io.Writer) notify.Notifier {
			return notify.New(stderr, cfg.UI.Dialogs, cfg.UI.IssueStyle)
		}
	}
	return app
}

// loadConfig loads configuration, looking next to the launcher before the
// user config directory. The install directory is best effort here: the
// launch pipeline reports it properly if it cannot be resolved.
func (a *App) loadConfig(ctx context.Context, configPath string) (*config.Config, string, error) {
	installDir, err := a.Paths.Resolve()
	if err != nil {
		slog.Debug("install directory unavailable for config lookup", "error", err)
		installDir = ""
	}
	return a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: configPath,
		InstallDir:     installDir,
	})
}

// newLogger returns the diagnostics logger and makes it the slog default.
// Diagnostics go to w at Info level, or Debug when verbose.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(w, log.Options{
		Prefix: logPrefix,
		Level:  level,
	})
	slog.SetDefault(slog.New(logger))
	return logger
}
