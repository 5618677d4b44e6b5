// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/astrojournal/ajlaunch/internal/config"
	"github.com/astrojournal/ajlaunch/internal/issue"
)

// newConfigCommand creates the `ajlaunch config` command tree.
func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ajlaunch configuration",
		Long: `Manage ajlaunch configuration.

The first file found is used:
  1. the file given with --config
  2. ajlaunch.cue next to the launcher
  3. config.cue in the user config directory:
     - Linux: ~/.config/ajlaunch/config.cue
     - macOS: ~/Library/Application Support/ajlaunch/config.cue
     - Windows: %APPDATA%\ajlaunch\config.cue

Any value can also be set with an AJLAUNCH_ environment variable, for
example AJLAUNCH_RUNTIME_BINARY=/opt/jdk/bin/java.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cfgPath, err := app.loadConfig(cmd.Context(), flags.configPath)
			if err != nil {
				cmd.SilenceUsage = true
				if rendered, renderErr := issue.Get(issue.ConfigLoadFailedId).Render("notty"); renderErr == nil {
					fmt.Fprint(app.stderr, rendered)
				}
				return err
			}

			source := cfgPath
			if source == "" {
				source = "built-in defaults"
			}
			fmt.Fprintf(app.stdout, "// source: %s\n", source)
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			path, err := config.Save(config.DefaultConfig(), "", force)
			if err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
			fmt.Fprintf(app.stdout, "User config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))

			_, cfgPath, err := app.loadConfig(cmd.Context(), flags.configPath)
			switch {
			case err != nil:
				fmt.Fprintf(app.stdout, "Active config file: %s\n", WarningStyle.Render("(invalid) "+err.Error()))
			case cfgPath == "":
				fmt.Fprintf(app.stdout, "Active config file: %s\n", SubtitleStyle.Render("(using defaults)"))
			default:
				fmt.Fprintf(app.stdout, "Active config file: %s\n", cfgPath)
			}
			return nil
		},
	})

	return cfgCmd
}
