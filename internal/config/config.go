// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/spf13/viper"

	"github.com/astrojournal/ajlaunch/internal/issue"
)

const (
	// AppName is the application name used for the user config directory.
	AppName = "ajlaunch"
	// ConfigFileName is the name of the user config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// InstallConfigFileName is the optional config file next to the launcher.
	InstallConfigFileName = "ajlaunch.cue"
	// EnvPrefix prefixes environment overrides, e.g. AJLAUNCH_RUNTIME_BINARY.
	EnvPrefix = "AJLAUNCH"

	// maxConfigFileSize guards against reading something that is not a config file.
	maxConfigFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the ajlaunch configuration directory: %APPDATA% on
// Windows, ~/Library/Application Support on macOS, and $XDG_CONFIG_HOME
// (defaulting to ~/.config) elsewhere.
//
//nolint:revive // ConfigDir reads better than Dir at call sites
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Load reads the configuration and returns it with the path of the file it
// came from (empty when only defaults and environment were used).
func Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	resolvedPath, err := findConfigFile(opts)
	if err != nil {
		return nil, "", err
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'ajlaunch config show' to see the defaults").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check " + EnvPrefix + "_* environment variables for typos").
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// newViper returns a viper instance holding the defaults, with environment
// overrides enabled.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("runtime.binary", defaults.Runtime.Binary)
	v.SetDefault("runtime.version_flag", defaults.Runtime.VersionFlag)
	v.SetDefault("application.name", defaults.Application.Name)
	v.SetDefault("application.artifact", defaults.Application.Artifact)
	v.SetDefault("application.stack_size", defaults.Application.StackSize)
	v.SetDefault("launch.output", string(defaults.Launch.Output))
	v.SetDefault("launch.timeout", defaults.Launch.Timeout.String())
	v.SetDefault("launch.probe_timeout", defaults.Launch.ProbeTimeout.String())
	v.SetDefault("launch.propagate_exit_code", defaults.Launch.PropagateExitCode)
	v.SetDefault("ui.dialogs", defaults.UI.Dialogs)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.issue_style", defaults.UI.IssueStyle)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// findConfigFile applies the search order: explicit path, install
// directory, user config directory.
func findConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	if opts.InstallDir != "" {
		installPath := filepath.Join(opts.InstallDir, InstallConfigFileName)
		if fileExists(installPath) {
			return installPath, nil
		}
	}

	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		dir, err := ConfigDir()
		if err != nil {
			// No home directory is not fatal: defaults still apply.
			return "", nil
		}
		cfgDir = dir
	}

	userPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(userPath) {
		return userPath, nil
	}
	return "", nil
}

// loadCUEIntoViper parses a CUE file, validates it against #Config and
// merges it into v. Validation is non-concrete because every field is
// optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxConfigFileSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", path, len(data), maxConfigFileSize)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// formatCUEError flattens CUE errors into "<file>: <path>: <message>" lines.
func formatCUEError(err error, filePath string) error {
	cueErrs := cueerrors.Errors(err)
	if len(cueErrs) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	lines := make([]string, 0, len(cueErrs))
	for _, e := range cueErrs {
		path := strings.Join(cueerrors.Path(e), ".")
		msg := e.Error()
		if path != "" && !strings.HasPrefix(msg, path) {
			msg = path + ": " + msg
		}
		lines = append(lines, msg)
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Save writes cfg as CUE to the user config directory, creating it if
// needed, and returns the file path. An existing file is left alone unless
// overwrite is set.
func Save(cfg *Config, dir string, overwrite bool) (string, error) {
	if dir == "" {
		d, err := ConfigDir()
		if err != nil {
			return "", err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if !overwrite && fileExists(cfgPath) {
		return cfgPath, fmt.Errorf("config file already exists: %s", cfgPath)
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, nil
}

// GenerateCUE renders cfg in the config file format.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// ajlaunch configuration file\n")
	sb.WriteString("// Omitted fields keep their defaults.\n\n")

	sb.WriteString("runtime: {\n")
	fmt.Fprintf(&sb, "\tbinary:       %q\n", cfg.Runtime.Binary)
	fmt.Fprintf(&sb, "\tversion_flag: %q\n", cfg.Runtime.VersionFlag)
	sb.WriteString("}\n")

	sb.WriteString("\napplication: {\n")
	fmt.Fprintf(&sb, "\tname:       %q\n", cfg.Application.Name)
	fmt.Fprintf(&sb, "\tartifact:   %q\n", cfg.Application.Artifact)
	fmt.Fprintf(&sb, "\tstack_size: %q\n", cfg.Application.StackSize)
	sb.WriteString("}\n")

	sb.WriteString("\nlaunch: {\n")
	fmt.Fprintf(&sb, "\toutput:              %q\n", string(cfg.Launch.Output))
	fmt.Fprintf(&sb, "\ttimeout:             %q\n", cfg.Launch.Timeout.String())
	fmt.Fprintf(&sb, "\tprobe_timeout:       %q\n", cfg.Launch.ProbeTimeout.String())
	fmt.Fprintf(&sb, "\tpropagate_exit_code: %v\n", cfg.Launch.PropagateExitCode)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tdialogs:     %v\n", cfg.UI.Dialogs)
	fmt.Fprintf(&sb, "\tverbose:     %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tissue_style: %q\n", cfg.UI.IssueStyle)
	sb.WriteString("}\n")

	return sb.String()
}
