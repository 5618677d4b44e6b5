// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath string
	// ConfigDirPath overrides the user config directory lookup when set.
	ConfigDirPath string
	// InstallDir is searched for InstallConfigFileName before the user config dir.
	InstallDir string
}

// Provider loads configuration from explicit options.
type Provider interface {
	// Load returns the effective configuration and the file it was read
	// from, which is empty when only defaults and environment applied.
	Load(ctx context.Context, opts LoadOptions) (*Config, string, error)
}

type fileProvider struct{}

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	return Load(ctx, opts)
}

// Static is a Provider that always returns the same configuration.
type Static struct {
	Config *Config
	Path   string
}

// Load returns a copy of the static configuration, or the defaults when
// Config is nil.
func (s Static) Load(context.Context, LoadOptions) (*Config, string, error) {
	if s.Config == nil {
		return DefaultConfig(), s.Path, nil
	}
	cfg := *s.Config
	return &cfg, s.Path, nil
}
