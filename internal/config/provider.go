// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	// The user and project files are then ignored.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
	// WorkDir is where the project-local file is looked up.
	// The process working directory is used when empty.
	WorkDir string
	// Environ replaces os.Environ as the source of VENVCTL_* overrides when non-nil.
	Environ []string
}

// Provider loads configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

// Result is a loaded configuration together with the files it came from.
type Result struct {
	Config *Config
	// Sources lists the files merged into Config, lowest precedence first.
	Sources []string
}

type fileProvider struct{}

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// LoadWithSources reads configuration and reports the files it came from.
func (p *fileProvider) LoadWithSources(ctx context.Context, opts LoadOptions) (*Result, error) {
	return LoadWithSources(ctx, opts)
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	res, err := LoadWithSources(ctx, opts)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}
