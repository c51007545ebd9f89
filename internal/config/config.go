// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invowk/venvctl/internal/issue"
	"github.com/invowk/venvctl/pkg/cueutil"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "venvctl"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// ProjectFileName is the project-local config file looked up in the working directory.
	ProjectFileName = ".venvctl.cue"
	// EnvPrefix prefixes environment variable overrides.
	EnvPrefix = "VENVCTL"
)

//go:embed config_schema.cue
var configSchema string

// Keys lists every configuration key in Viper's dotted notation.
var Keys = []string{
	"virtualenv_binary",
	"python",
	"system_site_packages",
	"download_cache",
	"readonly",
	"ui.verbose",
	"ui.color_scheme",
}

// ConfigDir returns the venvctl configuration directory under the
// platform's XDG config home.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}
	if xdg.ConfigHome == "" {
		return "", errors.New("cannot determine the user config directory")
	}
	return filepath.Join(xdg.ConfigHome, AppName), nil
}

// ConfigFilePath returns the path of the user config file inside dir,
// or inside ConfigDir when dir is empty.
func ConfigFilePath(dir string) (string, error) {
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// EnvVar returns the environment variable overriding key,
// e.g. "ui.verbose" becomes VENVCTL_UI_VERBOSE.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Load reads the configuration with default options.
func Load() (*Config, error) {
	return NewProvider().Load(context.Background(), LoadOptions{})
}

// LoadWithSources loads the configuration and reports which files were merged.
//
// Precedence, lowest first: built-in defaults, the user config file, the
// project-local .venvctl.cue, VENVCTL_* variables. An explicit
// ConfigFilePath replaces both files and must exist.
func LoadWithSources(ctx context.Context, opts LoadOptions) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("virtualenv_binary", defaults.VirtualenvBinary)
	v.SetDefault("python", defaults.Python)
	v.SetDefault("system_site_packages", defaults.SystemSitePackages)
	v.SetDefault("download_cache", defaults.DownloadCache)
	v.SetDefault("readonly", defaults.Readonly)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)

	var sources []string

	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'venvctl config path' to see where the default file lives").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		if err := mergeFile(v, opts.ConfigFilePath); err != nil {
			return nil, err
		}
		sources = append(sources, opts.ConfigFilePath)
	} else {
		userPath, err := ConfigFilePath(opts.ConfigDirPath)
		if err != nil {
			return nil, err
		}
		projectPath := filepath.Join(opts.WorkDir, ProjectFileName)

		for _, path := range []string{userPath, projectPath} {
			if !fileExists(path) {
				continue
			}
			if err := mergeFile(v, path); err != nil {
				return nil, err
			}
			sources = append(sources, path)
		}
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	applyEnv(v, environ)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithSuggestion("Check the " + EnvPrefix + "_* environment variables for malformed values").
			Wrap(err).
			BuildError()
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithSuggestion("Run 'venvctl config show' to see the effective values").
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &Result{Config: &cfg, Sources: sources}, nil
}

// mergeFile validates the CUE file at path against #Config and merges it into v.
func mergeFile(v *viper.Viper, path string) error {
	if err := loadCUEIntoViper(v, path); err != nil {
		return issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Check that the file contains valid CUE syntax").
			WithSuggestion("Verify the configuration values match the expected schema").
			WithSuggestion("Run 'venvctl config init' to see a complete example").
			Wrap(err).
			BuildError()
	}
	return nil
}

func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.DecodeMap(configSchema, data, "#Config",
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// applyEnv copies VENVCTL_* overrides from environ into v. String values are
// converted to the field types when Viper unmarshals.
func applyEnv(v *viper.Viper, environ []string) {
	values := envMap(environ)
	for _, key := range Keys {
		if val, ok := values[EnvVar(key)]; ok {
			v.Set(key, val)
		}
	}
}

func envMap(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, val, ok := strings.Cut(kv, "="); ok {
			values[k] = val
		}
	}
	return values
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes a default config file into dir (ConfigDir when
// empty) unless one already exists. It returns the file path and whether it
// was written.
func CreateDefaultConfig(dir string) (string, bool, error) {
	cfgPath, err := ConfigFilePath(dir)
	if err != nil {
		return "", false, err
	}
	if fileExists(cfgPath) {
		return cfgPath, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, true, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// venvctl configuration file\n")
	sb.WriteString("// Every field is optional. Run 'venvctl config show' for the effective values.\n\n")

	fmt.Fprintf(&sb, "virtualenv_binary: %q\n", cfg.VirtualenvBinary)
	if cfg.Python != "" {
		fmt.Fprintf(&sb, "python: %q\n", cfg.Python)
	}
	fmt.Fprintf(&sb, "system_site_packages: %v\n", cfg.SystemSitePackages)
	if cfg.DownloadCache != "" {
		fmt.Fprintf(&sb, "download_cache: %q\n", cfg.DownloadCache)
	}
	fmt.Fprintf(&sb, "readonly: %v\n", cfg.Readonly)

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	sb.WriteString("}\n")

	return sb.String()
}

// GenerateTOML renders the configuration as TOML.
func GenerateTOML(cfg *Config) (string, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to render config as TOML: %w", err)
	}
	return string(data), nil
}
