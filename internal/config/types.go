// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultVirtualenvBinary is the creation tool used when none is configured.
	DefaultVirtualenvBinary = "virtualenv"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the venvctl settings.
	Config struct {
		// VirtualenvBinary is the environment-creation executable.
		VirtualenvBinary string `json:"virtualenv_binary" mapstructure:"virtualenv_binary" toml:"virtualenv_binary"`
		// Python is the interpreter new environments are built from. Empty lets virtualenv choose.
		Python string `json:"python,omitempty" mapstructure:"python" toml:"python,omitempty"`
		// SystemSitePackages gives new environments access to the global site-packages.
		SystemSitePackages bool `json:"system_site_packages" mapstructure:"system_site_packages" toml:"system_site_packages"`
		// DownloadCache is exported to pip as PIP_DOWNLOAD_CACHE.
		DownloadCache string `json:"download_cache,omitempty" mapstructure:"download_cache" toml:"download_cache,omitempty"`
		// Readonly refuses environment creation and package changes.
		Readonly bool `json:"readonly" mapstructure:"readonly" toml:"readonly"`
		// UI contains user interface settings.
		UI UIConfig `json:"ui" mapstructure:"ui" toml:"ui"`
	}

	// UIConfig contains UI-related configuration.
	UIConfig struct {
		// Verbose enables debug logging.
		Verbose bool `json:"verbose" mapstructure:"verbose" toml:"verbose"`
		// ColorScheme sets the color scheme for issue pages ("auto", "dark", "light").
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme" toml:"color_scheme"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		VirtualenvBinary: DefaultVirtualenvBinary,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// IsValid returns whether the configuration is usable, and a list of
// validation errors if it is not.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.VirtualenvBinary) == "" {
		errs = append(errs, fmt.Errorf("virtualenv_binary: must not be empty"))
	}
	if c.Python != "" && strings.TrimSpace(c.Python) == "" {
		errs = append(errs, fmt.Errorf("python: must not be whitespace-only"))
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig followed by the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// GlamourStyle returns the glamour style name for the scheme. With "auto"
// glamour detects the terminal background itself.
func (cs ColorScheme) GlamourStyle() string {
	switch cs {
	case ColorSchemeDark, ColorSchemeLight:
		return string(cs)
	default:
		return "auto"
	}
}
