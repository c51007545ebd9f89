// SPDX-License-Identifier: MPL-2.0

// Package config handles venvctl configuration using Viper with CUE as the file format.
//
// The user file lives at $XDG_CONFIG_HOME/venvctl/config.cue (resolved with
// adrg/xdg, so ~/Library/Application Support on macOS and %LOCALAPPDATA% on
// Windows). A project-local .venvctl.cue in the working directory is merged on
// top of it. VENVCTL_* environment variables override both, e.g.
// VENVCTL_READONLY=true or VENVCTL_UI_VERBOSE=true.
//
// Every file is validated against the embedded #Config schema
// (config_schema.cue) before it reaches Viper.
package config
