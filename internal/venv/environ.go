// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/shell"
)

const (
	// EnvDownloadCache is the variable pip reads its download cache location from.
	EnvDownloadCache = "PIP_DOWNLOAD_CACHE"
	// EnvVirtualEnv names the active environment in shells that sourced its activate script.
	EnvVirtualEnv = "VIRTUAL_ENV"
	// EnvPythonIOEncoding forces the encoding of the children's standard streams.
	EnvPythonIOEncoding = "PYTHONIOENCODING"

	// envPyvenvLauncher is set by the macOS framework launcher and makes pip
	// inside the environment resolve to the wrong interpreter.
	envPyvenvLauncher = "__PYVENV_LAUNCHER__"
)

// childEnviron derives the environment children run with from base.
func childEnviron(base []string, downloadCache string) ([]string, error) {
	environ := make([]string, 0, len(base)+2)
	for _, kv := range base {
		if envKey(kv) == envPyvenvLauncher {
			continue
		}
		environ = append(environ, kv)
	}

	if lookupEnv(environ, EnvPythonIOEncoding) == "" {
		environ = setEnv(environ, EnvPythonIOEncoding, "utf-8")
	}

	if downloadCache != "" {
		dir, err := expandPath(downloadCache, environ)
		if err != nil {
			return nil, err
		}
		environ = setEnv(environ, EnvDownloadCache, dir)
	}

	return environ, nil
}

// expandPath expands $VAR references against environ, then a leading ~.
func expandPath(p string, environ []string) (string, error) {
	vars := expand.ListEnviron(environ...)
	lookup := func(name string) string { return vars.Get(name).String() }

	out, err := shell.Expand(p, lookup)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %q: %w", p, err)
	}

	if out == "~" || strings.HasPrefix(out, "~/") || strings.HasPrefix(out, `~\`) {
		home := lookup("HOME")
		if home == "" {
			home = lookup("USERPROFILE")
		}
		if home == "" {
			if home, err = os.UserHomeDir(); err != nil {
				return "", fmt.Errorf("failed to expand path %q: %w", p, err)
			}
		}
		out = home + out[1:]
	}

	return out, nil
}

func envKey(kv string) string {
	key, _, _ := strings.Cut(kv, "=")
	return key
}

func lookupEnv(environ []string, key string) string {
	for i := len(environ) - 1; i >= 0; i-- {
		if k, v, _ := strings.Cut(environ[i], "="); k == key {
			return v
		}
	}
	return ""
}

// setEnv replaces every entry for key with a single key=value at the end.
func setEnv(environ []string, key, value string) []string {
	out := environ[:0]
	for _, kv := range environ {
		if envKey(kv) != key {
			out = append(out, kv)
		}
	}
	return append(out, key+"="+value)
}
